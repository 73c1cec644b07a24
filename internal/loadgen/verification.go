package loadgen

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/okian/triagem/internal/domain/aggregate"
	"github.com/okian/triagem/internal/domain/model"
)

// ErrMismatch is returned when the server summary disagrees with the
// locally computed one.
var ErrMismatch = errors.New("summary mismatch")

// Expected computes the summary the server should report for regs.
func Expected(regs []model.Registration) (aggregate.Summary, error) {
	now := time.Now()
	snap := make(aggregate.Snapshot, 0, len(regs))
	for _, r := range regs {
		a, err := model.NewAttendee(r, now)
		if err != nil {
			return aggregate.Summary{}, fmt.Errorf("registration %s: %w", r.ID, err)
		}
		snap = append(snap, a)
	}
	return aggregate.Summarize(snap), nil
}

// Delta subtracts before from after. Cities are not additive and are left
// at zero.
func Delta(before, after aggregate.Summary) aggregate.Summary {
	return aggregate.Summary{
		Total:         after.Total - before.Total,
		Musicians:     after.Musicians - before.Musicians,
		Organists:     after.Organists - before.Organists,
		Servants:      after.Servants - before.Servants,
		Uncategorized: after.Uncategorized - before.Uncategorized,
		Families:      subtract(before.Families, after.Families),
		Instruments:   subtract(before.Instruments, after.Instruments),
		Ministries:    subtract(before.Ministries, after.Ministries),
		Levels:        subtract(before.Levels, after.Levels),
	}
}

func subtract[K comparable](before, after map[K]int) map[K]int {
	out := make(map[K]int, len(after))
	for k, v := range after {
		if d := v - before[k]; d != 0 {
			out[k] = d
		}
	}
	return out
}

// Verify compares got against want and reports every differing count.
func Verify(got, want aggregate.Summary, checkCities bool) error {
	var diffs []string
	field := func(name string, g, w int) {
		if g != w {
			diffs = append(diffs, fmt.Sprintf("%s: got %d, want %d", name, g, w))
		}
	}

	field("total", got.Total, want.Total)
	field("musicians", got.Musicians, want.Musicians)
	field("organists", got.Organists, want.Organists)
	field("servants", got.Servants, want.Servants)
	field("uncategorized", got.Uncategorized, want.Uncategorized)
	if checkCities {
		field("cities", got.Cities, want.Cities)
	}
	diffs = append(diffs, diffMap("families", got.Families, want.Families)...)
	diffs = append(diffs, diffMap("instruments", got.Instruments, want.Instruments)...)
	diffs = append(diffs, diffMap("ministries", got.Ministries, want.Ministries)...)
	diffs = append(diffs, diffMap("levels", got.Levels, want.Levels)...)

	if len(diffs) > 0 {
		return fmt.Errorf("%w: %s", ErrMismatch, strings.Join(diffs, "; "))
	}
	return nil
}

// diffMap treats a missing key and a zero count as equal.
func diffMap[K ~string](name string, got, want map[K]int) []string {
	keys := make(map[K]struct{}, len(got)+len(want))
	for k := range got {
		keys[k] = struct{}{}
	}
	for k := range want {
		keys[k] = struct{}{}
	}

	var diffs []string
	for _, k := range slices.Sorted(maps.Keys(keys)) {
		if got[k] != want[k] {
			diffs = append(diffs, fmt.Sprintf("%s[%s]: got %d, want %d", name, k, got[k], want[k]))
		}
	}
	return diffs
}
