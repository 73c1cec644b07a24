package loadgen

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/triagem/internal/domain/model"
	"github.com/okian/triagem/internal/domain/taxonomy"
	"github.com/okian/triagem/pkg/logger"
)

var cityPool = []string{
	"Piracicaba", "Limeira", "Americana", "Rio Claro", "Santa Bárbara d'Oeste",
	"Capivari", "São Pedro", "Charqueada", "Águas de São Pedro", "Rio das Pedras",
	"Saltinho", "Mombuca", "Iracemápolis", "Cordeirópolis", "Nova Odessa", "Sumaré",
}

// instruments the taxonomy does not know; they land in the uncategorized count
var unknownInstruments = []string{"Kazoo", "Ukulele", "Berimbau", "Cavaquinho"}

// Generator produces random registrations. Equal seeds give equal sequences.
type Generator struct {
	rng           *rand.Rand
	unknownShare  float64
	organistShare float64
	cities        []string
	instruments   []string
}

// NewGenerator creates a generator from the run configuration.
func NewGenerator(cfg Config) *Generator {
	n := cfg.Cities
	if n <= 0 || n > len(cityPool) {
		n = len(cityPool)
	}
	return &Generator{
		rng:           rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec // reproducible test data
		unknownShare:  cfg.UnknownShare,
		organistShare: cfg.OrganistShare,
		cities:        cityPool[:n],
		instruments:   taxonomy.Instruments(),
	}
}

// Next returns one registration with a fresh client id.
func (g *Generator) Next() model.Registration {
	id := uuid.Must(uuid.NewRandomFromReader(g.rng))
	r := model.Registration{
		ID:   id.String(),
		City: pick(g.rng, g.cities),
	}

	if g.rng.Float64() < g.organistShare {
		r.Role = model.RoleOrganist
		r.Ministry = pick(g.rng, model.MinistriesFor(model.RoleOrganist))
		return r.Normalize()
	}

	r.Role = model.RoleMusician
	r.Ministry = pick(g.rng, model.MinistriesFor(model.RoleMusician))
	r.Level = pick(g.rng, model.Levels)
	if g.rng.Float64() < g.unknownShare {
		r.Instrument = pick(g.rng, unknownInstruments)
	} else {
		r.Instrument = pick(g.rng, g.instruments)
	}
	return r.Normalize()
}

// Generate returns n registrations.
func (g *Generator) Generate(ctx context.Context, n int) ([]model.Registration, error) {
	out := make([]model.Registration, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation cancelled after %d registrations: %w", i, err)
		}
		out = append(out, g.Next())
	}
	logger.Get().Info(ctx, "generated registrations", logger.Int("count", len(out)))
	return out, nil
}

func pick[T any](rng *rand.Rand, from []T) T {
	return from[rng.Intn(len(from))]
}
