package model

import "fmt"

// Role is the musical role an attendee checks in with.
type Role string

// Roles.
const (
	RoleMusician Role = "musician"
	RoleOrganist Role = "organist"
)

// Roles lists every role in display order.
var Roles = []Role{RoleMusician, RoleOrganist}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleMusician || r == RoleOrganist
}

// ParseRole parses a stable role identifier.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Ministry is an ecclesiastical duty, independent of the musical role.
type Ministry string

// Ministries. MinistryNone is the unset sentinel.
const (
	MinistryNone                  Ministry = "none"
	MinistryElder                 Ministry = "elder"
	MinistryDeacon                Ministry = "deacon"
	MinistryMinisterialCooperator Ministry = "ministerial_cooperator"
	MinistryYouthCooperator       Ministry = "youth_cooperator"
	MinistryExaminer              Ministry = "examiner"
	MinistryInstructor            Ministry = "instructor"
	MinistryOrganist              Ministry = "organist"
)

// Ministries lists every ministry value.
var Ministries = []Ministry{
	MinistryNone,
	MinistryElder,
	MinistryDeacon,
	MinistryMinisterialCooperator,
	MinistryYouthCooperator,
	MinistryExaminer,
	MinistryInstructor,
	MinistryOrganist,
}

var ministriesByRole = map[Role][]Ministry{
	RoleMusician: {MinistryNone, MinistryElder, MinistryDeacon, MinistryMinisterialCooperator, MinistryYouthCooperator},
	RoleOrganist: {MinistryNone, MinistryExaminer, MinistryInstructor, MinistryOrganist},
}

// MinistriesFor returns the ministries the check-in form offers to role.
func MinistriesFor(role Role) []Ministry {
	src := ministriesByRole[role]
	out := make([]Ministry, len(src))
	copy(out, src)
	return out
}

// Valid reports whether m is a known ministry.
func (m Ministry) Valid() bool {
	for _, v := range Ministries {
		if v == m {
			return true
		}
	}
	return false
}

// AllowedFor reports whether the form offers m to role.
func (m Ministry) AllowedFor(role Role) bool {
	for _, v := range ministriesByRole[role] {
		if v == m {
			return true
		}
	}
	return false
}

// ParseMinistry parses a stable ministry identifier; empty means none.
func ParseMinistry(s string) (Ministry, error) {
	if s == "" {
		return MinistryNone, nil
	}
	m := Ministry(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMinistry, s)
	}
	return m, nil
}

// Level is the oversight or proficiency tier of an attendee.
type Level string

// Levels.
const (
	LevelRegionalSupervisor Level = "regional_supervisor"
	LevelLocalSupervisor    Level = "local_supervisor"
	LevelInstructor         Level = "instructor"
	LevelMusician           Level = "musician"
)

// Levels lists every level in display order.
var Levels = []Level{LevelRegionalSupervisor, LevelLocalSupervisor, LevelInstructor, LevelMusician}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	switch l {
	case LevelRegionalSupervisor, LevelLocalSupervisor, LevelInstructor, LevelMusician:
		return true
	}
	return false
}

// Supervisor reports whether l is a regional or local supervisor.
func (l Level) Supervisor() bool {
	return l == LevelRegionalSupervisor || l == LevelLocalSupervisor
}

// ParseLevel parses a stable level identifier; empty means musician.
func ParseLevel(s string) (Level, error) {
	if s == "" {
		return LevelMusician, nil
	}
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return l, nil
}
