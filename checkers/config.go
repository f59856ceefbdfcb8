package checkers

import (
	"fmt"

	"github.com/bsaid97/go-topology-checker/geometry"
)

// Scope restricts which feature pairs the overlap and containment checkers
// compare, keyed on the features' source group.
type Scope string

const (
	// ScopeAll compares every candidate pair regardless of group.
	ScopeAll Scope = "all"
	// ScopeWithinGroup compares only pairs from the same group.
	ScopeWithinGroup Scope = "within-group"
	// ScopeCrossGroup compares only pairs from different groups.
	ScopeCrossGroup Scope = "cross-group"
)

// Config carries the tunable parameters of one check run. The zero value is
// not usable; start from DefaultConfig.
type Config struct {
	// Tolerance absorbs floating-point noise in closure, equality and
	// overlap tests. An intersection whose area is at or below Tolerance is
	// classified as boundary touching, not overlap.
	Tolerance float64

	// OverlapScope selects which pairs the overlap and containment
	// checkers consider.
	OverlapScope Scope

	// OverlapMinArea suppresses overlap findings below this area.
	OverlapMinArea float64

	// ContainmentMinArea suppresses containment findings whose inner
	// feature area is below this value.
	ContainmentMinArea float64

	// GapMinArea suppresses void findings below this area.
	GapMinArea float64

	// ExcludeEdgeGaps drops voids that touch the group's coverage envelope
	// edge. Off by default: perimeter gaps are real data errors.
	ExcludeEdgeGaps bool

	// Boundaries optionally declares the expected coverage boundary per
	// group. Groups without an entry fall back to the convex hull of their
	// union.
	Boundaries map[string]geometry.Polygon
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Tolerance:    1e-9,
		OverlapScope: ScopeAll,
		GapMinArea:   1e-9,
	}
}

func (c Config) validate() error {
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance must be >= 0, got %v", c.Tolerance)
	}
	switch c.OverlapScope {
	case ScopeAll, ScopeWithinGroup, ScopeCrossGroup:
	default:
		return fmt.Errorf("unknown overlap scope %q", c.OverlapScope)
	}
	if c.OverlapMinArea < 0 || c.ContainmentMinArea < 0 || c.GapMinArea < 0 {
		return fmt.Errorf("minimum areas must be >= 0")
	}
	return nil
}

// inScope applies the configured scope to one pair of source groups.
func inScope(scope Scope, groupA, groupB string) bool {
	switch scope {
	case ScopeWithinGroup:
		return groupA == groupB
	case ScopeCrossGroup:
		return groupA != groupB
	default:
		return true
	}
}
