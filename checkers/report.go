package checkers

import (
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/bsaid97/go-topology-checker/geometry"
)

// Kind classifies a topological finding.
type Kind string

const (
	KindOverlap     Kind = "overlap"
	KindContainment Kind = "containment"
	KindGap         Kind = "gap"
)

// kindRank fixes the presentation order of finding kinds.
var kindRank = map[Kind]int{KindOverlap: 0, KindContainment: 1, KindGap: 2}

// Finding is one detected topology error. Immutable once produced.
//
// Overlap findings reference the two features in ascending id order.
// Containment findings reference outer then inner. Gap findings reference
// the features touching the void, which may be empty for an isolated void.
type Finding struct {
	Kind     Kind
	Features []string
	// Region is the offending area: intersection parts for overlaps, the
	// inner feature for containments, the void for gaps.
	Region []geometry.Polygon
	// Measure is the area of the region, or the inner feature's length when
	// a polyline is contained.
	Measure float64
}

// Warning records a predicate failure for which the offending pair or group
// was skipped. Warnings are run-quality diagnostics, distinct from data
// findings: a report with warnings may be incomplete.
type Warning struct {
	Op       string
	Features []string
	Message  string
}

// Report is the aggregated result of one check run: findings grouped by
// kind in deterministic order, plus any predicate warnings.
type Report struct {
	RunID    uuid.UUID
	Findings []Finding
	Warnings []Warning
}

// Empty reports whether the run produced no findings and no warnings.
func (r *Report) Empty() bool {
	return len(r.Findings) == 0 && len(r.Warnings) == 0
}

// ByKind returns the findings of one kind, preserving report order.
func (r *Report) ByKind(k Kind) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Kind == k {
			out = append(out, f)
		}
	}
	return out
}

// aggregate merges the checkers' outputs: containment supersedes overlap for
// the same pair, exact duplicates are dropped, and the result is sorted by
// kind, then feature ids, then region bounds.
func aggregate(tolerance float64, overlaps, containments, gaps []Finding, warnings []Warning) *Report {
	// Containment implies full overlap; keep the more specific finding.
	contained := make(map[string]bool, len(containments))
	for _, f := range containments {
		contained[unorderedPairKey(f.Features)] = true
	}

	var findings []Finding
	for _, f := range overlaps {
		if contained[unorderedPairKey(f.Features)] {
			continue
		}
		findings = append(findings, f)
	}
	findings = append(findings, containments...)
	findings = append(findings, gaps...)

	findings = dedupe(tolerance, findings)
	sort.SliceStable(findings, func(i, j int) bool {
		return findingLess(findings[i], findings[j])
	})

	return &Report{RunID: uuid.New(), Findings: findings, Warnings: warnings}
}

// dedupe removes findings with the same kind, feature id set, and a
// geometrically equal region within tolerance.
func dedupe(tolerance float64, findings []Finding) []Finding {
	kept := make([]Finding, 0, len(findings))
	byKey := make(map[string][]Finding)
	for _, f := range findings {
		key := string(f.Kind) + "|" + unorderedPairKey(f.Features)
		dup := false
		for _, prev := range byKey[key] {
			if regionsEqual(tolerance, prev, f) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		byKey[key] = append(byKey[key], f)
		kept = append(kept, f)
	}
	return kept
}

// regionsEqual approximates geometric equality of two finding regions:
// equal measure and equal bounds within tolerance. Findings that already
// share kind and feature ids cannot have distinct regions passing both.
func regionsEqual(tolerance float64, a, b Finding) bool {
	if math.Abs(a.Measure-b.Measure) > tolerance {
		return false
	}
	ra, rb := regionBounds(a.Region), regionBounds(b.Region)
	return math.Abs(ra[0]-rb[0]) <= tolerance &&
		math.Abs(ra[1]-rb[1]) <= tolerance &&
		math.Abs(ra[2]-rb[2]) <= tolerance &&
		math.Abs(ra[3]-rb[3]) <= tolerance
}

func regionBounds(region []geometry.Polygon) [4]float64 {
	if len(region) == 0 {
		return [4]float64{}
	}
	rect := region[0].Bounds()
	for _, p := range region[1:] {
		rect = rect.Union(p.Bounds())
	}
	return [4]float64{rect.X.Lo, rect.Y.Lo, rect.X.Hi, rect.Y.Hi}
}

func findingLess(a, b Finding) bool {
	if kindRank[a.Kind] != kindRank[b.Kind] {
		return kindRank[a.Kind] < kindRank[b.Kind]
	}
	fa, fb := strings.Join(a.Features, "\x00"), strings.Join(b.Features, "\x00")
	if fa != fb {
		return fa < fb
	}
	ra, rb := regionBounds(a.Region), regionBounds(b.Region)
	for i := range ra {
		if ra[i] != rb[i] {
			return ra[i] < rb[i]
		}
	}
	return a.Measure < b.Measure
}

func unorderedPairKey(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}
