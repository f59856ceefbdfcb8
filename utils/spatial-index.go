package utils

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r2"
)

// SpatialIndex is a static, STR-packed R-tree over feature bounding boxes.
// Built once per check run, read-only afterwards, so concurrent queries from
// multiple checkers need no locking. Query results are a candidate superset:
// callers filter with exact predicates.
type SpatialIndex struct {
	root *indexNode
	size int
}

// IndexEntry associates a bounding box with a feature id.
type IndexEntry struct {
	Bounds r2.Rect
	ID     string
}

// IndexBuildError reports a failure to construct the spatial index. Fatal to
// the run that requested it.
type IndexBuildError struct {
	Reason string
}

func (e *IndexBuildError) Error() string {
	return fmt.Sprintf("spatial index build failed: %s", e.Reason)
}

// nodeCapacity is the R-tree fan-out. 16 keeps the tree shallow for datasets
// in the 10k-1M feature range without bloating node scans.
const nodeCapacity = 16

type indexNode struct {
	bounds   r2.Rect
	children []*indexNode
	entries  []IndexEntry
}

// BuildSpatialIndex bulk-loads the index from the full entry set using
// sort-tile-recursive packing. O(n log n) in the entry count.
func BuildSpatialIndex(entries []IndexEntry) (*SpatialIndex, error) {
	if len(entries) == 0 {
		return nil, &IndexBuildError{Reason: "empty feature set"}
	}
	for _, e := range entries {
		if e.Bounds.IsEmpty() {
			return nil, &IndexBuildError{Reason: fmt.Sprintf("feature %q has an empty bounding box", e.ID)}
		}
	}

	level := packLeaves(append([]IndexEntry(nil), entries...))
	for len(level) > 1 {
		level = packNodes(level)
	}
	return &SpatialIndex{root: level[0], size: len(entries)}, nil
}

// packLeaves tiles the entries into leaf nodes: sort by center x, cut into
// vertical slabs, sort each slab by center y, chunk into leaves.
func packLeaves(entries []IndexEntry) []*indexNode {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Bounds.Center().X < entries[j].Bounds.Center().X
	})

	leafCount := (len(entries) + nodeCapacity - 1) / nodeCapacity
	slabSize := slabWidth(leafCount)

	leaves := make([]*indexNode, 0, leafCount)
	for start := 0; start < len(entries); start += slabSize {
		slab := entries[start:min(start+slabSize, len(entries))]
		sort.Slice(slab, func(i, j int) bool {
			return slab[i].Bounds.Center().Y < slab[j].Bounds.Center().Y
		})
		for ls := 0; ls < len(slab); ls += nodeCapacity {
			leaf := &indexNode{entries: slab[ls:min(ls+nodeCapacity, len(slab))]}
			leaf.bounds = r2.EmptyRect()
			for _, e := range leaf.entries {
				leaf.bounds = leaf.bounds.Union(e.Bounds)
			}
			leaves = append(leaves, leaf)
		}
	}
	return leaves
}

// packNodes groups one tree level into parents using the same tiling as the
// leaf level.
func packNodes(nodes []*indexNode) []*indexNode {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].bounds.Center().X < nodes[j].bounds.Center().X
	})

	parentCount := (len(nodes) + nodeCapacity - 1) / nodeCapacity
	slabSize := slabWidth(parentCount)

	parents := make([]*indexNode, 0, parentCount)
	for start := 0; start < len(nodes); start += slabSize {
		slab := nodes[start:min(start+slabSize, len(nodes))]
		sort.Slice(slab, func(i, j int) bool {
			return slab[i].bounds.Center().Y < slab[j].bounds.Center().Y
		})
		for ls := 0; ls < len(slab); ls += nodeCapacity {
			parent := &indexNode{children: slab[ls:min(ls+nodeCapacity, len(slab))]}
			parent.bounds = r2.EmptyRect()
			for _, child := range parent.children {
				parent.bounds = parent.bounds.Union(child.bounds)
			}
			parents = append(parents, parent)
		}
	}
	return parents
}

// slabWidth returns the entry count per vertical slab for STR packing:
// ceil(sqrt(nodeCount)) slabs of nodeCapacity nodes each.
func slabWidth(nodeCount int) int {
	return int(math.Ceil(math.Sqrt(float64(nodeCount)))) * nodeCapacity
}

// Query returns the ids of all entries whose bounding box intersects bounds.
// Touching boxes count as intersecting; exactness is the predicates' job.
func (si *SpatialIndex) Query(bounds r2.Rect) []string {
	var ids []string
	si.root.query(bounds, &ids)
	return ids
}

func (n *indexNode) query(bounds r2.Rect, ids *[]string) {
	if !n.bounds.Intersects(bounds) {
		return
	}
	for _, e := range n.entries {
		if e.Bounds.Intersects(bounds) {
			*ids = append(*ids, e.ID)
		}
	}
	for _, child := range n.children {
		child.query(bounds, ids)
	}
}

// Size returns the number of indexed entries.
func (si *SpatialIndex) Size() int {
	return si.size
}
