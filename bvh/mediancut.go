package bvh

import (
	"sort"

	"github.com/tinyrt/tinyrt/objset"
)

// MedianCutBuilder splits each range at the median centroid along its
// widest axis. It is the cheap, O(N log N), quality-agnostic builder:
// fast to run, acceptable trees for coherent scenes.
type MedianCutBuilder struct {
	Options Options
}

// NewMedianCutBuilder returns a builder using opts.
func NewMedianCutBuilder(opts Options) *MedianCutBuilder {
	return &MedianCutBuilder{Options: opts}
}

// Build implements Builder.
func (b *MedianCutBuilder) Build(objects objset.Set) (*Tree, error) {
	return buildTree(objects, b.Options, medianCutPartition)
}

func medianCutPartition(items []buildItem) (mid int, axis uint8, ok bool) {
	if len(items) < 2 {
		return 0, 0, false
	}
	ax := boundsOf(items).WidestAxis()

	sort.Slice(items, func(i, j int) bool {
		return items[i].centroid[ax] < items[j].centroid[ax]
	})

	return len(items) / 2, uint8(ax), true
}
