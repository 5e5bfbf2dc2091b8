package phase

import (
	"cmp"

	"github.com/gogpu/voronoi/render"
)

// DrawFunctionID identifies a draw function in a DrawFunctions registry.
type DrawFunctionID uint32

// BinKey groups items that can be drawn in one batch.
type BinKey struct {
	Pipeline     render.CachedPipelineID
	DrawFunction DrawFunctionID
	Asset        render.AssetID
}

// Compare orders keys by pipeline, then draw function, then asset.
func (k BinKey) Compare(o BinKey) int {
	if c := cmp.Compare(k.Pipeline, o.Pipeline); c != 0 {
		return c
	}
	if c := cmp.Compare(k.DrawFunction, o.DrawFunction); c != 0 {
		return c
	}
	return cmp.Compare(k.Asset, o.Asset)
}

// BatchRange is a half-open range into a phase's instance list.
type BatchRange struct {
	Start, End uint32
}

// Len returns the number of instances in the range.
func (r BatchRange) Len() int {
	return int(r.End - r.Start)
}

// NoExtraIndex marks an item without indirect draw parameters.
const NoExtraIndex = ^uint32(0)

// DrawItem is one draw of a batch: the representative entity, the
// instances it covers and, for batched draws, the index of its indirect
// parameters.
type DrawItem struct {
	Key        BinKey
	Entity     render.EntityID
	Batch      BatchRange
	ExtraIndex uint32
}

// Phase is the common surface of BinnedPhase and SortedPhase.
type Phase interface {
	// Clear drops every item, keeping allocated storage.
	Clear()
	// Len returns the number of queued entities.
	Len() int
	// DrawItems returns the batched draws and the instance list their
	// batch ranges index into.
	DrawItems() ([]DrawItem, []render.EntityID)
}
