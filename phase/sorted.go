package phase

import (
	"cmp"
	"slices"

	"github.com/gogpu/voronoi/render"
)

// SortedItem is an item of a SortedPhase.
type SortedItem struct {
	Key    BinKey
	Entity render.EntityID
	// SortKey orders items ascending, typically mesh depth.
	SortKey float32
	// Batchable items may merge with an adjacent item of equal key.
	Batchable bool
}

// SortedPhase orders items by SortKey before batching.
type SortedPhase struct {
	items []SortedItem
}

// NewSortedPhase returns an empty phase.
func NewSortedPhase() *SortedPhase {
	return &SortedPhase{}
}

// Add queues an item.
func (p *SortedPhase) Add(item SortedItem) {
	p.items = append(p.items, item)
}

// Sort orders items ascending by SortKey. Items with equal keys keep their
// insertion order.
func (p *SortedPhase) Sort() {
	slices.SortStableFunc(p.items, func(a, b SortedItem) int {
		return cmp.Compare(a.SortKey, b.SortKey)
	})
}

// Items returns the queued items in their current order.
func (p *SortedPhase) Items() []SortedItem {
	return p.items
}

// Clear drops every item.
func (p *SortedPhase) Clear() {
	p.items = p.items[:0]
}

// Len returns the number of queued items.
func (p *SortedPhase) Len() int {
	return len(p.items)
}

// DrawItems sorts the phase and merges runs of adjacent batchable items
// that share a key into single draws.
func (p *SortedPhase) DrawItems() ([]DrawItem, []render.EntityID) {
	p.Sort()
	items := make([]DrawItem, 0, len(p.items))
	instances := make([]render.EntityID, 0, len(p.items))
	batches := uint32(0)

	for i, it := range p.items {
		idx := uint32(len(instances))
		instances = append(instances, it.Entity)
		if n := len(items); n > 0 && it.Batchable && p.items[i-1].Batchable && items[n-1].Key == it.Key {
			items[n-1].Batch.End = idx + 1
			continue
		}
		extra := NoExtraIndex
		if it.Batchable {
			extra = batches
			batches++
		}
		items = append(items, DrawItem{
			Key:        it.Key,
			Entity:     it.Entity,
			Batch:      BatchRange{Start: idx, End: idx + 1},
			ExtraIndex: extra,
		})
	}
	return items, instances
}
