package phase

import (
	"slices"

	"github.com/gogpu/voronoi/render"
)

// BinnedPhase groups items into bins by key. Batchable items of one bin
// are drawn as a single instanced draw in insertion order; unbatchable
// items are drawn one by one.
type BinnedPhase struct {
	batchable   map[BinKey][]render.EntityID
	batchKeys   []BinKey
	unbatchable map[BinKey][]render.EntityID
	singleKeys  []BinKey
	n           int
}

// NewBinnedPhase returns an empty phase.
func NewBinnedPhase() *BinnedPhase {
	return &BinnedPhase{
		batchable:   make(map[BinKey][]render.EntityID),
		unbatchable: make(map[BinKey][]render.EntityID),
	}
}

// Add queues entity under key.
func (p *BinnedPhase) Add(key BinKey, entity render.EntityID, batchable bool) {
	if batchable {
		if _, ok := p.batchable[key]; !ok {
			p.batchKeys = append(p.batchKeys, key)
		}
		p.batchable[key] = append(p.batchable[key], entity)
	} else {
		if _, ok := p.unbatchable[key]; !ok {
			p.singleKeys = append(p.singleKeys, key)
		}
		p.unbatchable[key] = append(p.unbatchable[key], entity)
	}
	p.n++
}

// Clear drops every item.
func (p *BinnedPhase) Clear() {
	clear(p.batchable)
	clear(p.unbatchable)
	p.batchKeys = p.batchKeys[:0]
	p.singleKeys = p.singleKeys[:0]
	p.n = 0
}

// Len returns the number of queued entities.
func (p *BinnedPhase) Len() int {
	return p.n
}

// Bins returns the number of batchable bins.
func (p *BinnedPhase) Bins() int {
	return len(p.batchKeys)
}

// DrawItems returns one draw per batchable bin, in ascending key order,
// followed by one draw per unbatchable entity, also grouped by ascending
// key. Batched draws carry their bin index as ExtraIndex.
func (p *BinnedPhase) DrawItems() ([]DrawItem, []render.EntityID) {
	items := make([]DrawItem, 0, len(p.batchKeys)+p.n)
	instances := make([]render.EntityID, 0, p.n)

	keys := slices.Clone(p.batchKeys)
	slices.SortFunc(keys, BinKey.Compare)
	for i, key := range keys {
		entities := p.batchable[key]
		start := uint32(len(instances))
		instances = append(instances, entities...)
		items = append(items, DrawItem{
			Key:        key,
			Entity:     entities[0],
			Batch:      BatchRange{Start: start, End: uint32(len(instances))},
			ExtraIndex: uint32(i),
		})
	}

	keys = slices.Clone(p.singleKeys)
	slices.SortFunc(keys, BinKey.Compare)
	for _, key := range keys {
		for _, e := range p.unbatchable[key] {
			start := uint32(len(instances))
			instances = append(instances, e)
			items = append(items, DrawItem{
				Key:        key,
				Entity:     e,
				Batch:      BatchRange{Start: start, End: start + 1},
				ExtraIndex: NoExtraIndex,
			})
		}
	}
	return items, instances
}
