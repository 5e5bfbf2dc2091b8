package phase

import (
	"fmt"
	"sync"

	"github.com/gogpu/voronoi/render"
)

// Command is one step of a draw function. The concrete types below are
// the complete set; executors switch on them.
type Command interface {
	isCommand()
}

// SetItemPipeline binds the pipeline of the item's bin key.
type SetItemPipeline struct{}

// SetViewBindGroup binds the per-view uniform.
type SetViewBindGroup struct{}

// SetMeshBindGroup binds the mesh of the item's bin key and the instance
// transforms of its batch.
type SetMeshBindGroup struct{}

// SetMaskMaterialBindGroup binds the mask material of the item's entity.
type SetMaskMaterialBindGroup struct{}

// DrawMesh draws the bound mesh for every instance of the batch.
type DrawMesh struct{}

func (SetItemPipeline) isCommand()          {}
func (SetViewBindGroup) isCommand()         {}
func (SetMeshBindGroup) isCommand()         {}
func (SetMaskMaterialBindGroup) isCommand() {}
func (DrawMesh) isCommand()                 {}

// DrawMaskMesh is the command sequence of the mask pass.
var DrawMaskMesh = []Command{
	SetItemPipeline{},
	SetViewBindGroup{},
	SetMeshBindGroup{},
	SetMaskMaterialBindGroup{},
	DrawMesh{},
}

// DrawFunction is a named command sequence.
type DrawFunction struct {
	Label    string
	Commands []Command
}

// DrawFunctions is a registry of draw functions. It is safe for concurrent
// use.
type DrawFunctions struct {
	mu      sync.RWMutex
	funcs   []DrawFunction
	byLabel map[string]DrawFunctionID
}

// NewDrawFunctions returns an empty registry.
func NewDrawFunctions() *DrawFunctions {
	return &DrawFunctions{byLabel: make(map[string]DrawFunctionID)}
}

// Add registers cmds under label and returns its id. Adding an existing
// label returns the existing id.
func (d *DrawFunctions) Add(label string, cmds []Command) DrawFunctionID {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id, ok := d.byLabel[label]; ok {
		return id
	}
	id := DrawFunctionID(len(d.funcs))
	d.funcs = append(d.funcs, DrawFunction{Label: label, Commands: cmds})
	d.byLabel[label] = id
	return id
}

// ID returns the id registered for label.
func (d *DrawFunctions) ID(label string) (DrawFunctionID, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byLabel[label]
	return id, ok
}

// Get returns the draw function for id.
func (d *DrawFunctions) Get(id DrawFunctionID) (DrawFunction, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if int(id) >= len(d.funcs) {
		return DrawFunction{}, false
	}
	return d.funcs[id], true
}

// Result is the outcome of executing a draw function for one item.
type Result uint8

const (
	// Success means the item was drawn.
	Success Result = iota
	// Skip means a resource was not available; the item was not drawn.
	Skip
	// Failure means the encoder rejected a draw.
	Failure
)

// String returns the result name.
func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Skip:
		return "skip"
	case Failure:
		return "failure"
	default:
		return fmt.Sprintf("Result(%d)", r)
	}
}

// Resources resolves what draw commands bind.
type Resources interface {
	Pipeline(id render.CachedPipelineID) (render.Pipeline, error)
	View() render.ViewUniform
	Mesh(asset render.AssetID) (*render.Mesh, bool)
	Instance(entity render.EntityID) (render.Instance, bool)
	MaskMaterial(entity render.EntityID) (*render.MaskMaterial, bool)
}

// Execute runs cmds for item against enc. instances is the phase instance
// list item.Batch indexes into. A Skip result carries an error wrapping
// render.ErrMissingResource or the pipeline error.
func Execute(enc render.MaskEncoder, res Resources, cmds []Command, item DrawItem, instances []render.EntityID) (Result, error) {
	var batch []render.Instance
	for _, cmd := range cmds {
		switch cmd.(type) {
		case SetItemPipeline:
			p, err := res.Pipeline(item.Key.Pipeline)
			if err != nil {
				return Skip, fmt.Errorf("pipeline %d: %w", item.Key.Pipeline, err)
			}
			enc.SetPipeline(p)

		case SetViewBindGroup:
			enc.SetView(res.View())

		case SetMeshBindGroup:
			m, ok := res.Mesh(item.Key.Asset)
			if !ok {
				return Skip, fmt.Errorf("mesh %d: %w", item.Key.Asset, render.ErrMissingResource)
			}
			if item.Batch.End > uint32(len(instances)) || item.Batch.Start > item.Batch.End {
				return Skip, fmt.Errorf("batch %v out of range: %w", item.Batch, render.ErrMissingResource)
			}
			batch = batch[:0]
			for _, e := range instances[item.Batch.Start:item.Batch.End] {
				inst, ok := res.Instance(e)
				if !ok {
					return Skip, fmt.Errorf("instance %d: %w", e, render.ErrMissingResource)
				}
				batch = append(batch, inst)
			}
			enc.SetMesh(m)

		case SetMaskMaterialBindGroup:
			mat, ok := res.MaskMaterial(item.Entity)
			if !ok {
				return Skip, fmt.Errorf("mask material of entity %d: %w", item.Entity, render.ErrMissingResource)
			}
			enc.SetMaterial(mat)

		case DrawMesh:
			if len(batch) == 0 {
				return Skip, fmt.Errorf("draw without mesh bind group: %w", render.ErrMissingResource)
			}
			if err := enc.Draw(batch); err != nil {
				return Failure, err
			}

		default:
			return Failure, fmt.Errorf("phase: unknown command %T", cmd)
		}
	}
	return Success, nil
}
