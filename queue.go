package voronoi

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/voronoi/phase"
	"github.com/gogpu/voronoi/render"
)

// drawMaskLabel is the draw function of the mask pass.
const drawMaskLabel = "draw_mask_mesh"

func maskPipeline(key render.MeshKey) render.PipelineDescriptor {
	return render.PipelineDescriptor{
		Label:  "voronoi_mask",
		Kind:   render.PipelineMask,
		Mesh:   key,
		HDR:    key&render.MeshKeyHDR != 0,
		Format: render.FloodFormat,
	}
}

func seedPipeline() render.PipelineDescriptor {
	return render.PipelineDescriptor{Label: "voronoi_seed", Kind: render.PipelineSeed, Format: render.FloodFormat}
}

func floodPipeline() render.PipelineDescriptor {
	return render.PipelineDescriptor{Label: "voronoi_jump_flood", Kind: render.PipelineFlood, Format: render.FloodFormat}
}

func compositePipeline(hdr bool) render.PipelineDescriptor {
	return render.PipelineDescriptor{
		Label:  "voronoi_composite",
		Kind:   render.PipelineComposite,
		HDR:    hdr,
		Format: render.TargetFormat(hdr),
	}
}

// viewResources resolves the bindings of one view's mask pass. It is
// filled on the frame goroutine and only read while the view runs.
type viewResources struct {
	pipelines *render.PipelineCache
	view      render.ViewUniform
	meshes    map[MeshID]*render.Mesh
	instances map[render.EntityID]render.Instance
	materials map[render.EntityID]*render.MaskMaterial
}

func newViewResources(pc *render.PipelineCache, view render.ViewUniform) *viewResources {
	return &viewResources{
		pipelines: pc,
		view:      view,
		meshes:    make(map[MeshID]*render.Mesh),
		instances: make(map[render.EntityID]render.Instance),
		materials: make(map[render.EntityID]*render.MaskMaterial),
	}
}

func (r *viewResources) Pipeline(id render.CachedPipelineID) (render.Pipeline, error) {
	return r.pipelines.Pipeline(id)
}

func (r *viewResources) View() render.ViewUniform { return r.view }

func (r *viewResources) Mesh(id render.AssetID) (*render.Mesh, bool) {
	m, ok := r.meshes[id]
	return m, ok
}

func (r *viewResources) Instance(e render.EntityID) (render.Instance, bool) {
	inst, ok := r.instances[e]
	return inst, ok
}

func (r *viewResources) MaskMaterial(e render.EntityID) (*render.MaskMaterial, bool) {
	m, ok := r.materials[e]
	return m, ok
}

var _ phase.Resources = (*viewResources)(nil)

// maskImages converts mask images to alpha once per frame.
type maskImages struct {
	assets Assets
	alpha  map[ImageID]*image.Alpha
}

func newMaskImages(assets Assets) *maskImages {
	return &maskImages{assets: assets, alpha: make(map[ImageID]*image.Alpha)}
}

func (m *maskImages) get(id ImageID) (*image.Alpha, bool) {
	if a, ok := m.alpha[id]; ok {
		return a, a != nil
	}
	var a *image.Alpha
	if img, ok := m.assets.Image(id); ok {
		a = toAlpha(img)
	}
	m.alpha[id] = a
	return a, a != nil
}

func toAlpha(img image.Image) *image.Alpha {
	if a, ok := img.(*image.Alpha); ok {
		return a
	}
	b := img.Bounds()
	a := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(a, a.Bounds(), img, b.Min, draw.Src)
	return a
}

// participant is a visible drawable with a material.
type participant struct {
	d *Drawable
	// owner is the 1-based position in the view's participant order.
	owner uint32
}

// queueView rebuilds the mask phase of job from its participants.
// Participants that cannot be queued are skipped and counted.
func (p *Plugin) queueView(job *viewJob, parts []participant, assets Assets, images *maskImages) {
	ph := p.phases.InsertOrClear(job.view.ID)
	for _, part := range parts {
		if err := p.queueDrawable(job, ph, part, assets, images); err != nil {
			job.skipItems(part.d.ID, 1, err)
		}
	}
	job.phase = ph
}

func (p *Plugin) queueDrawable(job *viewJob, ph phase.Phase, part participant, assets Assets, images *maskImages) error {
	d := part.d
	mesh, ok := assets.Mesh(d.Mesh)
	if !ok {
		return fmt.Errorf("mesh %d: %w", d.Mesh, ErrMissingResource)
	}

	key := render.MeshKeyFromTopology(mesh.Topology)
	if job.target.HDR() {
		key |= render.MeshKeyHDR
	}
	masked := d.Material.Mask != 0
	if masked {
		key |= render.MeshKeyMasked
	}

	id, err := p.sched.Specialize(job.view.ID, d.ID, key, d.Changed, func() (render.CachedPipelineID, error) {
		if err := mesh.Validate(); err != nil {
			return 0, fmt.Errorf("specialize mesh %d: %w: %w", d.Mesh, ErrPipelineCompilation, err)
		}
		return p.pipelines.Queue(maskPipeline(key)), nil
	})
	if err != nil {
		return err
	}

	res := job.res
	res.meshes[d.Mesh] = mesh
	res.instances[d.ID] = render.Instance{Transform: d.Transform, Owner: part.owner}

	// Without its image a masked material has no bind group and the
	// draw is skipped when executed.
	mat := &render.MaskMaterial{Threshold: d.Material.Threshold}
	if !masked {
		res.materials[d.ID] = mat
	} else if a, ok := images.get(d.Material.Mask); ok {
		mat.Mask = a
		res.materials[d.ID] = mat
	}

	bin := phase.BinKey{Pipeline: id, DrawFunction: p.drawMask, Asset: d.Mesh}
	batchable := mesh.Indexed() && !masked
	switch ph := ph.(type) {
	case *phase.SortedPhase:
		ph.Add(phase.SortedItem{Key: bin, Entity: d.ID, SortKey: d.Depth, Batchable: batchable})
	case *phase.BinnedPhase:
		ph.Add(bin, d.ID, batchable)
	default:
		return fmt.Errorf("phase %T: %w", ph, ErrMissingResource)
	}
	return nil
}
