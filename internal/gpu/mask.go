//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"honnef.co/go/safeish"

	"github.com/gogpu/voronoi/render"
)

// BeginMask clears target and returns an encoder drawing into it.
// Every Draw is one dispatch over the viewport.
func (b *Backend) BeginMask(target render.Surface, viewport render.Viewport) (render.MaskEncoder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	dst, err := b.surface(target)
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(dst.buf, 0, make([]byte, dst.size))
	return &maskEncoder{
		b:        b,
		dst:      dst,
		viewport: viewport.Clamp(dst.desc.Width, dst.desc.Height),
	}, nil
}

type maskEncoder struct {
	b        *Backend
	dst      *Surface
	viewport render.Viewport

	pipeline render.Pipeline
	view     render.ViewUniform
	mesh     *render.Mesh
	material *render.MaskMaterial

	tris []gpuTriangle
	done bool
}

func (e *maskEncoder) SetPipeline(p render.Pipeline)      { e.pipeline = p }
func (e *maskEncoder) SetView(v render.ViewUniform)       { e.view = v }
func (e *maskEncoder) SetMesh(m *render.Mesh)             { e.mesh = m }
func (e *maskEncoder) SetMaterial(m *render.MaskMaterial) { e.material = m }

// Draw uploads the triangles of every instance and rasterizes them in
// one dispatch.
func (e *maskEncoder) Draw(instances []render.Instance) error {
	if e.done {
		return errors.New("gpu: draw after End")
	}
	if e.mesh == nil {
		return fmt.Errorf("%w: no mesh bound", render.ErrMissingResource)
	}
	if err := e.mesh.Validate(); err != nil {
		return err
	}
	if e.viewport.Empty() || len(instances) == 0 {
		return nil
	}

	e.tris = e.tris[:0]
	for _, inst := range instances {
		m := e.view.WorldToSurface.Multiply(inst.Transform)
		e.mesh.Triangles(func(a, b, c int) bool {
			e.tris = append(e.tris, gpuTriangle{
				A:     vec2(m.Apply(e.mesh.Positions[a])),
				B:     vec2(m.Apply(e.mesh.Positions[b])),
				C:     vec2(m.Apply(e.mesh.Positions[c])),
				UVA:   vec2(e.mesh.UV(a)),
				UVB:   vec2(e.mesh.UV(b)),
				UVC:   vec2(e.mesh.UV(c)),
				Owner: inst.Owner,
			})
			return true
		})
	}

	b := e.b
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.boundPipeline(e.pipeline, render.PipelineMask)
	if err != nil {
		return err
	}
	if _, err := b.surface(e.dst); err != nil {
		return err
	}

	params := maskParams{
		Width:    u32(e.dst.desc.Width),
		Height:   u32(e.dst.desc.Height),
		VpX0:     u32(e.viewport.X),
		VpY0:     u32(e.viewport.Y),
		VpX1:     u32(e.viewport.X + e.viewport.Width),
		VpY1:     u32(e.viewport.Y + e.viewport.Height),
		TriCount: u32(len(e.tris)),
	}
	alpha := []float32{1}
	if e.material != nil && e.material.Mask != nil {
		mask := e.material.Mask
		mb := mask.Bounds()
		alpha = make([]float32, mb.Dx()*mb.Dy())
		for y := 0; y < mb.Dy(); y++ {
			for x := 0; x < mb.Dx(); x++ {
				alpha[y*mb.Dx()+x] = float32(mask.AlphaAt(mb.Min.X+x, mb.Min.Y+y).A) / 255
			}
		}
		params.Masked = 1
		params.MaskWidth = u32(mb.Dx())
		params.MaskHeight = u32(mb.Dy())
		params.Threshold = e.material.Threshold
	}
	if len(alpha) == 0 {
		return nil
	}

	triBytes := safeish.SliceCast[[]byte](e.tris)
	triBuf, err := b.upload("mask_triangles", triBytes)
	if err != nil {
		return err
	}
	defer b.device.DestroyBuffer(triBuf)

	alphaBytes := safeish.SliceCast[[]byte](alpha)
	alphaBuf, err := b.upload("mask_alpha", alphaBytes)
	if err != nil {
		return err
	}
	defer b.device.DestroyBuffer(alphaBuf)

	return b.dispatch(p, safeish.AsBytes(&params),
		u32(e.viewport.Width), u32(e.viewport.Height),
		binding{buf: triBuf, size: uint64(len(triBytes))},
		binding{buf: alphaBuf, size: uint64(len(alphaBytes))},
		e.dst.binding(),
	)
}

// End finishes the pass. Draws after End fail.
func (e *maskEncoder) End() error {
	if e.done {
		return errors.New("gpu: mask pass ended twice")
	}
	e.done = true
	return nil
}

// upload creates a read-only storage buffer holding data. Callers hold b.mu.
func (b *Backend) upload(label string, data []byte) (hal.Buffer, error) {
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", label, err)
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func vec2(v render.Vec2) [2]float32 {
	return [2]float32{v.X, v.Y}
}
