package software

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/vector"

	"github.com/gogpu/voronoi/flood"
	"github.com/gogpu/voronoi/render"
)

// BeginMask clears target and returns an encoder drawing into it.
func (b *Backend) BeginMask(target render.Surface, viewport render.Viewport) (render.MaskEncoder, error) {
	dst, err := b.surface(target)
	if err != nil {
		return nil, err
	}
	dst.field.Fill(flood.Texel{})
	return &maskEncoder{
		dst:      dst,
		viewport: viewport.Clamp(dst.field.W, dst.field.H).Rect(),
	}, nil
}

type maskEncoder struct {
	dst      *Surface
	viewport image.Rectangle

	pipeline render.Pipeline
	view     render.ViewUniform
	mesh     *render.Mesh
	material *render.MaskMaterial

	z    vector.Rasterizer
	pts  []render.Vec2
	tris []triangle
	done bool
}

type triangle struct {
	a, b, c    render.Vec2
	ua, ub, uc render.Vec2
}

func (e *maskEncoder) SetPipeline(p render.Pipeline)      { e.pipeline = p }
func (e *maskEncoder) SetView(v render.ViewUniform)       { e.view = v }
func (e *maskEncoder) SetMesh(m *render.Mesh)             { e.mesh = m }
func (e *maskEncoder) SetMaterial(m *render.MaskMaterial) { e.material = m }

// Draw rasterizes the bound mesh once per instance. Later instances
// overwrite the texels of earlier ones.
func (e *maskEncoder) Draw(instances []render.Instance) error {
	if e.done {
		return errors.New("software: draw after End")
	}
	if err := checkPipeline(e.pipeline, render.PipelineMask); err != nil {
		return err
	}
	if e.mesh == nil {
		return fmt.Errorf("%w: no mesh bound", render.ErrMissingResource)
	}
	if err := e.mesh.Validate(); err != nil {
		return err
	}
	for _, inst := range instances {
		e.drawInstance(inst)
	}
	return nil
}

func (e *maskEncoder) drawInstance(inst render.Instance) {
	m := e.view.WorldToSurface.Multiply(inst.Transform)

	e.pts = e.pts[:0]
	for _, p := range e.mesh.Positions {
		e.pts = append(e.pts, m.Apply(p))
	}

	bounds := image.Rectangle{}
	e.tris = e.tris[:0]
	e.mesh.Triangles(func(a, b, c int) bool {
		t := triangle{
			a: e.pts[a], b: e.pts[b], c: e.pts[c],
			ua: e.mesh.UV(a), ub: e.mesh.UV(b), uc: e.mesh.UV(c),
		}
		e.tris = append(e.tris, t)
		bounds = bounds.Union(t.bounds())
		return true
	})

	r := bounds.Intersect(e.viewport)
	if r.Empty() {
		return
	}

	e.z.Reset(r.Dx(), r.Dy())
	e.z.DrawOp = draw.Src
	ox, oy := float32(r.Min.X), float32(r.Min.Y)
	for _, t := range e.tris {
		e.z.MoveTo(t.a.X-ox, t.a.Y-oy)
		e.z.LineTo(t.b.X-ox, t.b.Y-oy)
		e.z.LineTo(t.c.X-ox, t.c.Y-oy)
		e.z.ClosePath()
	}
	cov := image.NewAlpha(r)
	e.z.Draw(cov, r, image.Opaque, image.Point{})

	masked := e.material != nil && e.material.Mask != nil
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			coverage := float32(cov.AlphaAt(x, y).A) / 255
			if coverage < flood.CoverageThreshold {
				continue
			}
			if masked && !e.sampleMask(float32(x)+0.5, float32(y)+0.5) {
				continue
			}
			e.dst.store(x, y, flood.MaskTexel(coverage, inst.Owner))
		}
	}
}

// sampleMask reports whether the material mask keeps the fragment at
// surface point (px, py).
func (e *maskEncoder) sampleMask(px, py float32) bool {
	uv, ok := e.uvAt(px, py)
	if !ok {
		return false
	}
	mask := e.material.Mask
	mb := mask.Bounds()
	ix := mb.Min.X + min(max(int(uv.X*float32(mb.Dx())), 0), mb.Dx()-1)
	iy := mb.Min.Y + min(max(int(uv.Y*float32(mb.Dy())), 0), mb.Dy()-1)
	return float32(mask.AlphaAt(ix, iy).A)/255 >= e.material.Threshold
}

// uvAt interpolates the texture coordinate at p from the triangle that
// contains it, or from the triangle p is closest to being inside.
func (e *maskEncoder) uvAt(px, py float32) (render.Vec2, bool) {
	bestScore := float32(-1e30)
	var best render.Vec2
	found := false
	for _, t := range e.tris {
		wa, wb, wc, ok := t.barycentric(px, py)
		if !ok {
			continue
		}
		score := min(wa, wb, wc)
		if score > bestScore {
			bestScore = score
			best = t.ua.Mul(wa).Add(t.ub.Mul(wb)).Add(t.uc.Mul(wc))
			found = true
			if score >= 0 {
				break
			}
		}
	}
	return best, found
}

func (t triangle) barycentric(px, py float32) (wa, wb, wc float32, ok bool) {
	area := (t.b.X-t.a.X)*(t.c.Y-t.a.Y) - (t.c.X-t.a.X)*(t.b.Y-t.a.Y)
	if area == 0 {
		return 0, 0, 0, false
	}
	wa = ((t.b.X-px)*(t.c.Y-py) - (t.c.X-px)*(t.b.Y-py)) / area
	wb = ((t.c.X-px)*(t.a.Y-py) - (t.a.X-px)*(t.c.Y-py)) / area
	wc = 1 - wa - wb
	return wa, wb, wc, true
}

func (t triangle) bounds() image.Rectangle {
	x0 := min(t.a.X, t.b.X, t.c.X)
	y0 := min(t.a.Y, t.b.Y, t.c.Y)
	x1 := max(t.a.X, t.b.X, t.c.X)
	y1 := max(t.a.Y, t.b.Y, t.c.Y)
	return image.Rect(floor(x0), floor(y0), ceil(x1), ceil(y1))
}

func floor(v float32) int {
	i := int(v)
	if float32(i) > v {
		i--
	}
	return i
}

func ceil(v float32) int {
	i := int(v)
	if float32(i) < v {
		i++
	}
	return i
}

// End finishes the pass. Draws after End fail.
func (e *maskEncoder) End() error {
	if e.done {
		return errors.New("software: mask pass ended twice")
	}
	e.done = true
	return nil
}
