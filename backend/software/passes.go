package software

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/voronoi/flood"
	"github.com/gogpu/voronoi/render"
)

// Seed converts the mask in src into seed texels in dst.
func (b *Backend) Seed(p render.Pipeline, src, dst render.Surface) error {
	in, out, err := b.floodPair(p, render.PipelineSeed, src, dst)
	if err != nil {
		return err
	}
	b.pool.Rows(out.field.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			flood.SeedRow(in.field, out.field, y)
		}
	})
	return nil
}

// Flood runs one jump flood pass from src into dst.
func (b *Backend) Flood(p render.Pipeline, src, dst render.Surface, step flood.Step) error {
	in, out, err := b.floodPair(p, render.PipelineFlood, src, dst)
	if err != nil {
		return err
	}
	if step.X == 0 || step.Y == 0 {
		return fmt.Errorf("software: invalid flood step %+v", step)
	}
	b.pool.Rows(out.field.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			flood.FloodRow(in.field, out.field, y, step)
		}
	})
	return nil
}

func (b *Backend) floodPair(p render.Pipeline, kind render.PipelineKind, src, dst render.Surface) (*Surface, *Surface, error) {
	if err := checkPipeline(p, kind); err != nil {
		return nil, nil, err
	}
	in, err := b.surface(src)
	if err != nil {
		return nil, nil, err
	}
	out, err := b.surface(dst)
	if err != nil {
		return nil, nil, err
	}
	if in == out {
		return nil, nil, fmt.Errorf("software: %v pass reads and writes the same surface", kind)
	}
	if in.field.W != out.field.W || in.field.H != out.field.H {
		return nil, nil, fmt.Errorf("software: %v pass size mismatch %dx%d -> %dx%d",
			kind, in.field.W, in.field.H, out.field.W, out.field.H)
	}
	if out.unorm {
		return nil, nil, fmt.Errorf("software: %v pass needs a float surface", kind)
	}
	return in, out, nil
}

// Composite shades every viewport pixel of pp.Destination from the flood
// field and pp.Source. The rest of the destination is a copy of the
// source.
func (b *Backend) Composite(p render.Pipeline, field render.Surface, pp render.PostProcessWrite, viewport render.Viewport, params render.CompositeParams) error {
	if err := checkPipeline(p, render.PipelineComposite); err != nil {
		return err
	}
	f, err := b.surface(field)
	if err != nil {
		return err
	}
	src, err := b.surface(pp.Source)
	if err != nil {
		return err
	}
	dst, err := b.surface(pp.Destination)
	if err != nil {
		return err
	}
	if src == dst {
		return fmt.Errorf("software: composite reads and writes the same surface")
	}
	w, h := dst.field.W, dst.field.H
	if src.field.W != w || src.field.H != h {
		return fmt.Errorf("software: composite size mismatch %dx%d -> %dx%d", src.field.W, src.field.H, w, h)
	}

	vp := viewport.Clamp(w, h).Rect()
	b.pool.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				c := src.field.At(x, y)
				if (image.Point{X: x, Y: y}).In(vp) {
					fx, fy := render.FieldCoord(x, y, f.field.W, f.field.H, params.Scale)
					c = render.Shade(params, x, y, f.field.At(fx, fy), c)
				}
				dst.store(x, y, c)
			}
		}
	})
	return nil
}

// WriteSurface uploads img into s. Images of a different size are
// resampled bilinearly.
func (b *Backend) WriteSurface(s render.Surface, img image.Image) error {
	dst, err := b.surface(s)
	if err != nil {
		return err
	}
	w, h := dst.field.W, dst.field.H
	rgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	if img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		draw.BiLinear.Scale(rgba, rgba.Bounds(), img, img.Bounds(), draw.Src, nil)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := rgba.PixOffset(x, y)
			px := rgba.Pix[i : i+4 : i+4]
			dst.store(x, y, flood.Texel{
				float32(px[0]) / 255,
				float32(px[1]) / 255,
				float32(px[2]) / 255,
				float32(px[3]) / 255,
			})
		}
	}
	return nil
}

// ReadSurface returns a copy of the texels of s.
func (b *Backend) ReadSurface(s render.Surface) ([]float32, error) {
	cs, err := b.surface(s)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(cs.field.Pix))
	copy(out, cs.field.Pix)
	return out, nil
}

var _ render.Backend = (*Backend)(nil)
