package software

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/voronoi/flood"
	"github.com/gogpu/voronoi/render"
)

type pipelines map[render.PipelineKind]render.Pipeline

func newBackend(t *testing.T) (*Backend, pipelines) {
	t.Helper()
	b := New(4)
	t.Cleanup(func() { _ = b.Close() })

	ps := make(pipelines)
	for _, kind := range []render.PipelineKind{render.PipelineMask, render.PipelineSeed, render.PipelineFlood, render.PipelineComposite} {
		p, err := b.CompilePipeline(render.PipelineDescriptor{Kind: kind})
		if err != nil {
			t.Fatalf("CompilePipeline(%v) error = %v", kind, err)
		}
		ps[kind] = p
	}
	return b, ps
}

func newSurface(t *testing.T, b *Backend, w, h int, format gputypes.TextureFormat) render.Surface {
	t.Helper()
	s, err := b.CreateSurface(render.SurfaceDescriptor{Width: w, Height: h, Format: format, Usage: render.FloodUsage})
	if err != nil {
		t.Fatalf("CreateSurface() error = %v", err)
	}
	return s
}

// square is a drawable covering the size×size texels starting at (x, y).
type square struct {
	x, y, size int
	owner      uint32
}

func (s square) instance() render.Instance {
	half := float32(s.size) / 2
	return render.Instance{
		Transform: render.Translate(float32(s.x)+half, float32(s.y)+half),
		Owner:     s.owner,
	}
}

// runJFA draws the squares, seeds and floods a w×h field and returns
// the final texels.
func runJFA(t *testing.T, b *Backend, ps pipelines, w, h int, squares ...square) *flood.Field {
	t.Helper()
	a := newSurface(t, b, w, h, render.FloodFormat)
	c := newSurface(t, b, w, h, render.FloodFormat)
	pp := flood.NewPingPong(a, c)

	enc, err := b.BeginMask(pp.Input(), render.FullViewport(w, h))
	if err != nil {
		t.Fatalf("BeginMask() error = %v", err)
	}
	enc.SetPipeline(ps[render.PipelineMask])
	enc.SetView(render.ViewUniform{WorldToSurface: render.Identity(), Width: w, Height: h})
	for _, sq := range squares {
		enc.SetMesh(render.Rectangle(float32(sq.size), float32(sq.size)))
		enc.SetMaterial(nil)
		if err := enc.Draw([]render.Instance{sq.instance()}); err != nil {
			t.Fatalf("Draw() error = %v", err)
		}
	}
	if err := enc.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	if err := b.Seed(ps[render.PipelineSeed], pp.Input(), pp.Output()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	pp.Flip()
	for _, step := range flood.Steps(w, h) {
		if err := b.Flood(ps[render.PipelineFlood], pp.Input(), pp.Output(), step); err != nil {
			t.Fatalf("Flood(%+v) error = %v", step, err)
		}
		pp.Flip()
	}
	return pp.Input().(*Surface).Field()
}

func TestSingleSeedReachesEveryTexel(t *testing.T) {
	b, ps := newBackend(t)
	f := runJFA(t, b, ps, 512, 512, square{x: 256, y: 256, size: 1, owner: 1})

	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			tx := f.At(x, y)
			if !tx.Valid() {
				t.Fatalf("texel (%d,%d) has no seed", x, y)
			}
			if cx, cy := tx.Coord(); cx != 256 || cy != 256 {
				t.Fatalf("texel (%d,%d) seed = (%d,%d), want (256,256)", x, y, cx, cy)
			}
		}
	}
}

func TestTwoSquaresSplitAlongBisector(t *testing.T) {
	b, ps := newBackend(t)
	f := runJFA(t, b, ps, 256, 256,
		square{x: 16, y: 16, size: 8, owner: 1},
		square{x: 232, y: 232, size: 8, owner: 2},
	)

	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			d := x + y - 255
			if d >= -1 && d <= 1 {
				continue
			}
			want := uint32(1)
			if d > 0 {
				want = 2
			}
			if got := f.At(x, y).Owner(); got != want {
				t.Fatalf("owner at (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestRefineNeverIncreasesDistance(t *testing.T) {
	b, ps := newBackend(t)
	f := runJFA(t, b, ps, 64, 48,
		square{x: 5, y: 7, size: 3, owner: 1},
		square{x: 40, y: 30, size: 5, owner: 2},
		square{x: 60, y: 2, size: 2, owner: 3},
	)

	in := newSurface(t, b, 64, 48, render.FloodFormat)
	out := newSurface(t, b, 64, 48, render.FloodFormat)
	copy(in.(*Surface).Field().Pix, f.Pix)
	if err := b.Flood(ps[render.PipelineFlood], in, out, flood.Refine); err != nil {
		t.Fatal(err)
	}

	got := out.(*Surface).Field()
	dist := func(f *flood.Field, x, y int) int {
		cx, cy := f.At(x, y).Coord()
		return flood.SquaredDistance(x, y, cx, cy)
	}
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			if !got.At(x, y).Valid() {
				t.Fatalf("texel (%d,%d) lost its seed", x, y)
			}
			if after, before := dist(got, x, y), dist(f, x, y); after > before {
				t.Fatalf("texel (%d,%d) distance grew from %d to %d", x, y, before, after)
			}
		}
	}
}

func TestMaskRespectsViewport(t *testing.T) {
	b, ps := newBackend(t)
	s := newSurface(t, b, 16, 16, render.FloodFormat)

	enc, err := b.BeginMask(s, render.Viewport{X: 4, Y: 4, Width: 8, Height: 8})
	if err != nil {
		t.Fatal(err)
	}
	enc.SetPipeline(ps[render.PipelineMask])
	enc.SetView(render.ViewUniform{WorldToSurface: render.Identity(), Width: 16, Height: 16})
	enc.SetMesh(render.Rectangle(16, 16))
	if err := enc.Draw([]render.Instance{{Transform: render.Translate(8, 8), Owner: 7}}); err != nil {
		t.Fatal(err)
	}
	if err := enc.End(); err != nil {
		t.Fatal(err)
	}

	f := s.(*Surface).Field()
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			inside := x >= 4 && x < 12 && y >= 4 && y < 12
			tx := f.At(x, y)
			if inside && (tx != flood.MaskTexel(1, 7)) {
				t.Errorf("texel (%d,%d) = %v, want covered by owner 7", x, y, tx)
			}
			if !inside && tx != (flood.Texel{}) {
				t.Errorf("texel (%d,%d) = %v outside viewport, want zero", x, y, tx)
			}
		}
	}
}

func TestMaskMaterialThreshold(t *testing.T) {
	b, ps := newBackend(t)
	s := newSurface(t, b, 16, 16, render.FloodFormat)

	alpha := image.NewAlpha(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 8; x++ {
			alpha.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}

	enc, err := b.BeginMask(s, render.FullViewport(16, 16))
	if err != nil {
		t.Fatal(err)
	}
	enc.SetPipeline(ps[render.PipelineMask])
	enc.SetView(render.ViewUniform{WorldToSurface: render.Identity(), Width: 16, Height: 16})
	enc.SetMesh(render.Rectangle(16, 16))
	enc.SetMaterial(&render.MaskMaterial{Mask: alpha, Threshold: 0.5})
	if err := enc.Draw([]render.Instance{{Transform: render.Translate(8, 8), Owner: 1}}); err != nil {
		t.Fatal(err)
	}
	if err := enc.End(); err != nil {
		t.Fatal(err)
	}

	f := s.(*Surface).Field()
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			covered := f.At(x, y)[0] >= flood.CoverageThreshold
			if want := x < 8; covered != want {
				t.Errorf("texel (%d,%d) covered = %v, want %v", x, y, covered, want)
			}
		}
	}
}

func TestMaskLaterDrawWins(t *testing.T) {
	b, ps := newBackend(t)
	f := runJFA(t, b, ps, 8, 8,
		square{x: 0, y: 0, size: 8, owner: 1},
		square{x: 0, y: 0, size: 8, owner: 2},
	)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := f.At(x, y).Owner(); got != 2 {
				t.Fatalf("owner at (%d,%d) = %d, want 2", x, y, got)
			}
		}
	}
}

func TestCompositeOutsideViewportCopiesSource(t *testing.T) {
	b, ps := newBackend(t)
	field := newSurface(t, b, 4, 4, render.FloodFormat)
	field.(*Surface).Field().Fill(flood.SeedTexel(0, 0, 3))

	src := newSurface(t, b, 4, 4, gputypes.TextureFormatRGBA8Unorm)
	dst := newSurface(t, b, 4, 4, gputypes.TextureFormatRGBA8Unorm)
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 255, 255
	}
	if err := b.WriteSurface(src, img); err != nil {
		t.Fatal(err)
	}

	params := render.DefaultCompositeParams()
	params.Mode = render.CompositeVoronoi
	pp := render.PostProcessWrite{Source: src, Destination: dst}
	if err := b.Composite(ps[render.PipelineComposite], field, pp, render.Viewport{Width: 2, Height: 2}, params); err != nil {
		t.Fatal(err)
	}

	out := dst.(*Surface).Field()
	oc := render.OwnerColor(3)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got := out.At(x, y)
			want := flood.Texel{1, 0, 0, 1}
			if x < 2 && y < 2 {
				want = flood.Texel{quantize(oc[0]), quantize(oc[1]), quantize(oc[2]), 1}
			}
			if got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestWriteSurfaceResamples(t *testing.T) {
	b, _ := newBackend(t)
	s := newSurface(t, b, 8, 8, gputypes.TextureFormatRGBA8Unorm)

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	if err := b.WriteSurface(s, img); err != nil {
		t.Fatal(err)
	}
	pix, err := b.ReadSurface(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(pix) != 8*8*4 {
		t.Fatalf("len(pix) = %d, want %d", len(pix), 8*8*4)
	}
	for i, v := range pix {
		if v != 1 {
			t.Fatalf("pix[%d] = %v, want 1", i, v)
		}
	}
}

func TestPassErrors(t *testing.T) {
	b, ps := newBackend(t)
	a := newSurface(t, b, 4, 4, render.FloodFormat)
	c := newSurface(t, b, 4, 4, render.FloodFormat)
	small := newSurface(t, b, 2, 2, render.FloodFormat)
	ldr := newSurface(t, b, 4, 4, gputypes.TextureFormatRGBA8Unorm)

	tests := []struct {
		name string
		err  error
	}{
		{"wrong pipeline", b.Seed(ps[render.PipelineFlood], a, c)},
		{"nil pipeline", b.Seed(nil, a, c)},
		{"same surface", b.Flood(ps[render.PipelineFlood], a, a, flood.Refine)},
		{"size mismatch", b.Flood(ps[render.PipelineFlood], a, small, flood.Refine)},
		{"unorm flood", b.Flood(ps[render.PipelineFlood], a, ldr, flood.Refine)},
		{"zero step", b.Flood(ps[render.PipelineFlood], a, c, flood.Step{})},
	}
	for _, tt := range tests {
		if tt.err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}

	b.DestroySurface(c)
	if err := b.Seed(ps[render.PipelineSeed], a, c); !errors.Is(err, render.ErrMissingResource) {
		t.Errorf("Seed into destroyed surface error = %v, want ErrMissingResource", err)
	}
}

func TestLifecycle(t *testing.T) {
	b := New(1)
	if b.Name() != "software" {
		t.Errorf("Name() = %q", b.Name())
	}

	s, err := b.CreateSurface(render.SurfaceDescriptor{Width: 2, Height: 2, Format: render.FloodFormat})
	if err != nil {
		t.Fatal(err)
	}
	if b.LiveSurfaces() != 1 {
		t.Errorf("LiveSurfaces() = %d, want 1", b.LiveSurfaces())
	}
	b.DestroySurface(s)
	b.DestroySurface(s)
	if b.LiveSurfaces() != 0 {
		t.Errorf("LiveSurfaces() after destroy = %d, want 0", b.LiveSurfaces())
	}

	if _, err := b.CreateSurface(render.SurfaceDescriptor{Width: 2, Height: 2, Format: gputypes.TextureFormatR8Unorm}); err == nil {
		t.Error("CreateSurface with R8Unorm should fail")
	}

	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.CreateSurface(render.SurfaceDescriptor{Width: 2, Height: 2, Format: render.FloodFormat}); !errors.Is(err, ErrClosed) {
		t.Errorf("CreateSurface after Close error = %v, want ErrClosed", err)
	}
}
