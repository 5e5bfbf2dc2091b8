package voronoi

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/voronoi/render"
)

func TestToAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 20, 14, 22))
	src.SetNRGBA(11, 21, color.NRGBA{R: 255, A: 200})

	a := toAlpha(src)
	if a.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Fatalf("bounds = %v", a.Bounds())
	}
	if got := a.AlphaAt(1, 1).A; got != 200 {
		t.Errorf("alpha at (1,1) = %d, want 200", got)
	}
	if got := a.AlphaAt(0, 0).A; got != 0 {
		t.Errorf("alpha at (0,0) = %d, want 0", got)
	}

	own := image.NewAlpha(image.Rect(0, 0, 2, 2))
	if toAlpha(own) != own {
		t.Error("alpha images must not be copied")
	}
}

func TestMaskImagesCache(t *testing.T) {
	img := image.NewAlpha(image.Rect(0, 0, 1, 1))
	m := newMaskImages(AssetMap{Images: map[ImageID]image.Image{1: img}})

	a, ok := m.get(1)
	if !ok || a != img {
		t.Fatalf("get(1) = %v, %v", a, ok)
	}
	if _, ok := m.get(2); ok {
		t.Error("get(2) found a missing image")
	}
	if _, cached := m.alpha[2]; !cached {
		t.Error("missing images are looked up again every draw")
	}
}

func TestAssetMapNilEntries(t *testing.T) {
	a := AssetMap{
		Meshes: map[MeshID]*render.Mesh{1: nil},
		Images: map[ImageID]image.Image{1: nil},
	}
	if _, ok := a.Mesh(1); ok {
		t.Error("nil mesh reported present")
	}
	if _, ok := a.Image(1); ok {
		t.Error("nil image reported present")
	}
	var empty AssetMap
	if _, ok := empty.Mesh(3); ok {
		t.Error("empty map reported a mesh")
	}
}

func TestPipelineDescriptors(t *testing.T) {
	key := render.MeshKeyHDR | render.MeshKeyMasked
	d := maskPipeline(key)
	if d.Kind != render.PipelineMask || !d.HDR || d.Mesh != key || d.Format != render.FloodFormat {
		t.Errorf("mask descriptor = %+v", d)
	}
	if maskPipeline(0) == maskPipeline(render.MeshKeyStrip) {
		t.Error("topology must select a distinct mask variant")
	}
	if c := compositePipeline(true); c.Format != render.TargetFormat(true) || !c.HDR {
		t.Errorf("hdr composite descriptor = %+v", c)
	}
	if compositePipeline(false) == compositePipeline(true) {
		t.Error("composite variants must differ by HDR")
	}
}
