package voronoi

import (
	"image"

	"github.com/gogpu/voronoi/render"
	"github.com/gogpu/voronoi/schedule"
)

// Tick is a host change counter. Larger ticks are newer.
type Tick = schedule.Tick

// MeshID identifies a mesh asset.
type MeshID = render.AssetID

// ImageID identifies an image asset. Zero means no image.
type ImageID = render.AssetID

// Material flags a drawable as a participant of the mask pass.
type Material struct {
	// Mask is an optional alpha image sampled by the mesh UVs. Texels
	// whose alpha is below Threshold are not written. Zero fills the
	// whole mesh.
	Mask ImageID
	// Threshold is the alpha cut-off in [0,1].
	Threshold float32
}

// Drawable is one entity of the host scene.
type Drawable struct {
	ID   render.EntityID
	Mesh MeshID
	// Transform maps mesh coordinates to world coordinates.
	Transform render.Affine
	// Material is nil for drawables that do not take part in the flood.
	Material *Material
	// Depth orders drawables in the depth-sorted queue. Later draws win
	// where shapes overlap.
	Depth float32
	// Changed is the tick of the last transform, material or mesh change.
	Changed Tick
}

// View is one camera rendering into a target.
type View struct {
	ID     render.ViewID
	Target *render.ViewTarget
	// WorldToTarget maps world coordinates to target pixels. The zero
	// value is treated as the identity.
	WorldToTarget render.Affine
	// Changed is the tick of the last camera change.
	Changed Tick
	// Visible lists the drawables the view sees, in participant order.
	Visible []render.EntityID
	// Settings overrides the plugin settings for this view.
	Settings *Settings
}

func (v *View) worldToTarget() render.Affine {
	if v.WorldToTarget == (render.Affine{}) {
		return render.Identity()
	}
	return v.WorldToTarget
}

// Frame is everything RenderFrame needs to know about one frame.
type Frame struct {
	Tick      Tick
	Views     []View
	Drawables []Drawable
	// Assets resolves meshes and mask images. Nil resolves nothing.
	Assets Assets
}

// Assets resolves asset handles.
type Assets interface {
	Mesh(id MeshID) (*render.Mesh, bool)
	Image(id ImageID) (image.Image, bool)
}

// AssetMap is an Assets backed by maps.
type AssetMap struct {
	Meshes map[MeshID]*render.Mesh
	Images map[ImageID]image.Image
}

// Mesh returns the mesh registered under id.
func (a AssetMap) Mesh(id MeshID) (*render.Mesh, bool) {
	m, ok := a.Meshes[id]
	return m, ok && m != nil
}

// Image returns the image registered under id.
func (a AssetMap) Image(id ImageID) (image.Image, bool) {
	img, ok := a.Images[id]
	return img, ok && img != nil
}
