//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"
	"honnef.co/go/safeish"

	"github.com/gogpu/voronoi/render"
)

// texelSize is the size of one vec4<f32> texel in bytes.
const texelSize = 16

// Surface is a storage buffer of W×H vec4<f32> texels.
type Surface struct {
	desc render.SurfaceDescriptor
	buf  hal.Buffer
	size uint64
}

// Descriptor returns the descriptor the surface was created from.
func (s *Surface) Descriptor() render.SurfaceDescriptor { return s.desc }

func (s *Surface) binding() binding {
	return binding{buf: s.buf, size: s.size}
}

func (s *Surface) unorm() bool {
	return s.desc.Format == gputypes.TextureFormatRGBA8Unorm
}

// CreateSurface allocates a zeroed surface.
func (b *Backend) CreateSurface(desc render.SurfaceDescriptor) (render.Surface, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	switch desc.Format {
	case gputypes.TextureFormatRGBA32Float, gputypes.TextureFormatRGBA8Unorm:
	default:
		return nil, fmt.Errorf("gpu: unsupported surface format %v", desc.Format)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	size := uint64(desc.Width) * uint64(desc.Height) * texelSize //nolint:gosec // validated surface size
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create surface %q: %w", desc.Label, err)
	}
	b.queue.WriteBuffer(buf, 0, make([]byte, size))

	s := &Surface{desc: desc, buf: buf, size: size}
	b.surfaces[s] = struct{}{}
	return s, nil
}

// DestroySurface releases s.
func (b *Backend) DestroySurface(s render.Surface) {
	gs, ok := s.(*Surface)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, live := b.surfaces[gs]; !live {
		return
	}
	delete(b.surfaces, gs)
	b.device.DestroyBuffer(gs.buf)
	gs.buf = nil
}

// surface resolves s to a live surface of this backend. Callers hold b.mu.
func (b *Backend) surface(s render.Surface) (*Surface, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	gs, ok := s.(*Surface)
	if !ok || gs == nil {
		return nil, fmt.Errorf("%w: surface %T not created by the gpu backend", render.ErrMissingResource, s)
	}
	if _, live := b.surfaces[gs]; !live {
		return nil, fmt.Errorf("%w: surface %q destroyed", render.ErrMissingResource, gs.desc.Label)
	}
	return gs, nil
}

// WriteSurface uploads img into s. Images of a different size are
// resampled bilinearly.
func (b *Backend) WriteSurface(s render.Surface, img image.Image) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	dst, err := b.surface(s)
	if err != nil {
		return err
	}

	w, h := dst.desc.Width, dst.desc.Height
	rgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	if img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		draw.BiLinear.Scale(rgba, rgba.Bounds(), img, img.Bounds(), draw.Src, nil)
	}

	texels := make([]float32, w*h*4)
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		for i, v := range row {
			texels[y*w*4+i] = float32(v) / 255
		}
	}
	b.queue.WriteBuffer(dst.buf, 0, safeish.SliceCast[[]byte](texels))
	return nil
}

// ReadSurface copies s into a staging buffer and returns its texels.
func (b *Backend) ReadSurface(s render.Surface) ([]float32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	src, err := b.surface(s)
	if err != nil {
		return nil, err
	}

	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "voronoi_staging",
		Size:  src.size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	err = b.submit("voronoi_readback", func(enc hal.CommandEncoder) error {
		enc.CopyBufferToBuffer(src.buf, staging, []hal.BufferCopy{
			{SrcOffset: 0, DstOffset: 0, Size: src.size},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: read surface %q: %w", src.desc.Label, err)
	}

	texels := make([]float32, src.size/4)
	if err := b.queue.ReadBuffer(staging, 0, safeish.SliceCast[[]byte](texels)); err != nil {
		return nil, fmt.Errorf("gpu: readback: %w", err)
	}
	return texels, nil
}
