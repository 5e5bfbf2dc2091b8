//go:build !nogpu

package wgpu

import (
	"github.com/gogpu/voronoi/backend"
	"github.com/gogpu/voronoi/internal/gpu"
	"github.com/gogpu/voronoi/render"
)

// Config configures the GPU backend.
type Config = gpu.Config

func init() {
	backend.Register(backend.NameWGPU, func() (render.Backend, error) {
		return Open(Config{})
	})
}

// Open opens a GPU device and creates a backend on it.
func Open(cfg Config) (render.Backend, error) {
	b, err := gpu.Open(cfg)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// NewFromProvider creates a backend on the device of a host application.
// The device is not destroyed when the backend is closed.
func NewFromProvider(cfg Config, provider render.DeviceHandle) (render.Backend, error) {
	b, err := gpu.NewFromProvider(cfg, provider)
	if err != nil {
		return nil, err
	}
	return b, nil
}
