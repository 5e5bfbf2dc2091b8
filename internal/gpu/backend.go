//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/voronoi/render"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Name is the backend identifier.
const Name = "wgpu"

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("gpu: backend closed")

// waitTimeout bounds every fence wait.
const waitTimeout = 5 * time.Second

// Config configures a GPU backend.
type Config struct {
	// SPIRV compiles shaders to SPIR-V with naga instead of handing WGSL
	// to the driver.
	SPIRV bool

	// Logger receives the backend's diagnostics. Nil disables logging until
	// SetLogger is called.
	Logger *slog.Logger
}

// Backend runs the flood passes on a HAL device.
//
// Thread safety: all methods are safe for concurrent use; passes are
// serialized on the device queue.
type Backend struct {
	mu sync.Mutex

	cfg      Config
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	adapter  string

	externalDevice bool // true when using shared device (don't destroy on Close)
	closed         bool

	surfaces  map[*Surface]struct{}
	pipelines map[*pipeline]struct{}

	log atomic.Pointer[slog.Logger]
}

var _ render.Backend = (*Backend)(nil)

// Open opens the first discrete or integrated GPU and creates a backend
// on it.
func Open(cfg Config) (*Backend, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("gpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}

	b := newBackend(cfg, openDev.Device, openDev.Queue)
	b.instance = instance
	b.adapter = selected.Info.Name
	b.logger().Info("gpu: flood backend initialized", "adapter", b.adapter, "spirv", cfg.SPIRV)
	return b, nil
}

// NewWithDevice creates a backend on an existing device. The backend does
// not destroy the device on Close.
func NewWithDevice(cfg Config, device hal.Device, queue hal.Queue) (*Backend, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("gpu: nil device or queue")
	}
	b := newBackend(cfg, device, queue)
	b.externalDevice = true
	return b, nil
}

// NewFromProvider adopts the device of a host application. The provider
// must implement HalDevice() any and HalQueue() any returning hal.Device
// and hal.Queue.
func NewFromProvider(cfg Config, provider render.DeviceHandle) (*Backend, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}
	b, err := NewWithDevice(cfg, device, queue)
	if err != nil {
		return nil, err
	}
	b.logger().Info("gpu: using shared GPU device")
	return b, nil
}

func newBackend(cfg Config, device hal.Device, queue hal.Queue) *Backend {
	b := &Backend{
		cfg:       cfg,
		device:    device,
		queue:     queue,
		surfaces:  make(map[*Surface]struct{}),
		pipelines: make(map[*pipeline]struct{}),
	}
	b.log.Store(cfg.Logger)
	return b
}

// Name returns "wgpu".
func (b *Backend) Name() string { return Name }

// Adapter returns the name of the adapter the backend opened, or "" for
// a shared device.
func (b *Backend) Adapter() string { return b.adapter }

// Close destroys every surface and pipeline the backend still owns and,
// unless the device is shared, the device itself.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	for p := range b.pipelines {
		p.destroy(b.device)
	}
	clear(b.pipelines)
	for s := range b.surfaces {
		b.device.DestroyBuffer(s.buf)
		s.buf = nil
	}
	clear(b.surfaces)

	if !b.externalDevice {
		if b.device != nil {
			b.device.Destroy()
		}
		if b.instance != nil {
			b.instance.Destroy()
		}
	}
	b.device = nil
	b.queue = nil
	b.instance = nil
	return nil
}

// submit records one command buffer, submits it and waits for the GPU.
// Callers hold b.mu.
func (b *Backend) submit(label string, record func(enc hal.CommandEncoder) error) error {
	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	if err := record(encoder); err != nil {
		encoder.DiscardEncoding()
		return err
	}
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)
	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := b.device.Wait(fence, 1, waitTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}
	return nil
}

func (b *Backend) checkOpen() error {
	if b.closed {
		return ErrClosed
	}
	return nil
}
