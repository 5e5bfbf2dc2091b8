package backend

import (
	"errors"
	"testing"

	"github.com/gogpu/voronoi/render"
)

type stubBackend struct {
	render.Backend
	name string
}

func (b *stubBackend) Name() string { return b.name }

func register(t *testing.T, name string, err error) {
	t.Helper()
	Register(name, func() (render.Backend, error) {
		if err != nil {
			return nil, err
		}
		return &stubBackend{name: name}, nil
	})
	t.Cleanup(func() { Unregister(name) })
}

func TestRegistryGet(t *testing.T) {
	register(t, "test-a", nil)

	if !IsRegistered("test-a") {
		t.Fatal("test-a should be registered")
	}
	b, err := Get("test-a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if b.Name() != "test-a" {
		t.Errorf("Name() = %q, want %q", b.Name(), "test-a")
	}

	if _, err := Get("missing"); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Get(missing) error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestRegistryFactoryError(t *testing.T) {
	boom := errors.New("no adapter")
	register(t, "test-broken", boom)

	_, err := Get("test-broken")
	if !errors.Is(err, ErrBackendNotAvailable) || !errors.Is(err, boom) {
		t.Errorf("Get() error = %v, want both sentinels", err)
	}
}

func TestRegistryDefaultPriority(t *testing.T) {
	saved := snapshot()
	t.Cleanup(func() { restore(saved) })
	restore(nil)

	if _, err := Default(); !errors.Is(err, ErrBackendNotAvailable) {
		t.Fatalf("Default() on empty registry error = %v", err)
	}

	register(t, "zzz", nil)
	register(t, NameSoftware, nil)
	b, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if b.Name() != NameSoftware {
		t.Errorf("Default() = %q, want %q", b.Name(), NameSoftware)
	}

	register(t, NameWGPU, errors.New("no adapter"))
	b, err = Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if b.Name() != NameSoftware {
		t.Errorf("Default() with failing wgpu = %q, want fallback %q", b.Name(), NameSoftware)
	}

	register(t, NameWGPU, nil)
	b, _ = Default()
	if b.Name() != NameWGPU {
		t.Errorf("Default() = %q, want %q", b.Name(), NameWGPU)
	}
}

func TestRegistryAvailableSorted(t *testing.T) {
	register(t, "test-b", nil)
	register(t, "test-a", nil)

	names := Available()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Available() not sorted: %v", names)
		}
	}
}

func snapshot() map[string]Factory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	m := make(map[string]Factory, len(factories))
	for k, v := range factories {
		m[k] = v
	}
	return m
}

func restore(m map[string]Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories = make(map[string]Factory, len(m))
	for k, v := range m {
		factories[k] = v
	}
}
