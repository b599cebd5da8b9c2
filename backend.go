package fractal

import (
	"context"
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates the backend cannot render this frame.
// The caller should transparently fall back to the CPU evaluator.
var ErrFallbackToCPU = errors.New("fractal: falling back to CPU rendering")

// Backend is an optional GPU rendering provider.
//
// When registered via RegisterBackend, a Renderer tries the backend first.
// If it returns ErrFallbackToCPU or any other error, rendering falls back
// to CPU.
//
// Implementations live in backend packages and are enabled by blank import:
//
//	import _ "github.com/gogpu/fractal/gpu"
type Backend interface {
	// Name returns the backend name (e.g. "wgpu").
	Name() string

	// Init acquires GPU resources. Called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()

	// CanRender reports whether the backend supports the given mode.
	CanRender(mode RenderMode) bool

	// Render draws frame into target. Target dimensions equal the frame size.
	Render(ctx context.Context, target Target, frame Frame) error
}

// DeviceProviderAware is implemented by backends that can share a GPU device
// with an external provider such as a gogpu window.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	backendMu sync.RWMutex
	backend   Backend
)

// RegisterBackend registers the GPU backend used by renderers that do not
// specify one. Only one backend is active; registering replaces (and closes)
// the previous one. If Init fails the backend is not registered.
func RegisterBackend(b Backend) error {
	if b == nil {
		return errors.New("fractal: backend must not be nil")
	}
	if err := b.Init(); err != nil {
		return err
	}
	propagateLogger(b, Logger())

	backendMu.Lock()
	old := backend
	backend = b
	backendMu.Unlock()
	if old != nil && old != b {
		old.Close()
	}
	return nil
}

// ActiveBackend returns the registered backend, or nil.
func ActiveBackend() Backend {
	backendMu.RLock()
	b := backend
	backendMu.RUnlock()
	return b
}

// CloseBackend closes and unregisters the active backend. Call it before the
// device owner shuts down when the backend shares an external device.
func CloseBackend() {
	backendMu.Lock()
	b := backend
	backend = nil
	backendMu.Unlock()
	if b != nil {
		b.Close()
	}
}

// SetBackendDeviceProvider passes a device provider to the active backend.
// It is a no-op when no backend is registered or the backend cannot share
// devices.
func SetBackendDeviceProvider(provider any) error {
	b := ActiveBackend()
	if b == nil {
		return nil
	}
	if dpa, ok := b.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
