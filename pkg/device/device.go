package device

import (
	"sync"
)

// Device is the contract the CoIoT status server needs from a managed device.
type Device interface {
	// Type returns the device model identifier (e.g. "SHSW-1").
	Type() string

	// ID returns the unique device id (e.g. "AABBCC").
	ID() string

	// StatusPayload returns the current status structure. The server
	// serializes it into announcement and response bodies.
	StatusPayload() any

	// OnChange registers a listener invoked after every state change.
	// The returned function removes the listener; calling it more than once
	// is harmless.
	OnChange(fn func()) (remove func())
}

// Base provides identity and change-notification plumbing for device
// implementations. It is safe for concurrent use.
type Base struct {
	deviceType string
	deviceID   string

	mu           sync.Mutex
	nextListener int
	listeners    map[int]func()
}

// NewBase creates the shared base for a device of the given type and id.
func NewBase(deviceType, deviceID string) *Base {
	return &Base{
		deviceType: deviceType,
		deviceID:   deviceID,
		listeners:  make(map[int]func()),
	}
}

// Type returns the device model identifier.
func (b *Base) Type() string {
	return b.deviceType
}

// ID returns the unique device id.
func (b *Base) ID() string {
	return b.deviceID
}

// OnChange registers a change listener and returns its removal function.
func (b *Base) OnChange(fn func()) (remove func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextListener
	b.nextListener++
	b.listeners[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// NotifyChange invokes all registered listeners. Listeners run outside the
// registry lock, so a listener may remove itself or register others.
func (b *Base) NotifyChange() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// ListenerCount returns the number of registered change listeners.
func (b *Base) ListenerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
