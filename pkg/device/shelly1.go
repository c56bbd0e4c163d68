package device

import "sync"

// TypeShelly1 is the model identifier of the Shelly 1 relay switch.
const TypeShelly1 = "SHSW-1"

// Shelly1 simulates a Shelly 1: a single relay with one switch input.
type Shelly1 struct {
	*Base

	mu    sync.Mutex
	relay bool
	input bool
}

// NewShelly1 creates a Shelly 1 with the relay and input off.
func NewShelly1(id string) *Shelly1 {
	return &Shelly1{Base: NewBase(TypeShelly1, id)}
}

// Relay returns the current relay state.
func (d *Shelly1) Relay() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.relay
}

// SetRelay switches the relay and notifies change listeners if the state
// actually changed.
func (d *Shelly1) SetRelay(on bool) {
	d.mu.Lock()
	changed := d.relay != on
	d.relay = on
	d.mu.Unlock()

	if changed {
		d.NotifyChange()
	}
}

// SetInput sets the switch input state and notifies change listeners if the
// state actually changed.
func (d *Shelly1) SetInput(on bool) {
	d.mu.Lock()
	changed := d.input != on
	d.input = on
	d.mu.Unlock()

	if changed {
		d.NotifyChange()
	}
}

// StatusPayload returns the relay and input state as a generic-sensor block.
func (d *Shelly1) StatusPayload() any {
	d.mu.Lock()
	defer d.mu.Unlock()

	return StatusOf(
		SensorReading{Channel: 0, Sensor: SensorRelay, Value: boolValue(d.relay)},
		SensorReading{Channel: 0, Sensor: SensorInput, Value: boolValue(d.input)},
	)
}
