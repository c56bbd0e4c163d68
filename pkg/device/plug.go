package device

import "sync"

// TypeShellyPlugS is the model identifier of the Shelly Plug S metering plug.
const TypeShellyPlugS = "SHPLG-S"

// ShellyPlugS simulates a Shelly Plug S: a relay with a power meter.
type ShellyPlugS struct {
	*Base

	mu    sync.Mutex
	relay bool
	power float64
}

// NewShellyPlugS creates a Shelly Plug S with the relay off and zero load.
func NewShellyPlugS(id string) *ShellyPlugS {
	return &ShellyPlugS{Base: NewBase(TypeShellyPlugS, id)}
}

// Relay returns the current relay state.
func (d *ShellyPlugS) Relay() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.relay
}

// SetRelay switches the relay. Switching off also drops the measured load
// to zero. Listeners are notified if anything changed.
func (d *ShellyPlugS) SetRelay(on bool) {
	d.mu.Lock()
	changed := d.relay != on
	d.relay = on
	if !on && d.power != 0 {
		d.power = 0
		changed = true
	}
	d.mu.Unlock()

	if changed {
		d.NotifyChange()
	}
}

// Power returns the measured load in watts.
func (d *ShellyPlugS) Power() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.power
}

// SetPower sets the measured load in watts and notifies change listeners if
// the value actually changed.
func (d *ShellyPlugS) SetPower(watts float64) {
	d.mu.Lock()
	changed := d.power != watts
	d.power = watts
	d.mu.Unlock()

	if changed {
		d.NotifyChange()
	}
}

// StatusPayload returns the power and relay state as a generic-sensor block.
func (d *ShellyPlugS) StatusPayload() any {
	d.mu.Lock()
	defer d.mu.Unlock()

	return StatusOf(
		SensorReading{Channel: 0, Sensor: SensorPower, Value: d.power},
		SensorReading{Channel: 0, Sensor: SensorRelay, Value: boolValue(d.relay)},
	)
}
