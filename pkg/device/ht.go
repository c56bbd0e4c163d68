package device

import "sync"

// TypeShellyHT is the model identifier of the Shelly H&T climate sensor.
const TypeShellyHT = "SHHT-1"

// ShellyHT simulates a Shelly H&T: a battery powered temperature and
// humidity sensor.
type ShellyHT struct {
	*Base

	mu          sync.Mutex
	temperature float64
	humidity    float64
	battery     int
}

// NewShellyHT creates a Shelly H&T at room conditions with a full battery.
func NewShellyHT(id string) *ShellyHT {
	return &ShellyHT{
		Base:        NewBase(TypeShellyHT, id),
		temperature: 20.0,
		humidity:    50.0,
		battery:     100,
	}
}

// Temperature returns the measured temperature in degrees Celsius.
func (d *ShellyHT) Temperature() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.temperature
}

// Humidity returns the measured relative humidity in percent.
func (d *ShellyHT) Humidity() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.humidity
}

// Battery returns the remaining battery charge in percent.
func (d *ShellyHT) Battery() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.battery
}

// SetReadings updates temperature and humidity and notifies change listeners
// if either value actually changed.
func (d *ShellyHT) SetReadings(temperature, humidity float64) {
	d.mu.Lock()
	changed := d.temperature != temperature || d.humidity != humidity
	d.temperature = temperature
	d.humidity = humidity
	d.mu.Unlock()

	if changed {
		d.NotifyChange()
	}
}

// SetBattery sets the remaining battery charge in percent and notifies
// change listeners if the value actually changed.
func (d *ShellyHT) SetBattery(percent int) {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}

	d.mu.Lock()
	changed := d.battery != percent
	d.battery = percent
	d.mu.Unlock()

	if changed {
		d.NotifyChange()
	}
}

// StatusPayload returns temperature, humidity and battery as a
// generic-sensor block.
func (d *ShellyHT) StatusPayload() any {
	d.mu.Lock()
	defer d.mu.Unlock()

	return StatusOf(
		SensorReading{Channel: 0, Sensor: SensorTemperature, Value: d.temperature},
		SensorReading{Channel: 0, Sensor: SensorHumidity, Value: d.humidity},
		SensorReading{Channel: 0, Sensor: SensorBattery, Value: d.battery},
	)
}
