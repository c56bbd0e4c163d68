package device

// Sensor IDs used in CoIoT generic-sensor status blocks.
const (
	SensorTemperature = 33
	SensorHumidity    = 44
	SensorBattery     = 77
	SensorPower       = 111
	SensorRelay       = 112
	SensorInput       = 118
)

// SensorReading is one [channel, sensor, value] triple in a status payload.
type SensorReading struct {
	Channel int
	Sensor  int
	Value   any
}

// StatusOf builds the CoIoT generic-sensor payload {"G": [...]} from the
// given readings, preserving their order.
func StatusOf(readings ...SensorReading) map[string]any {
	g := make([][]any, 0, len(readings))
	for _, r := range readings {
		g = append(g, []any{r.Channel, r.Sensor, r.Value})
	}
	return map[string]any{"G": g}
}

// boolValue encodes a boolean sensor state as the 0/1 integer the status
// block carries on the wire.
func boolValue(on bool) int {
	if on {
		return 1
	}
	return 0
}
