// Package device defines the contract between the CoIoT status server and
// the device whose status it exposes, plus simulated implementations of a
// few first-generation Shelly models.
//
// The server needs very little from a device: its model type, its unique id,
// a point-in-time status payload, and change notification. Base provides the
// identity and listener plumbing; the concrete models add their state and
// status blocks.
//
// Status payloads follow the CoIoT generic-sensor layout:
//
//	{"G": [[channel, sensor, value], ...]}
package device
