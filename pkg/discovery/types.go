package discovery

import (
	"errors"
	"time"
)

const (
	// ServiceTypeCoIoT is the mDNS service type of the CoAP status endpoint.
	ServiceTypeCoIoT = "_coiot._udp"

	// ServiceTypeHTTP is the mDNS service type of the HTTP API.
	ServiceTypeHTTP = "_http._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// MaxInstanceNameLen is the maximum mDNS instance name length.
	MaxInstanceNameLen = 63
)

var (
	// ErrNotFound indicates no matching service was discovered.
	ErrNotFound = errors.New("service not found")

	// ErrMissingDeviceID indicates TXT records without a device id.
	ErrMissingDeviceID = errors.New("TXT records missing device id")

	// ErrNotAdvertising indicates an update before Advertise.
	ErrNotAdvertising = errors.New("not advertising")
)

// ServiceInfo describes the services a device advertises.
type ServiceInfo struct {
	// InstanceName is the mDNS instance name (e.g. "shelly1-AABBCC").
	InstanceName string

	// DeviceID is the CoIoT device identifier ("type#id#1").
	DeviceID string

	// Model is the device type (e.g. "SHSW-1").
	Model string

	// Firmware is the advertised firmware version.
	Firmware string

	// AuthEnabled reports whether the HTTP API requires authentication.
	AuthEnabled bool

	// CoAPPort is the status endpoint port (default 5683).
	CoAPPort uint16

	// HTTPPort is the HTTP API port. Zero disables the HTTP advertisement.
	HTTPPort uint16
}

// Service is a discovered device.
type Service struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Host is the advertised hostname.
	Host string

	// Port is the advertised service port.
	Port uint16

	// Addresses are the IP addresses the service was seen on.
	Addresses []string

	// DeviceID is the CoIoT device identifier ("type#id#1").
	DeviceID string

	// Model is the device type.
	Model string

	// Firmware is the advertised firmware version.
	Firmware string

	// AuthEnabled reports whether the HTTP API requires authentication.
	AuthEnabled bool
}

// AdvertiserConfig configures an advertiser.
type AdvertiserConfig struct {
	// Interface restricts advertising to one interface. Empty means all.
	Interface string

	// TTL overrides the record time-to-live (optional).
	TTL time.Duration
}

// BrowserConfig configures a browser.
type BrowserConfig struct {
	// Interface restricts browsing to one interface. Empty means all.
	Interface string
}
