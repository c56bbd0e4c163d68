package discovery

import "context"

// Advertiser publishes a device's services on the local network.
type Advertiser interface {
	// Advertise starts advertising the CoAP status service and, when an
	// HTTP port is set, the HTTP API service. Calling Advertise again
	// replaces the running advertisements.
	Advertise(ctx context.Context, info *ServiceInfo) error

	// Update replaces the TXT records of the running advertisements.
	Update(info *ServiceInfo) error

	// StopAll withdraws all advertisements.
	StopAll()
}

// Browser finds CoIoT devices on the local network.
type Browser interface {
	// Browse streams discovered devices until the context is cancelled.
	Browse(ctx context.Context) (<-chan *Service, error)

	// FindByDeviceID browses until a device with the given identifier
	// appears or the context expires.
	FindByDeviceID(ctx context.Context, deviceID string) (*Service, error)

	// Stop ends all active browsing.
	Stop()
}
