package coiot

import "time"

const (
	// StatusPath is the resource path of the device status.
	StatusPath = "/cit/s"

	// MulticastAddress is the IPv4 group CoIoT traffic uses.
	MulticastAddress = "224.0.1.187"

	// DefaultMulticastGroup is the group and port announcements are sent to
	// and group requests are received on.
	DefaultMulticastGroup = "224.0.1.187:5683"

	// RebroadcastInterval is the default period between status announcements.
	// Each announcement, periodic or change-triggered, schedules the next one
	// a full interval later.
	RebroadcastInterval = 30 * time.Second

	// StatusValidity is the default advertised lifetime of a status in
	// seconds, carried in option 3412.
	StatusValidity = 38400

	// MulticastResponseWindow bounds how long an announcement's send socket
	// stays open collecting stray responses before it is closed.
	MulticastResponseWindow = 100 * time.Millisecond

	// IdentifierRevision is the trailing field of the device identifier.
	IdentifierRevision = 1
)
