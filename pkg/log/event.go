package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ListenerID uniquely identifies the socket that captured the event (UUID).
	// Empty for events not tied to a listener (e.g. announcer state changes).
	ListenerID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the peer address (IP:port), if known.
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// DeviceID is the CoIoT device identifier ("type#id#1").
	DeviceID string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Message     *MessageEvent     `cbor:"8,keyasint,omitempty"`  // Announcements, requests, responses
	StateChange *StateChangeEvent `cbor:"9,keyasint,omitempty"`  // Listener/announcer lifecycle
	Error       *ErrorEventData   `cbor:"10,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the CoAP message layer (raw datagrams, codec).
	LayerTransport Layer = 0
	// LayerOptions is the CoIoT option encoding layer.
	LayerOptions Layer = 1
	// LayerService is the status announcer/responder layer.
	LayerService Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerOptions:
		return "OPTIONS"
	case LayerService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a protocol message (announcement/request/response).
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MessageEvent captures a protocol message.
type MessageEvent struct {
	// Kind distinguishes announcement/request/response.
	Kind MessageKind `cbor:"1,keyasint"`

	// Method is the CoAP method or response code ("GET", "2.05 Content").
	Method string `cbor:"2,keyasint,omitempty"`

	// Path is the requested resource path ("/cit/s").
	Path string `cbor:"3,keyasint,omitempty"`

	// MessageID is the CoAP message ID.
	MessageID uint16 `cbor:"4,keyasint"`

	// Serial is the CoIoT status serial carried by the message, if any.
	Serial *uint16 `cbor:"5,keyasint,omitempty"`

	// PayloadSize is the body size in bytes.
	PayloadSize int `cbor:"6,keyasint,omitempty"`
}

// MessageKind distinguishes announcement/request/response.
type MessageKind uint8

const (
	// KindRequest indicates an inbound status request.
	KindRequest MessageKind = 0
	// KindResponse indicates an outbound status response.
	KindResponse MessageKind = 1
	// KindAnnouncement indicates a multicast status announcement.
	KindAnnouncement MessageKind = 2
)

// String returns the message kind name.
func (k MessageKind) String() string {
	switch k {
	case KindRequest:
		return "REQUEST"
	case KindResponse:
		return "RESPONSE"
	case KindAnnouncement:
		return "ANNOUNCEMENT"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures listener and announcer lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityListener indicates a listening socket state change.
	StateEntityListener StateEntity = 0
	// StateEntityAnnouncer indicates an announcer state change.
	StateEntityAnnouncer StateEntity = 1
	// StateEntityService indicates a composed-service state change.
	StateEntityService StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityListener:
		return "LISTENER"
	case StateEntityAnnouncer:
		return "ANNOUNCER"
	case StateEntityService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
