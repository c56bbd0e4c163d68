package coiot

import (
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/tefinger/fake-shelly/pkg/coap"
	"github.com/tefinger/fake-shelly/pkg/device"
)

// ResponderConfig configures the status responder.
type ResponderConfig struct {
	// Device whose status is served. Required.
	Device device.Device

	// Identifier advertised in option 3332. Defaults to Identifier(Device).
	Identifier string

	// Validity advertised in option 3412, in seconds (default 38400).
	Validity int

	// Serial supplies the status sequence. Pass the device's shared counter;
	// defaults to a fresh one.
	Serial *SerialCounter
}

// Responder answers direct GET /cit/s requests with the current device
// status. It implements coap.Handler.
type Responder struct {
	config     ResponderConfig
	identifier string

	served atomic.Uint64
}

var _ coap.Handler = (*Responder)(nil)

// NewResponder creates a new responder for a device.
func NewResponder(config ResponderConfig) (*Responder, error) {
	if config.Device == nil {
		return nil, ErrNoDevice
	}
	if config.Identifier == "" {
		config.Identifier = Identifier(config.Device)
	}
	if config.Validity == 0 {
		config.Validity = StatusValidity
	}
	if config.Serial == nil {
		config.Serial = NewSerialCounter()
	}
	return &Responder{config: config, identifier: config.Identifier}, nil
}

// HandleRequest builds the 2.05 Content status response for a request.
// Confirmable requests get a piggybacked acknowledgement; non-confirmable
// requests get a fresh non-confirmable message matched by token.
func (r *Responder) HandleRequest(req *coap.IncomingRequest) (*coap.Message, error) {
	payload, err := json.Marshal(r.config.Device.StatusPayload())
	if err != nil {
		return nil, fmt.Errorf("failed to encode status payload: %w", err)
	}

	resp := &coap.Message{
		Code:  coap.CodeContent,
		Token: req.Message.Token,
	}
	if req.Message.Type == coap.Confirmable {
		resp.Type = coap.Acknowledgement
		resp.MessageID = req.Message.MessageID
	} else {
		resp.Type = coap.NonConfirmable
		resp.MessageID = coap.NextMessageID()
	}

	// CoIoT responses repeat the status path and identity options.
	resp.SetPath(StatusPath)
	serial := r.config.Serial.Next()
	if err := applyStatusOptions(resp, r.identifier, r.config.Validity, int(serial)); err != nil {
		return nil, err
	}
	resp.Payload = payload

	r.served.Add(1)
	return resp, nil
}

// RequestsServed returns the number of status responses built.
func (r *Responder) RequestsServed() uint64 {
	return r.served.Load()
}
