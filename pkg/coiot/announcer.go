package coiot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tefinger/fake-shelly/pkg/coap"
	"github.com/tefinger/fake-shelly/pkg/device"
	"github.com/tefinger/fake-shelly/pkg/log"
)

// AnnouncerConfig configures the periodic status announcer.
type AnnouncerConfig struct {
	// Device whose status is announced. Required.
	Device device.Device

	// Identifier advertised in option 3332. Defaults to Identifier(Device).
	Identifier string

	// Group is the multicast destination (default "224.0.1.187:5683").
	Group string

	// Interval between announcements (default 30s).
	Interval time.Duration

	// Window bounds how long each send socket stays open for stray responses
	// (default 100ms).
	Window time.Duration

	// Validity advertised in option 3412, in seconds (default 38400).
	Validity int

	// Serial supplies the status sequence. Pass the device's shared counter;
	// defaults to a fresh one.
	Serial *SerialCounter

	// Client performs the multicast sends. Defaults to a zero-value client.
	Client *coap.Client

	// Logger for protocol logging (optional).
	Logger log.Logger

	// OnError is called when an announcement cannot be built or sent
	// (optional). Failures never stop the periodic schedule.
	OnError func(err error)
}

// Announcer multicasts the device status every interval and immediately on
// every device change. Each announcement, periodic or change-triggered,
// pushes the next periodic one a full interval into the future.
type Announcer struct {
	config     AnnouncerConfig
	identifier string

	mu          sync.Mutex
	running     bool
	ctx         context.Context
	timer       *time.Timer
	unsubscribe func()

	sent atomic.Uint64
}

// NewAnnouncer creates a new announcer for a device.
func NewAnnouncer(config AnnouncerConfig) (*Announcer, error) {
	if config.Device == nil {
		return nil, ErrNoDevice
	}
	if config.Identifier == "" {
		config.Identifier = Identifier(config.Device)
	}
	if config.Group == "" {
		config.Group = DefaultMulticastGroup
	}
	if config.Interval == 0 {
		config.Interval = RebroadcastInterval
	}
	if config.Window == 0 {
		config.Window = MulticastResponseWindow
	}
	if config.Validity == 0 {
		config.Validity = StatusValidity
	}
	if config.Serial == nil {
		config.Serial = NewSerialCounter()
	}
	if config.Client == nil {
		config.Client = &coap.Client{}
	}
	if config.Logger == nil {
		config.Logger = log.NoopLogger{}
	}
	return &Announcer{config: config, identifier: config.Identifier}, nil
}

// Start subscribes to device changes and sends the first announcement.
func (a *Announcer) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return ErrAlreadyStarted
	}
	a.running = true
	a.ctx = ctx
	a.unsubscribe = a.config.Device.OnChange(a.Announce)
	a.mu.Unlock()

	a.logState("", "ANNOUNCING", "")
	a.Announce()
	return nil
}

// Stop cancels the periodic schedule and unsubscribes from device changes.
// It is safe to call Stop multiple times and before Start.
func (a *Announcer) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	a.logState("ANNOUNCING", "STOPPED", "")
}

// Announce sends one announcement now and reschedules the next periodic one.
// Called from the timer, from device change listeners, and on demand.
func (a *Announcer) Announce() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	// Cancel-and-replace: the pending periodic broadcast moves a full
	// interval past this one.
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.config.Interval, a.Announce)

	msg, serial, err := a.buildAnnouncement()
	ctx := a.ctx
	a.mu.Unlock()

	if err != nil {
		a.reportError(err, "build announcement")
		return
	}

	a.logAnnouncement(msg, serial)

	// The send is fire-and-forget. The socket stays open for the response
	// window; anything it collects is discarded.
	go func() {
		if _, err := a.config.Client.Multicast(ctx, a.config.Group, msg, a.config.Window); err != nil {
			a.reportError(err, "send announcement")
			return
		}
		a.sent.Add(1)
	}()
}

// AnnouncementsSent returns the number of announcements successfully handed
// to the network.
func (a *Announcer) AnnouncementsSent() uint64 {
	return a.sent.Load()
}

// buildAnnouncement assembles the multicast status message. The serial is
// consumed only once the payload is known to encode.
func (a *Announcer) buildAnnouncement() (*coap.Message, uint16, error) {
	payload, err := json.Marshal(a.config.Device.StatusPayload())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode status payload: %w", err)
	}

	serial := a.config.Serial.Next()

	msg := coap.NewMessage(coap.NonConfirmable, coap.CodeGET)
	msg.MessageID = coap.NextMessageID()
	msg.SetPath(StatusPath)
	if err := applyStatusOptions(msg, a.identifier, a.config.Validity, int(serial)); err != nil {
		return nil, 0, err
	}
	msg.Payload = payload
	return msg, serial, nil
}

func (a *Announcer) reportError(err error, context string) {
	a.config.Logger.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionOut,
		Layer:     log.LayerService,
		Category:  log.CategoryError,
		DeviceID:  a.identifier,
		Error: &log.ErrorEventData{
			Layer:   log.LayerService,
			Message: err.Error(),
			Context: context,
		},
	})
	if a.config.OnError != nil {
		a.config.OnError(err)
	}
}

func (a *Announcer) logAnnouncement(msg *coap.Message, serial uint16) {
	a.config.Logger.Log(log.Event{
		Timestamp:  time.Now(),
		Direction:  log.DirectionOut,
		Layer:      log.LayerService,
		Category:   log.CategoryMessage,
		RemoteAddr: a.config.Group,
		DeviceID:   a.identifier,
		Message: &log.MessageEvent{
			Kind:        log.KindAnnouncement,
			Method:      msg.Code.String(),
			Path:        msg.Path(),
			MessageID:   msg.MessageID,
			Serial:      &serial,
			PayloadSize: len(msg.Payload),
		},
	})
}

func (a *Announcer) logState(oldState, newState, reason string) {
	a.config.Logger.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerService,
		Category:  log.CategoryState,
		DeviceID:  a.identifier,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityAnnouncer,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}
