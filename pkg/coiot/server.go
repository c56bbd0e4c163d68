package coiot

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/tefinger/fake-shelly/pkg/device"
	"github.com/tefinger/fake-shelly/pkg/log"
)

// ServerConfig configures the composed CoIoT server for one device.
type ServerConfig struct {
	// Device to expose. Required.
	Device device.Device

	// Address is the unicast listen address (default ":5683").
	Address string

	// Group is the multicast group for announcements and group requests
	// (default "224.0.1.187:5683").
	Group string

	// Interface restricts the multicast group join to one interface.
	Interface string

	// Interval between announcements (default 30s).
	Interval time.Duration

	// Window is the announcement response window (default 100ms).
	Window time.Duration

	// Validity advertised in option 3412, in seconds (default 38400).
	Validity int

	// Logger for protocol logging (optional).
	Logger log.Logger

	// OnError is called for handler and announcement failures (optional).
	OnError func(err error)
}

// Server ties together the shared serial sequence, the periodic announcer
// and the request dispatcher for a single device.
type Server struct {
	config     ServerConfig
	identifier string
	serial     *SerialCounter
	responder  *Responder
	announcer  *Announcer
	dispatcher *Dispatcher

	running atomic.Bool
}

// New creates a CoIoT server for a device.
func New(config ServerConfig) (*Server, error) {
	RegisterOptions()

	if config.Device == nil {
		return nil, ErrNoDevice
	}
	if config.Logger == nil {
		config.Logger = log.NoopLogger{}
	}

	identifier := Identifier(config.Device)
	serial := NewSerialCounter()

	responder, err := NewResponder(ResponderConfig{
		Device:     config.Device,
		Identifier: identifier,
		Validity:   config.Validity,
		Serial:     serial,
	})
	if err != nil {
		return nil, err
	}

	announcer, err := NewAnnouncer(AnnouncerConfig{
		Device:     config.Device,
		Identifier: identifier,
		Group:      config.Group,
		Interval:   config.Interval,
		Window:     config.Window,
		Validity:   config.Validity,
		Serial:     serial,
		Logger:     config.Logger,
		OnError:    config.OnError,
	})
	if err != nil {
		return nil, err
	}

	dispatcher, err := NewDispatcher(DispatcherConfig{
		Address:   config.Address,
		Group:     config.Group,
		Interface: config.Interface,
		Handler:   responder,
		Logger:    config.Logger,
		OnError:   config.OnError,
	})
	if err != nil {
		return nil, err
	}

	return &Server{
		config:     config,
		identifier: identifier,
		serial:     serial,
		responder:  responder,
		announcer:  announcer,
		dispatcher: dispatcher,
	}, nil
}

// Start binds the listeners and begins announcing. A listener bind failure
// aborts the start with nothing left running.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	if err := s.dispatcher.Start(); err != nil {
		s.running.Store(false)
		return err
	}
	if err := s.announcer.Start(ctx); err != nil {
		s.dispatcher.Stop()
		s.running.Store(false)
		return err
	}

	s.logState("", "RUNNING", "")
	return nil
}

// Stop stops announcing and closes the listeners. It is safe to call Stop
// multiple times and before Start.
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	s.announcer.Stop()
	err := s.dispatcher.Stop()

	s.logState("RUNNING", "STOPPED", "")
	return err
}

// Identifier returns the advertised device identifier ("type#id#1").
func (s *Server) Identifier() string {
	return s.identifier
}

// Addr returns the bound unicast address, or nil before Start.
func (s *Server) Addr() net.Addr {
	return s.dispatcher.Addr()
}

// Announce triggers an immediate status announcement. The periodic schedule
// resets from it.
func (s *Server) Announce() {
	s.announcer.Announce()
}

// Stats is a point-in-time snapshot of the server counters.
type Stats struct {
	// Announcements sent since Start.
	Announcements uint64

	// Responses is the number of status responses built.
	Responses uint64

	// SerialsIssued is the total number of status serials consumed.
	SerialsIssued uint64

	// NextSerial is the wire value the next status message will carry.
	NextSerial uint16
}

// Stats returns the current counters.
func (s *Server) Stats() Stats {
	return Stats{
		Announcements: s.announcer.AnnouncementsSent(),
		Responses:     s.responder.RequestsServed(),
		SerialsIssued: s.serial.Issued(),
		NextSerial:    s.serial.Peek(),
	}
}

func (s *Server) logState(oldState, newState, reason string) {
	s.config.Logger.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerService,
		Category:  log.CategoryState,
		DeviceID:  s.identifier,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityService,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}
