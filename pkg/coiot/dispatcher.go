package coiot

import (
	"fmt"
	"net"
	"sync"

	"github.com/tefinger/fake-shelly/pkg/coap"
	"github.com/tefinger/fake-shelly/pkg/log"
)

// DispatcherConfig configures the request listeners.
type DispatcherConfig struct {
	// Address is the unicast listen address (default ":5683").
	Address string

	// Group is the multicast group joined for group requests
	// (default "224.0.1.187:5683").
	Group string

	// Interface restricts the multicast group join to one interface.
	// Empty means the system default.
	Interface string

	// Handler answers GET requests for the status path. Required.
	Handler coap.Handler

	// Logger for protocol logging (optional).
	Logger log.Logger

	// OnError is called when the handler fails (optional).
	OnError func(err error)
}

// Dispatcher listens on the unicast port and the multicast group and routes
// status requests to its handler. Requests for other paths or with other
// methods are dropped without a reply; multicast groups carry traffic for
// every device on the segment.
type Dispatcher struct {
	config    DispatcherConfig
	unicast   *coap.Server
	multicast *coap.Server

	mu      sync.Mutex
	running bool
}

// NewDispatcher creates the unicast and multicast listeners.
func NewDispatcher(config DispatcherConfig) (*Dispatcher, error) {
	if config.Handler == nil {
		return nil, ErrNoHandler
	}
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", coap.DefaultPort)
	}
	if config.Group == "" {
		config.Group = DefaultMulticastGroup
	}
	if config.Logger == nil {
		config.Logger = log.NoopLogger{}
	}

	d := &Dispatcher{config: config}
	route := coap.HandlerFunc(d.route)

	var err error
	d.unicast, err = coap.NewServer(coap.ServerConfig{
		Address: config.Address,
		Handler: route,
		Logger:  config.Logger,
		OnError: config.OnError,
	})
	if err != nil {
		return nil, err
	}
	d.multicast, err = coap.NewServer(coap.ServerConfig{
		MulticastGroup: config.Group,
		Interface:      config.Interface,
		Handler:        route,
		Logger:         config.Logger,
		OnError:        config.OnError,
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Start binds both listeners. The bind is all-or-nothing: if the multicast
// join fails, the already-bound unicast socket is closed again and nothing
// is left running.
func (d *Dispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return ErrAlreadyStarted
	}
	if err := d.unicast.Start(); err != nil {
		return fmt.Errorf("failed to start unicast listener: %w", err)
	}
	if err := d.multicast.Start(); err != nil {
		d.unicast.Stop()
		return fmt.Errorf("failed to start multicast listener: %w", err)
	}
	d.running = true
	return nil
}

// Stop closes both listeners. It is safe to call Stop multiple times and
// before Start.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}
	d.running = false

	err := d.unicast.Stop()
	if merr := d.multicast.Stop(); err == nil {
		err = merr
	}
	return err
}

// Addr returns the bound unicast address, or nil before Start.
func (d *Dispatcher) Addr() net.Addr {
	return d.unicast.Addr()
}

// route forwards GET requests for the status path to the handler and drops
// everything else without a reply.
func (d *Dispatcher) route(req *coap.IncomingRequest) (*coap.Message, error) {
	if req.Message.Code != coap.CodeGET || req.Message.Path() != StatusPath {
		return nil, nil
	}
	return d.config.Handler.HandleRequest(req)
}
