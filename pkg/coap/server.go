package coap

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tefinger/fake-shelly/pkg/log"
)

// DefaultPort is the standard CoAP UDP port.
const DefaultPort = 5683

// DefaultMaxDatagramSize bounds inbound datagrams. CoIoT messages are small;
// anything larger than this is truncated and will fail to decode.
const DefaultMaxDatagramSize = 8192

// Handler processes inbound CoAP requests.
type Handler interface {
	// HandleRequest processes a request and returns the response to send
	// back to the requester, or nil for no response. An error is reported
	// through the server's OnError callback after being logged; the request
	// produces no response in that case unless a response was also returned.
	HandleRequest(req *IncomingRequest) (*Message, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(req *IncomingRequest) (*Message, error)

// HandleRequest calls the function.
func (f HandlerFunc) HandleRequest(req *IncomingRequest) (*Message, error) {
	return f(req)
}

// IncomingRequest is a decoded request delivered to a Handler.
type IncomingRequest struct {
	// Message is the decoded CoAP request.
	Message *Message

	// From is the datagram source address.
	From *net.UDPAddr

	// ListenerID identifies the listening socket the request arrived on.
	ListenerID string
}

// ServerConfig configures a CoAP UDP server.
type ServerConfig struct {
	// Address to listen on (e.g. ":5683"). Used for unicast listening.
	Address string

	// MulticastGroup joins the server to a multicast group instead of
	// unicast listening (e.g. "224.0.1.187:5683").
	MulticastGroup string

	// Interface restricts multicast-group listening to one interface.
	// Empty means the system default.
	Interface string

	// Handler receives decoded inbound requests. Required.
	Handler Handler

	// MaxDatagramSize bounds inbound datagrams (default 8KB).
	MaxDatagramSize int

	// Logger for protocol logging (optional).
	Logger log.Logger

	// OnError is called when a request handler returns an error (optional).
	OnError func(err error)
}

// Server is a CoAP UDP server bound to a single socket, either unicast or
// joined to a multicast group. Requests are decoded on the read loop and
// delivered to the handler sequentially, so a handler sees a total order of
// requests per listener.
type Server struct {
	config ServerConfig

	conn       *net.UDPConn
	listenerID string

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewServer creates a new CoAP server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	if config.Address == "" && config.MulticastGroup == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}
	if config.MaxDatagramSize == 0 {
		config.MaxDatagramSize = DefaultMaxDatagramSize
	}
	if config.Logger == nil {
		config.Logger = log.NoopLogger{}
	}
	return &Server{config: config}, nil
}

// Start binds the socket and starts the read loop. The socket is fully bound
// when Start returns without error.
func (s *Server) Start() error {
	if s.running.Load() {
		return fmt.Errorf("server already running")
	}

	conn, err := s.bind()
	if err != nil {
		return err
	}
	s.conn = conn
	s.listenerID = uuid.New().String()
	s.running.Store(true)

	s.logState("", "LISTENING", "")

	s.wg.Add(1)
	go s.readLoop()

	return nil
}

// Stop closes the socket and waits for the read loop to finish.
// It is safe to call Stop multiple times and before Start.
func (s *Server) Stop() error {
	if !s.running.Load() {
		return nil
	}
	s.running.Store(false)

	if s.conn != nil {
		s.conn.Close()
	}
	s.wg.Wait()

	s.logState("LISTENING", "CLOSED", "")
	return nil
}

// Addr returns the bound local address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// ListenerID returns the unique identifier of this listening socket.
func (s *Server) ListenerID() string {
	return s.listenerID
}

// bind creates the UDP socket: multicast-group membership when a group is
// configured, plain unicast otherwise.
func (s *Server) bind() (*net.UDPConn, error) {
	if s.config.MulticastGroup != "" {
		gaddr, err := net.ResolveUDPAddr("udp4", s.config.MulticastGroup)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve multicast group: %w", err)
		}

		var iface *net.Interface
		if s.config.Interface != "" {
			iface, err = net.InterfaceByName(s.config.Interface)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve interface %q: %w", s.config.Interface, err)
			}
		}

		conn, err := net.ListenMulticastUDP("udp4", iface, gaddr)
		if err != nil {
			return nil, fmt.Errorf("failed to join multicast group: %w", err)
		}
		return conn, nil
	}

	addr, err := net.ResolveUDPAddr("udp4", s.config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve listen address: %w", err)
	}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	return conn, nil
}

// readLoop receives datagrams, decodes them and dispatches requests.
func (s *Server) readLoop() {
	defer s.wg.Done()

	buf := make([]byte, s.config.MaxDatagramSize)
	for {
		n, from, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logError(fmt.Sprintf("read error: %v", err), "read datagram", "")
			continue
		}

		msg, err := Unmarshal(buf[:n])
		if err != nil {
			// Undecodable datagrams are dropped; multicast groups see
			// unrelated traffic.
			s.logError(err.Error(), "decode datagram", from.String())
			continue
		}

		// Responses and empty messages on a listening socket are not ours
		// to handle.
		if !msg.IsRequest() {
			continue
		}

		s.logMessage(log.DirectionIn, log.KindRequest, msg, from.String())
		s.dispatch(msg, from)
	}
}

// dispatch hands a request to the handler and sends back its response.
func (s *Server) dispatch(msg *Message, from *net.UDPAddr) {
	resp, err := s.config.Handler.HandleRequest(&IncomingRequest{
		Message:    msg,
		From:       from,
		ListenerID: s.listenerID,
	})
	if err != nil {
		// Log first, then surface: the handler contract is log-and-reraise,
		// and the transport policy for an unhandled error is to drop the
		// request without a response.
		s.logError(err.Error(), "handle request", from.String())
		if s.config.OnError != nil {
			s.config.OnError(err)
		}
	}
	if resp == nil {
		return
	}

	data, err := Marshal(resp)
	if err != nil {
		s.logError(err.Error(), "encode response", from.String())
		if s.config.OnError != nil {
			s.config.OnError(err)
		}
		return
	}
	if _, err := s.conn.WriteToUDP(data, from); err != nil {
		s.logError(err.Error(), "send response", from.String())
		return
	}
	s.logMessage(log.DirectionOut, log.KindResponse, resp, from.String())
}

func (s *Server) logMessage(dir log.Direction, kind log.MessageKind, msg *Message, remote string) {
	s.config.Logger.Log(log.Event{
		Timestamp:  time.Now(),
		ListenerID: s.listenerID,
		Direction:  dir,
		Layer:      log.LayerTransport,
		Category:   log.CategoryMessage,
		RemoteAddr: remote,
		Message: &log.MessageEvent{
			Kind:        kind,
			Method:      msg.Code.String(),
			Path:        msg.Path(),
			MessageID:   msg.MessageID,
			PayloadSize: len(msg.Payload),
		},
	})
}

func (s *Server) logState(oldState, newState, reason string) {
	s.config.Logger.Log(log.Event{
		Timestamp:  time.Now(),
		ListenerID: s.listenerID,
		Layer:      log.LayerTransport,
		Category:   log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityListener,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

func (s *Server) logError(msg, context, remote string) {
	s.config.Logger.Log(log.Event{
		Timestamp:  time.Now(),
		ListenerID: s.listenerID,
		Direction:  log.DirectionIn,
		Layer:      log.LayerTransport,
		Category:   log.CategoryError,
		RemoteAddr: remote,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: msg,
			Context: context,
		},
	})
}
