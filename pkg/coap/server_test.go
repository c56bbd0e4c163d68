package coap

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// startTestServer starts a unicast server on a loopback port.
func startTestServer(t *testing.T, handler Handler, onError func(error)) *Server {
	t.Helper()

	server, err := NewServer(ServerConfig{
		Address: "127.0.0.1:0",
		Handler: handler,
		OnError: onError,
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if err := server.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { server.Stop() })
	return server
}

func TestServerRequestResponse(t *testing.T) {
	handler := HandlerFunc(func(req *IncomingRequest) (*Message, error) {
		resp := &Message{
			Type:      NonConfirmable,
			Code:      CodeContent,
			MessageID: req.Message.MessageID,
			Token:     req.Message.Token,
			Payload:   []byte("hello"),
		}
		return resp, nil
	})
	server := startTestServer(t, handler, nil)

	msg := NewMessage(NonConfirmable, CodeGET)
	msg.Token = NewToken()
	msg.SetPath("/cit/s")

	client := &Client{Timeout: time.Second}
	resp, err := client.Do(context.Background(), server.Addr().String(), msg)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if resp.Code != CodeContent {
		t.Errorf("response code = %v, want 2.05", resp.Code)
	}
	if string(resp.Payload) != "hello" {
		t.Errorf("payload = %q, want hello", resp.Payload)
	}
}

func TestServerNilResponseSendsNothing(t *testing.T) {
	handler := HandlerFunc(func(req *IncomingRequest) (*Message, error) {
		return nil, nil
	})
	server := startTestServer(t, handler, nil)

	msg := NewMessage(NonConfirmable, CodeGET)
	msg.SetPath("/other")

	client := &Client{Timeout: 200 * time.Millisecond}
	if _, err := client.Do(context.Background(), server.Addr().String(), msg); err == nil {
		t.Error("expected timeout for ignored request, got response")
	}
}

func TestServerHandlerErrorReported(t *testing.T) {
	handlerErr := errors.New("status payload unavailable")
	var reported atomic.Value
	handler := HandlerFunc(func(req *IncomingRequest) (*Message, error) {
		return nil, handlerErr
	})
	server := startTestServer(t, handler, func(err error) {
		reported.Store(err)
	})

	msg := NewMessage(NonConfirmable, CodeGET)
	msg.SetPath("/cit/s")

	client := &Client{Timeout: 200 * time.Millisecond}
	client.Do(context.Background(), server.Addr().String(), msg)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if got, ok := reported.Load().(error); ok {
			if !errors.Is(got, handlerErr) {
				t.Errorf("reported error = %v, want %v", got, handlerErr)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("handler error never reported through OnError")
}

func TestServerStopIdempotent(t *testing.T) {
	server, err := NewServer(ServerConfig{
		Address: "127.0.0.1:0",
		Handler: HandlerFunc(func(*IncomingRequest) (*Message, error) { return nil, nil }),
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	// Stop before Start is a no-op
	if err := server.Stop(); err != nil {
		t.Errorf("Stop before Start failed: %v", err)
	}

	if err := server.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := server.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if err := server.Stop(); err != nil {
		t.Errorf("second Stop failed: %v", err)
	}
}

func TestServerDoubleStart(t *testing.T) {
	server := startTestServer(t, HandlerFunc(func(*IncomingRequest) (*Message, error) { return nil, nil }), nil)

	if err := server.Start(); err == nil {
		t.Error("second Start should fail while running")
	}
}

func TestServerRequiresHandler(t *testing.T) {
	if _, err := NewServer(ServerConfig{Address: "127.0.0.1:0"}); err == nil {
		t.Error("NewServer without handler should fail")
	}
}

func TestServerListenerID(t *testing.T) {
	server := startTestServer(t, HandlerFunc(func(*IncomingRequest) (*Message, error) { return nil, nil }), nil)
	if server.ListenerID() == "" {
		t.Error("ListenerID empty after Start")
	}
}
