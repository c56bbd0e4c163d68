package coap

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"
)

// DefaultResponseTimeout is the unicast response deadline.
const DefaultResponseTimeout = 2 * time.Second

// Client sends outbound CoAP requests over ephemeral UDP sockets.
// The zero value is usable.
type Client struct {
	// Timeout is the unicast response deadline (default 2s).
	Timeout time.Duration

	// MaxDatagramSize bounds inbound response datagrams (default 8KB).
	MaxDatagramSize int
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultResponseTimeout
}

func (c *Client) bufSize() int {
	if c.MaxDatagramSize > 0 {
		return c.MaxDatagramSize
	}
	return DefaultMaxDatagramSize
}

// Do sends a unicast request and waits for the matching response.
// Responses are matched on token when the request carries one, otherwise on
// message ID.
func (c *Client) Do(ctx context.Context, target string, msg *Message) (*Message, error) {
	conn, err := net.Dial("udp4", target)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", target, err)
	}
	defer conn.Close()

	data, err := Marshal(msg)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	deadline := time.Now().Add(c.timeout())
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	buf := make([]byte, c.bufSize())
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := conn.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("no response from %s: %w", target, err)
		}
		resp, err := Unmarshal(buf[:n])
		if err != nil {
			continue
		}
		if c.matches(msg, resp) {
			return resp, nil
		}
	}
}

// Multicast sends a request to a multicast group and collects responses for
// the duration of the window. The send is best-effort: an expired window with
// no responses is not an error. CoIoT announcements discard the result.
func (c *Client) Multicast(ctx context.Context, group string, msg *Message, window time.Duration) ([]*Message, error) {
	conn, err := net.Dial("udp4", group)
	if err != nil {
		return nil, fmt.Errorf("failed to dial multicast group %s: %w", group, err)
	}
	defer conn.Close()

	data, err := Marshal(msg)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("failed to send to multicast group: %w", err)
	}

	deadline := time.Now().Add(window)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	var responses []*Message
	buf := make([]byte, c.bufSize())
	for {
		if ctx.Err() != nil {
			return responses, nil
		}
		n, err := conn.Read(buf)
		if err != nil {
			// Deadline expiry ends the collection window.
			return responses, nil
		}
		resp, err := Unmarshal(buf[:n])
		if err != nil {
			continue
		}
		if c.matches(msg, resp) {
			responses = append(responses, resp)
		}
	}
}

// matches reports whether resp answers req.
func (c *Client) matches(req, resp *Message) bool {
	if resp.IsRequest() {
		return false
	}
	if len(req.Token) > 0 {
		return bytes.Equal(req.Token, resp.Token)
	}
	return req.MessageID == resp.MessageID
}
