package coap

import (
	"crypto/rand"
	"fmt"
	mrand "math/rand/v2"
	"sort"
	"strings"
	"sync/atomic"
)

// Type is the CoAP message type (RFC 7252 section 3).
type Type uint8

const (
	// Confirmable messages require an acknowledgement.
	Confirmable Type = 0
	// NonConfirmable messages are fire-and-forget.
	NonConfirmable Type = 1
	// Acknowledgement acknowledges a confirmable message.
	Acknowledgement Type = 2
	// Reset indicates a message could not be processed.
	Reset Type = 3
)

// String returns the message type name.
func (t Type) String() string {
	switch t {
	case Confirmable:
		return "CON"
	case NonConfirmable:
		return "NON"
	case Acknowledgement:
		return "ACK"
	case Reset:
		return "RST"
	default:
		return "UNKNOWN"
	}
}

// Code is the CoAP message code: a 3-bit class and a 5-bit detail,
// conventionally written "c.dd". Class 0 codes are requests.
type Code uint8

// Request codes.
const (
	CodeEmpty  Code = 0
	CodeGET    Code = 1
	CodePOST   Code = 2
	CodePUT    Code = 3
	CodeDELETE Code = 4
)

// Response codes.
const (
	CodeCreated          Code = 65  // 2.01
	CodeDeleted          Code = 66  // 2.02
	CodeValid            Code = 67  // 2.03
	CodeChanged          Code = 68  // 2.04
	CodeContent          Code = 69  // 2.05
	CodeBadRequest       Code = 128 // 4.00
	CodeNotFound         Code = 132 // 4.04
	CodeMethodNotAllowed Code = 133 // 4.05
	CodeInternalError    Code = 160 // 5.00
)

// Class returns the 3-bit code class.
func (c Code) Class() uint8 {
	return uint8(c) >> 5
}

// Detail returns the 5-bit code detail.
func (c Code) Detail() uint8 {
	return uint8(c) & 0x1f
}

// IsRequest returns true if the code is a request method.
func (c Code) IsRequest() bool {
	return c.Class() == 0 && c != CodeEmpty
}

// String returns the method name for requests and the dotted code with its
// registered name for responses.
func (c Code) String() string {
	switch c {
	case CodeEmpty:
		return "EMPTY"
	case CodeGET:
		return "GET"
	case CodePOST:
		return "POST"
	case CodePUT:
		return "PUT"
	case CodeDELETE:
		return "DELETE"
	case CodeCreated:
		return "2.01 Created"
	case CodeDeleted:
		return "2.02 Deleted"
	case CodeValid:
		return "2.03 Valid"
	case CodeChanged:
		return "2.04 Changed"
	case CodeContent:
		return "2.05 Content"
	case CodeBadRequest:
		return "4.00 Bad Request"
	case CodeNotFound:
		return "4.04 Not Found"
	case CodeMethodNotAllowed:
		return "4.05 Method Not Allowed"
	case CodeInternalError:
		return "5.00 Internal Server Error"
	default:
		return fmt.Sprintf("%d.%02d", c.Class(), c.Detail())
	}
}

// MaxTokenLength is the maximum CoAP token length in bytes.
const MaxTokenLength = 8

// Option is a single option instance on a message. A message may carry an
// option number more than once (Uri-Path segments do).
type Option struct {
	ID    OptionID
	Value []byte
}

// Message is a CoAP message.
//
// Wire layout (RFC 7252 section 3):
//
//	 0                   1                   2                   3
//	|Ver| T |  TKL  |      Code     |          Message ID           |
//	|   Token (if any, TKL bytes) ...
//	|   Options (if any) ...
//	|1 1 1 1 1 1 1 1|    Payload (if any) ...
type Message struct {
	Type      Type
	Code      Code
	MessageID uint16
	Token     []byte
	Options   []Option
	Payload   []byte
}

// NewMessage creates a message with a fresh message ID.
func NewMessage(t Type, code Code) *Message {
	return &Message{
		Type:      t,
		Code:      code,
		MessageID: NextMessageID(),
	}
}

// AddOption appends an option instance. Repeatable options (Uri-Path) may be
// added multiple times.
func (m *Message) AddOption(id OptionID, value []byte) {
	m.Options = append(m.Options, Option{ID: id, Value: value})
}

// SetOption replaces all instances of an option with a single value.
func (m *Message) SetOption(id OptionID, value []byte) {
	m.RemoveOption(id)
	m.AddOption(id, value)
}

// RemoveOption removes all instances of an option.
func (m *Message) RemoveOption(id OptionID) {
	kept := m.Options[:0]
	for _, o := range m.Options {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	m.Options = kept
}

// Option returns the first value of an option, or false if absent.
func (m *Message) Option(id OptionID) ([]byte, bool) {
	for _, o := range m.Options {
		if o.ID == id {
			return o.Value, true
		}
	}
	return nil, false
}

// OptionValues returns all values of an option in insertion order.
func (m *Message) OptionValues(id OptionID) [][]byte {
	var values [][]byte
	for _, o := range m.Options {
		if o.ID == id {
			values = append(values, o.Value)
		}
	}
	return values
}

// SetPath sets the Uri-Path options from a slash-separated path.
func (m *Message) SetPath(path string) {
	m.RemoveOption(OptionURIPath)
	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			continue
		}
		m.AddOption(OptionURIPath, []byte(segment))
	}
}

// Path returns the slash-separated path built from the Uri-Path options.
// A message without Uri-Path options has path "/".
func (m *Message) Path() string {
	var b strings.Builder
	for _, o := range m.Options {
		if o.ID == OptionURIPath {
			b.WriteByte('/')
			b.Write(o.Value)
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// IsRequest returns true if the message carries a request method.
func (m *Message) IsRequest() bool {
	return m.Code.IsRequest()
}

// sortedOptions returns the options sorted ascending by option number,
// preserving insertion order within a number (required for Uri-Path).
func (m *Message) sortedOptions() []Option {
	opts := make([]Option, len(m.Options))
	copy(opts, m.Options)
	sort.SliceStable(opts, func(i, j int) bool {
		return opts[i].ID < opts[j].ID
	})
	return opts
}

// msgIDCounter generates message IDs. Seeded randomly so restarts do not
// replay the same ID sequence.
var msgIDCounter atomic.Uint32

func init() {
	msgIDCounter.Store(mrand.Uint32())
}

// NextMessageID returns the next message ID.
func NextMessageID() uint16 {
	return uint16(msgIDCounter.Add(1))
}

// NewToken returns a fresh 4-byte random token.
func NewToken() []byte {
	token := make([]byte, 4)
	// crypto/rand.Read never fails on supported platforms
	_, _ = rand.Read(token)
	return token
}
