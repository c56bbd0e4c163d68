package coap

import (
	"errors"
	"fmt"
)

// ProtocolVersion is the only CoAP version this codec accepts.
const ProtocolVersion = 1

// payloadMarker separates the option block from the payload.
const payloadMarker = 0xFF

// Codec errors.
var (
	ErrMessageTooShort  = errors.New("message shorter than CoAP header")
	ErrInvalidVersion   = errors.New("unsupported CoAP version")
	ErrInvalidTokenLen  = errors.New("token length exceeds 8 bytes")
	ErrInvalidOption    = errors.New("invalid option encoding")
	ErrOptionOutOfRange = errors.New("option delta or length out of range")
	ErrMissingPayload   = errors.New("payload marker with empty payload")
)

// Marshal encodes a message to its RFC 7252 wire form.
func Marshal(m *Message) ([]byte, error) {
	if len(m.Token) > MaxTokenLength {
		return nil, ErrInvalidTokenLen
	}

	size := 4 + len(m.Token) + len(m.Payload) + 1
	for _, o := range m.Options {
		size += 5 + len(o.Value)
	}
	buf := make([]byte, 0, size)

	buf = append(buf,
		ProtocolVersion<<6|byte(m.Type)<<4|byte(len(m.Token)),
		byte(m.Code),
		byte(m.MessageID>>8),
		byte(m.MessageID),
	)
	buf = append(buf, m.Token...)

	prev := OptionID(0)
	for _, o := range m.sortedOptions() {
		delta := int(o.ID) - int(prev)
		deltaNibble, deltaExt, err := encodeOptionVarint(delta)
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", o.ID, err)
		}
		lenNibble, lenExt, err := encodeOptionVarint(len(o.Value))
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", o.ID, err)
		}

		buf = append(buf, deltaNibble<<4|lenNibble)
		buf = append(buf, deltaExt...)
		buf = append(buf, lenExt...)
		buf = append(buf, o.Value...)
		prev = o.ID
	}

	if len(m.Payload) > 0 {
		buf = append(buf, payloadMarker)
		buf = append(buf, m.Payload...)
	}
	return buf, nil
}

// Unmarshal decodes an RFC 7252 datagram into a message.
func Unmarshal(data []byte) (*Message, error) {
	if len(data) < 4 {
		return nil, ErrMessageTooShort
	}
	if data[0]>>6 != ProtocolVersion {
		return nil, ErrInvalidVersion
	}

	tokenLen := int(data[0] & 0x0f)
	if tokenLen > MaxTokenLength {
		return nil, ErrInvalidTokenLen
	}
	if len(data) < 4+tokenLen {
		return nil, ErrMessageTooShort
	}

	m := &Message{
		Type:      Type(data[0] >> 4 & 0x03),
		Code:      Code(data[1]),
		MessageID: uint16(data[2])<<8 | uint16(data[3]),
	}
	if tokenLen > 0 {
		m.Token = append([]byte(nil), data[4:4+tokenLen]...)
	}

	pos := 4 + tokenLen
	prev := 0
	for pos < len(data) {
		if data[pos] == payloadMarker {
			if pos+1 >= len(data) {
				return nil, ErrMissingPayload
			}
			m.Payload = append([]byte(nil), data[pos+1:]...)
			return m, nil
		}

		deltaNibble := int(data[pos] >> 4)
		lenNibble := int(data[pos] & 0x0f)
		pos++

		// Nibble 15 is reserved for the payload marker; in either field it
		// is a message format error.
		if deltaNibble == 15 || lenNibble == 15 {
			return nil, ErrInvalidOption
		}

		delta, n, err := decodeOptionVarint(deltaNibble, data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n

		length, n, err := decodeOptionVarint(lenNibble, data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n

		if pos+length > len(data) {
			return nil, ErrInvalidOption
		}

		id := prev + delta
		if id > 0xFFFF {
			return nil, ErrOptionOutOfRange
		}
		m.Options = append(m.Options, Option{
			ID:    OptionID(id),
			Value: append([]byte(nil), data[pos:pos+length]...),
		})
		prev = id
		pos += length
	}
	return m, nil
}

// encodeOptionVarint encodes an option delta or length into its 4-bit nibble
// plus extended bytes (RFC 7252 section 3.1).
func encodeOptionVarint(v int) (nibble byte, ext []byte, err error) {
	switch {
	case v < 13:
		return byte(v), nil, nil
	case v < 269:
		return 13, []byte{byte(v - 13)}, nil
	case v < 65805:
		v -= 269
		return 14, []byte{byte(v >> 8), byte(v)}, nil
	default:
		return 0, nil, ErrOptionOutOfRange
	}
}

// decodeOptionVarint decodes an option delta or length from its nibble and
// extended bytes, returning the value and the number of extended bytes read.
func decodeOptionVarint(nibble int, ext []byte) (value, n int, err error) {
	switch nibble {
	case 13:
		if len(ext) < 1 {
			return 0, 0, ErrInvalidOption
		}
		return int(ext[0]) + 13, 1, nil
	case 14:
		if len(ext) < 2 {
			return 0, 0, ErrInvalidOption
		}
		return int(ext[0])<<8 + int(ext[1]) + 269, 2, nil
	default:
		return nibble, 0, nil
	}
}
