package coiot

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"

	"github.com/tefinger/fake-shelly/pkg/coap"
)

// CoIoT CoAP option numbers.
const (
	// OptionGlobalDeviceID carries the device identifier ("type#id#1") as a
	// UTF-8 string.
	OptionGlobalDeviceID coap.OptionID = 3332

	// OptionStatusValidity carries the status lifetime in seconds as a
	// big-endian uint16.
	OptionStatusValidity coap.OptionID = 3412

	// OptionStatusSerial carries the per-device status sequence number as a
	// big-endian uint16.
	OptionStatusSerial coap.OptionID = 3420
)

var registerOptionsOnce sync.Once

// RegisterOptions adds the CoIoT option definitions to the process-wide CoAP
// option table. Safe to call from any number of call sites.
func RegisterOptions() {
	registerOptionsOnce.Do(func() {
		coap.RegisterOption(coap.OptionDef{ID: OptionGlobalDeviceID, Name: "CoIoT-GlobalDevID", Format: coap.FormatString})
		coap.RegisterOption(coap.OptionDef{ID: OptionStatusValidity, Name: "CoIoT-StatusValidity", Format: coap.FormatUint})
		coap.RegisterOption(coap.OptionDef{ID: OptionStatusSerial, Name: "CoIoT-StatusSerial", Format: coap.FormatUint})
	})
}

// EncodeString encodes a string option value as UTF-8 bytes. Any string
// round-trips through DecodeString unchanged.
func EncodeString(s string) []byte {
	return []byte(s)
}

// DecodeString decodes a string option value.
func DecodeString(b []byte) string {
	return string(b)
}

// EncodeUint16 encodes a numeric option value as two big-endian bytes.
// Integers and decimal strings are accepted; anything else fails with
// ErrValueNotNumeric. Values outside [0, 65535] fail with ErrValueOutOfRange.
func EncodeUint16(value any) ([]byte, error) {
	n, err := toInt64(value)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > 0xFFFF {
		return nil, fmt.Errorf("%w: %d", ErrValueOutOfRange, n)
	}
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(n))
	return b, nil
}

// DecodeUint16 decodes a two-byte big-endian option value.
func DecodeUint16(b []byte) (uint16, error) {
	if len(b) != 2 {
		return 0, fmt.Errorf("%w: got %d bytes, want 2", ErrBadOptionLength, len(b))
	}
	return binary.BigEndian.Uint16(b), nil
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrValueNotNumeric, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrValueNotNumeric, value)
	}
}

// applyStatusOptions sets the three CoIoT options on a status-bearing
// message. An encoding failure leaves the message unchanged.
func applyStatusOptions(msg *coap.Message, identifier string, validity, serial int) error {
	validityBytes, err := EncodeUint16(validity)
	if err != nil {
		return fmt.Errorf("failed to encode status validity: %w", err)
	}
	serialBytes, err := EncodeUint16(serial)
	if err != nil {
		return fmt.Errorf("failed to encode status serial: %w", err)
	}

	msg.SetOption(OptionGlobalDeviceID, EncodeString(identifier))
	msg.SetOption(OptionStatusValidity, validityBytes)
	msg.SetOption(OptionStatusSerial, serialBytes)
	return nil
}

// StatusOptions are the decoded CoIoT options of a received status message.
type StatusOptions struct {
	// DeviceID is the announced identifier ("type#id#1").
	DeviceID string

	// Validity is the status lifetime in seconds.
	Validity uint16

	// Serial is the status sequence number.
	Serial uint16
}

// ExtractStatusOptions decodes the CoIoT options from a received message.
// Missing options decode to zero values; malformed numeric options fail.
func ExtractStatusOptions(msg *coap.Message) (StatusOptions, error) {
	var opts StatusOptions

	if v, ok := msg.Option(OptionGlobalDeviceID); ok {
		opts.DeviceID = DecodeString(v)
	}
	if v, ok := msg.Option(OptionStatusValidity); ok {
		validity, err := DecodeUint16(v)
		if err != nil {
			return opts, fmt.Errorf("failed to decode status validity: %w", err)
		}
		opts.Validity = validity
	}
	if v, ok := msg.Option(OptionStatusSerial); ok {
		serial, err := DecodeUint16(v)
		if err != nil {
			return opts, fmt.Errorf("failed to decode status serial: %w", err)
		}
		opts.Serial = serial
	}
	return opts, nil
}
