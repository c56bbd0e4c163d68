package coiot

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tefinger/fake-shelly/pkg/coap"
)

func TestEncodeUint16(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []byte
		err   error
	}{
		{"int", 38400, []byte{0x96, 0x00}, nil},
		{"zero", 0, []byte{0x00, 0x00}, nil},
		{"max", 65535, []byte{0xFF, 0xFF}, nil},
		{"uint16", uint16(3420), []byte{0x0D, 0x5C}, nil},
		{"decimal string", "512", []byte{0x02, 0x00}, nil},
		{"non-numeric string", "abc", nil, ErrValueNotNumeric},
		{"unsupported type", 1.5, nil, ErrValueNotNumeric},
		{"too large", 65536, nil, ErrValueOutOfRange},
		{"negative", -1, nil, ErrValueOutOfRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EncodeUint16(tc.value)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("error = %v, want %v", err, tc.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("EncodeUint16 failed: %v", err)
			}
			if !bytes.Equal(got, tc.want) {
				t.Errorf("bytes = %x, want %x", got, tc.want)
			}
		})
	}
}

func TestDecodeUint16(t *testing.T) {
	v, err := DecodeUint16([]byte{0x96, 0x00})
	if err != nil {
		t.Fatalf("DecodeUint16 failed: %v", err)
	}
	if v != 38400 {
		t.Errorf("value = %d, want 38400", v)
	}

	if _, err := DecodeUint16([]byte{0x01}); !errors.Is(err, ErrBadOptionLength) {
		t.Errorf("short value error = %v, want ErrBadOptionLength", err)
	}
	if _, err := DecodeUint16([]byte{0x01, 0x02, 0x03}); !errors.Is(err, ErrBadOptionLength) {
		t.Errorf("long value error = %v, want ErrBadOptionLength", err)
	}
}

func TestStringOptionRoundTrip(t *testing.T) {
	id := "SHSW-1#AABBCC#1"
	if got := DecodeString(EncodeString(id)); got != id {
		t.Errorf("round trip = %q, want %q", got, id)
	}
}

func TestRegisterOptionsNames(t *testing.T) {
	RegisterOptions()
	RegisterOptions() // idempotent

	if got := coap.OptionName(OptionGlobalDeviceID); got != "CoIoT-GlobalDevID" {
		t.Errorf("3332 name = %q", got)
	}
	if got := coap.OptionName(OptionStatusSerial); got != "CoIoT-StatusSerial" {
		t.Errorf("3420 name = %q", got)
	}
}

func TestExtractStatusOptions(t *testing.T) {
	msg := coap.NewMessage(coap.NonConfirmable, coap.CodeGET)
	if err := applyStatusOptions(msg, "SHSW-1#AABBCC#1", StatusValidity, 7); err != nil {
		t.Fatalf("applyStatusOptions failed: %v", err)
	}

	opts, err := ExtractStatusOptions(msg)
	if err != nil {
		t.Fatalf("ExtractStatusOptions failed: %v", err)
	}
	if opts.DeviceID != "SHSW-1#AABBCC#1" {
		t.Errorf("DeviceID = %q", opts.DeviceID)
	}
	if opts.Validity != StatusValidity {
		t.Errorf("Validity = %d, want %d", opts.Validity, StatusValidity)
	}
	if opts.Serial != 7 {
		t.Errorf("Serial = %d, want 7", opts.Serial)
	}
}

func TestExtractStatusOptionsMalformed(t *testing.T) {
	msg := coap.NewMessage(coap.NonConfirmable, coap.CodeGET)
	msg.SetOption(OptionStatusSerial, []byte{0x01})

	if _, err := ExtractStatusOptions(msg); !errors.Is(err, ErrBadOptionLength) {
		t.Errorf("error = %v, want ErrBadOptionLength", err)
	}
}
