package log

import (
	"testing"
	"time"
)

func TestEventRoundTrip(t *testing.T) {
	serial := uint16(42)
	event := Event{
		Timestamp:  time.Now().UTC(),
		ListenerID: "b6e9ad4e-0001-4ad2-9ad8-06c4758cb2c9",
		Direction:  DirectionOut,
		Layer:      LayerService,
		Category:   CategoryMessage,
		RemoteAddr: "224.0.1.187:5683",
		DeviceID:   "SHSW-1#AABBCC#1",
		Message: &MessageEvent{
			Kind:        KindAnnouncement,
			Method:      "GET",
			Path:        "/cit/s",
			MessageID:   1234,
			Serial:      &serial,
			PayloadSize: 57,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.ListenerID != event.ListenerID {
		t.Errorf("ListenerID = %q, want %q", decoded.ListenerID, event.ListenerID)
	}
	if decoded.DeviceID != event.DeviceID {
		t.Errorf("DeviceID = %q, want %q", decoded.DeviceID, event.DeviceID)
	}
	if decoded.Message == nil {
		t.Fatal("Message payload lost in round trip")
	}
	if decoded.Message.Kind != KindAnnouncement {
		t.Errorf("Kind = %v, want ANNOUNCEMENT", decoded.Message.Kind)
	}
	if decoded.Message.Serial == nil || *decoded.Message.Serial != serial {
		t.Errorf("Serial = %v, want %d", decoded.Message.Serial, serial)
	}
	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, event.Timestamp)
	}
}

func TestEventErrorPayload(t *testing.T) {
	event := Event{
		Timestamp: time.Now().UTC(),
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryError,
		Error: &ErrorEventData{
			Layer:   LayerTransport,
			Message: "short datagram",
			Context: "decode request",
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if decoded.Error == nil {
		t.Fatal("Error payload lost in round trip")
	}
	if decoded.Error.Message != "short datagram" {
		t.Errorf("Error.Message = %q", decoded.Error.Message)
	}
}

func TestEnumStrings(t *testing.T) {
	cases := []struct {
		got  string
		want string
	}{
		{DirectionIn.String(), "IN"},
		{DirectionOut.String(), "OUT"},
		{LayerTransport.String(), "TRANSPORT"},
		{LayerOptions.String(), "OPTIONS"},
		{LayerService.String(), "SERVICE"},
		{CategoryMessage.String(), "MESSAGE"},
		{CategoryState.String(), "STATE"},
		{CategoryError.String(), "ERROR"},
		{KindRequest.String(), "REQUEST"},
		{KindResponse.String(), "RESPONSE"},
		{KindAnnouncement.String(), "ANNOUNCEMENT"},
		{StateEntityListener.String(), "LISTENER"},
		{StateEntityAnnouncer.String(), "ANNOUNCER"},
		{StateEntityService.String(), "SERVICE"},
		{Direction(9).String(), "UNKNOWN"},
		{MessageKind(9).String(), "UNKNOWN"},
	}

	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("String() = %q, want %q", c.got, c.want)
		}
	}
}
