package discovery

import (
	"errors"
	"reflect"
	"testing"
)

func TestEncodeServiceTXT(t *testing.T) {
	info := &ServiceInfo{
		InstanceName: "shelly1-AABBCC",
		DeviceID:     "SHSW-1#AABBCC#1",
		Model:        "SHSW-1",
		Firmware:     "20230913-112003/v1.14.0",
		AuthEnabled:  false,
	}

	got := TXTRecordsToStrings(EncodeServiceTXT(info))
	want := []string{
		"id=SHSW-1#AABBCC#1",
		"model=SHSW-1",
		"fw=20230913-112003/v1.14.0",
		"auth=false",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TXT strings = %v, want %v", got, want)
	}
}

func TestDecodeServiceTXTRoundTrip(t *testing.T) {
	info := &ServiceInfo{
		DeviceID:    "SHHT-1#DDEEFF#1",
		Model:       "SHHT-1",
		Firmware:    "v1.14.0",
		AuthEnabled: true,
	}

	decoded, err := DecodeServiceTXT(EncodeServiceTXT(info))
	if err != nil {
		t.Fatalf("DecodeServiceTXT failed: %v", err)
	}
	if decoded.DeviceID != info.DeviceID || decoded.Model != info.Model {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Firmware != info.Firmware || decoded.AuthEnabled != info.AuthEnabled {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestDecodeServiceTXTRequiresDeviceID(t *testing.T) {
	records := []TXTRecord{{Key: TXTKeyModel, Value: "SHSW-1"}}
	if _, err := DecodeServiceTXT(records); !errors.Is(err, ErrMissingDeviceID) {
		t.Errorf("error = %v, want ErrMissingDeviceID", err)
	}
}

func TestDecodeServiceTXTIgnoresUnknownKeys(t *testing.T) {
	records := StringsToTXTRecords([]string{
		"id=SHSW-1#AABBCC#1",
		"arch=esp8266",
		"flag",
	})

	info, err := DecodeServiceTXT(records)
	if err != nil {
		t.Fatalf("DecodeServiceTXT failed: %v", err)
	}
	if info.DeviceID != "SHSW-1#AABBCC#1" {
		t.Errorf("DeviceID = %q", info.DeviceID)
	}
}
