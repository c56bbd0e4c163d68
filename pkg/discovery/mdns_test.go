package discovery

import (
	"net"
	"reflect"
	"testing"

	"github.com/enbility/zeroconf/v3"
)

func TestEntryToService(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		HostName: "shelly1-AABBCC.local.",
		Port:     5683,
		Text: []string{
			"id=SHSW-1#AABBCC#1",
			"model=SHSW-1",
			"fw=v1.14.0",
			"auth=false",
		},
		AddrIPv4: []net.IP{net.ParseIP("192.168.1.40")},
	}
	entry.Instance = "shelly1-AABBCC"

	svc := entryToService(entry)
	if svc == nil {
		t.Fatal("entryToService returned nil")
	}
	if svc.DeviceID != "SHSW-1#AABBCC#1" || svc.Model != "SHSW-1" {
		t.Errorf("service = %+v", svc)
	}
	if svc.Port != 5683 {
		t.Errorf("port = %d, want 5683", svc.Port)
	}
	if len(svc.Addresses) != 1 || svc.Addresses[0] != "192.168.1.40" {
		t.Errorf("addresses = %v", svc.Addresses)
	}
}

func TestEntryToServiceDropsForeignServices(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		Text: []string{"printer=yes"},
	}
	entry.Instance = "some-printer"

	if svc := entryToService(entry); svc != nil {
		t.Errorf("expected nil for entry without device id, got %+v", svc)
	}
}

func TestMergeAddresses(t *testing.T) {
	merged := mergeAddresses(
		[]string{"192.168.1.40", "fe80::1"},
		[]string{"192.168.1.40", "10.0.0.5"},
	)
	want := []string{"192.168.1.40", "fe80::1", "10.0.0.5"}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("merged = %v, want %v", merged, want)
	}
}

func TestRemoveAddresses(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		AddrIPv4: []net.IP{net.ParseIP("192.168.1.40")},
	}

	remaining := removeAddresses([]string{"192.168.1.40", "10.0.0.5"}, entry)
	if !reflect.DeepEqual(remaining, []string{"10.0.0.5"}) {
		t.Errorf("remaining = %v", remaining)
	}
}
