package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tefinger/fake-shelly/pkg/coiot"
	"github.com/tefinger/fake-shelly/pkg/device"
)

func newTestAPI(t *testing.T) (*API, *device.Shelly1) {
	t.Helper()

	d := device.NewShelly1("AABBCC")
	server, err := coiot.New(coiot.ServerConfig{Device: d})
	if err != nil {
		t.Fatalf("coiot.New failed: %v", err)
	}

	api, err := New(Config{
		Address:  "127.0.0.1:0",
		Device:   d,
		Server:   server,
		Firmware: "v1.14.0",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return api, d
}

func TestShellyEndpoint(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shelly", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if body["type"] != "SHSW-1" || body["mac"] != "AABBCC" {
		t.Errorf("identity = %v", body)
	}
	if body["coiot"] != "SHSW-1#AABBCC#1" {
		t.Errorf("coiot id = %v", body["coiot"])
	}
	if body["auth"] != false {
		t.Errorf("auth = %v", body["auth"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	api, d := newTestAPI(t)
	d.SetRelay(true)

	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	var body struct {
		DeviceID string `json:"device_id"`
		Status   struct {
			G [][]float64 `json:"G"`
		} `json:"status"`
		CoIoT struct {
			NextSerial uint16 `json:"next_serial"`
		} `json:"coiot"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if body.DeviceID != "SHSW-1#AABBCC#1" {
		t.Errorf("device_id = %q", body.DeviceID)
	}
	if len(body.Status.G) != 2 || body.Status.G[0][2] != 1 {
		t.Errorf("status = %v", body.Status.G)
	}
	if body.CoIoT.NextSerial != 1 {
		t.Errorf("next_serial = %d, want 1", body.CoIoT.NextSerial)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	for _, metric := range []string{
		"coiot_announcements_total",
		"coiot_responses_total",
		"coiot_serials_issued_total",
		"coiot_next_serial",
	} {
		if !strings.Contains(rec.Body.String(), metric) {
			t.Errorf("metrics output missing %s", metric)
		}
	}
}

func TestNewValidation(t *testing.T) {
	d := device.NewShelly1("AABBCC")
	server, err := coiot.New(coiot.ServerConfig{Device: d})
	if err != nil {
		t.Fatalf("coiot.New failed: %v", err)
	}

	if _, err := New(Config{Device: d, Server: server}); err == nil {
		t.Error("expected error without address")
	}
	if _, err := New(Config{Address: ":0", Server: server}); err == nil {
		t.Error("expected error without device")
	}
	if _, err := New(Config{Address: ":0", Device: d}); err == nil {
		t.Error("expected error without coiot server")
	}
}
