// Package httpapi serves the device's HTTP side: the /shelly identity
// endpoint, the /status snapshot and Prometheus metrics under /metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tefinger/fake-shelly/pkg/coiot"
	"github.com/tefinger/fake-shelly/pkg/device"
)

// Config configures the HTTP API.
type Config struct {
	// Address to listen on (e.g. ":8080"). Required.
	Address string

	// Device whose identity and status are served. Required.
	Device device.Device

	// Server supplies the protocol counters for /status and /metrics.
	// Required.
	Server *coiot.Server

	// Firmware is the advertised firmware version (optional).
	Firmware string
}

// API is the HTTP server.
type API struct {
	config     Config
	identifier string
	registry   *prometheus.Registry
	mux        *http.ServeMux
	httpServer *http.Server

	listener net.Listener
	running  atomic.Bool
}

// New creates the HTTP API for a device.
func New(config Config) (*API, error) {
	if config.Address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if config.Device == nil {
		return nil, fmt.Errorf("device is required")
	}
	if config.Server == nil {
		return nil, fmt.Errorf("coiot server is required")
	}

	a := &API{
		config:     config,
		identifier: coiot.Identifier(config.Device),
		registry:   prometheus.NewRegistry(),
		mux:        http.NewServeMux(),
	}

	if err := a.registerMetrics(); err != nil {
		return nil, err
	}

	a.mux.HandleFunc("/shelly", a.handleShelly)
	a.mux.HandleFunc("/status", a.handleStatus)
	a.mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	a.httpServer = &http.Server{
		Handler:           a.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return a, nil
}

// Handler returns the route table, mainly for tests.
func (a *API) Handler() http.Handler {
	return a.mux
}

// Start binds the listen address and serves in the background.
func (a *API) Start() error {
	if a.running.Load() {
		return fmt.Errorf("already started")
	}

	listener, err := net.Listen("tcp", a.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.config.Address, err)
	}
	a.listener = listener
	a.running.Store(true)

	go func() {
		_ = a.httpServer.Serve(listener)
	}()
	return nil
}

// Stop shuts the server down gracefully. Safe to call multiple times and
// before Start.
func (a *API) Stop(ctx context.Context) error {
	if !a.running.Load() {
		return nil
	}
	a.running.Store(false)
	return a.httpServer.Shutdown(ctx)
}

// Addr returns the bound listen address, or nil before Start.
func (a *API) Addr() net.Addr {
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

func (a *API) registerMetrics() error {
	collectors := []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "coiot_announcements_total",
			Help: "Multicast status announcements sent.",
		}, func() float64 {
			return float64(a.config.Server.Stats().Announcements)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "coiot_responses_total",
			Help: "Direct status responses served.",
		}, func() float64 {
			return float64(a.config.Server.Stats().Responses)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "coiot_serials_issued_total",
			Help: "Status serials consumed across announcements and responses.",
		}, func() float64 {
			return float64(a.config.Server.Stats().SerialsIssued)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "coiot_next_serial",
			Help: "Wire value the next status message will carry.",
		}, func() float64 {
			return float64(a.config.Server.Stats().NextSerial)
		}),
	}

	for _, c := range collectors {
		if err := a.registry.Register(c); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return nil
}

// handleShelly serves the device identity, mirroring the /shelly endpoint of
// the real firmware.
func (a *API) handleShelly(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"type":  a.config.Device.Type(),
		"mac":   a.config.Device.ID(),
		"fw":    a.config.Firmware,
		"auth":  false,
		"coiot": a.identifier,
	})
}

// handleStatus serves the current status payload plus protocol counters.
func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := a.config.Server.Stats()
	writeJSON(w, map[string]any{
		"device_id": a.identifier,
		"status":    a.config.Device.StatusPayload(),
		"coiot": map[string]any{
			"announcements": stats.Announcements,
			"responses":     stats.Responses,
			"next_serial":   stats.NextSerial,
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
