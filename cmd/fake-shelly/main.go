// Command fake-shelly simulates a first-generation Shelly device speaking
// the CoIoT status protocol.
//
// The device announces its status to the CoIoT multicast group every 30
// seconds and on every state change, and answers direct GET /cit/s requests
// on the CoAP port. Optionally it serves the HTTP API (/shelly, /status,
// /metrics) and advertises itself via mDNS.
//
// Usage:
//
//	fake-shelly [flags]
//
// Flags:
//
//	-model string     Device model: SHSW-1, SHPLG-S, SHHT-1 (default "SHSW-1")
//	-id string        Device id (default "AABBCC")
//	-config string    Configuration file path (overrides the other flags)
//	-listen string    Unicast CoAP listen address (default ":5683")
//	-group string     CoIoT multicast group (default "224.0.1.187:5683")
//	-interval int     Announcement interval in milliseconds (default 30000)
//	-http string      HTTP API listen address (empty disables)
//	-mdns             Advertise the device via mDNS
//	-log-file string  CBOR protocol log path (empty disables)
//	-log-debug        Mirror protocol events to the standard logger
//	-simulate         Start the background simulation
//	-interactive      Run the interactive console (default true)
//
// Examples:
//
//	# Relay switch with defaults
//	fake-shelly -model SHSW-1 -id AABBCC
//
//	# Metering plug with HTTP API and mDNS
//	fake-shelly -model SHPLG-S -id 112233 -http :8080 -mdns
//
//	# Climate sensor from a config file, headless
//	fake-shelly -config ht.yaml -interactive=false -simulate
package main

import (
	"context"
	"flag"
	stdlog "log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tefinger/fake-shelly/cmd/fake-shelly/interactive"
	"github.com/tefinger/fake-shelly/internal/config"
	"github.com/tefinger/fake-shelly/internal/httpapi"
	"github.com/tefinger/fake-shelly/pkg/coiot"
	"github.com/tefinger/fake-shelly/pkg/device"
	"github.com/tefinger/fake-shelly/pkg/discovery"
	"github.com/tefinger/fake-shelly/pkg/log"
)

// defaultFirmware is the firmware version advertised over HTTP and mDNS.
const defaultFirmware = "20230913-112003/v1.14.0"

var flags struct {
	Model       string
	ID          string
	ConfigFile  string
	Listen      string
	Group       string
	IntervalMs  int
	HTTPAddr    string
	MDNS        bool
	LogFile     string
	LogDebug    bool
	Simulate    bool
	Interactive bool
}

func init() {
	flag.StringVar(&flags.Model, "model", "SHSW-1", "Device model: SHSW-1, SHPLG-S, SHHT-1")
	flag.StringVar(&flags.ID, "id", "AABBCC", "Device id")
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path")
	flag.StringVar(&flags.Listen, "listen", ":5683", "Unicast CoAP listen address")
	flag.StringVar(&flags.Group, "group", "224.0.1.187:5683", "CoIoT multicast group")
	flag.IntVar(&flags.IntervalMs, "interval", 30000, "Announcement interval in milliseconds")
	flag.StringVar(&flags.HTTPAddr, "http", "", "HTTP API listen address (empty disables)")
	flag.BoolVar(&flags.MDNS, "mdns", false, "Advertise the device via mDNS")
	flag.StringVar(&flags.LogFile, "log-file", "", "CBOR protocol log path (empty disables)")
	flag.BoolVar(&flags.LogDebug, "log-debug", false, "Mirror protocol events to the standard logger")
	flag.BoolVar(&flags.Simulate, "simulate", false, "Start the background simulation")
	flag.BoolVar(&flags.Interactive, "interactive", true, "Run the interactive console")
}

func main() {
	flag.Parse()
	stdlog.SetFlags(stdlog.Ltime | stdlog.Lmicroseconds)

	cfg, err := buildConfig()
	if err != nil {
		stdlog.Fatalf("Invalid configuration: %v", err)
	}

	dev, err := createDevice(cfg.Device)
	if err != nil {
		stdlog.Fatalf("Failed to create device: %v", err)
	}

	logger, closeLogger, err := buildLogger(cfg.Log)
	if err != nil {
		stdlog.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLogger()

	server, err := coiot.New(coiot.ServerConfig{
		Device:    dev,
		Address:   cfg.CoIoT.Address,
		Group:     cfg.CoIoT.Group,
		Interface: cfg.CoIoT.Interface,
		Interval:  cfg.CoIoT.Interval(),
		Window:    cfg.CoIoT.Window(),
		Validity:  cfg.CoIoT.Validity,
		Logger:    logger,
		OnError: func(err error) {
			stdlog.Printf("coiot error: %v", err)
		},
	})
	if err != nil {
		stdlog.Fatalf("Failed to create CoIoT server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		stdlog.Fatalf("Failed to start CoIoT server: %v", err)
	}
	defer server.Stop()

	stdlog.Printf("Device %s listening on %s, announcing to %s",
		server.Identifier(), server.Addr(), cfg.CoIoT.Group)

	var api *httpapi.API
	if cfg.HTTP.Enabled {
		api, err = httpapi.New(httpapi.Config{
			Address:  cfg.HTTP.Address,
			Device:   dev,
			Server:   server,
			Firmware: cfg.Device.Firmware,
		})
		if err != nil {
			stdlog.Fatalf("Failed to create HTTP API: %v", err)
		}
		if err := api.Start(); err != nil {
			stdlog.Fatalf("Failed to start HTTP API: %v", err)
		}
		stdlog.Printf("HTTP API on %s", api.Addr())
	}

	if cfg.MDNS.Enabled {
		advertiser, err := discovery.NewMDNSAdvertiser(discovery.AdvertiserConfig{
			Interface: cfg.MDNS.Interface,
		})
		if err != nil {
			stdlog.Fatalf("Failed to create mDNS advertiser: %v", err)
		}
		info := serviceInfo(cfg, dev, api)
		if err := advertiser.Advertise(ctx, info); err != nil {
			stdlog.Printf("Warning: mDNS advertising failed: %v", err)
		} else {
			defer advertiser.StopAll()
			stdlog.Printf("mDNS: advertising %s", info.InstanceName)
		}
	}

	// Simulation is started on demand; -simulate enables it from the start.
	var simCancel context.CancelFunc
	startSim := func() {
		if simCancel != nil {
			return
		}
		var simCtx context.Context
		simCtx, simCancel = context.WithCancel(ctx)
		go runSimulation(simCtx, dev)
	}
	stopSim := func() {
		if simCancel != nil {
			simCancel()
			simCancel = nil
		}
	}
	if flags.Simulate {
		startSim()
	}

	if flags.Interactive {
		console, err := interactive.New(interactive.Config{
			Server:          server,
			Device:          dev,
			StartSimulation: startSim,
			StopSimulation:  stopSim,
		})
		if err != nil {
			stdlog.Fatalf("Failed to create console: %v", err)
		}
		stdlog.SetOutput(console.Stdout())
		console.Run(ctx, cancel)
	} else {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			stdlog.Printf("Received signal: %v", sig)
		case <-ctx.Done():
		}
	}

	stdlog.Println("Shutting down...")
	stopSim()
	if api != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := api.Stop(shutdownCtx); err != nil {
			stdlog.Printf("Error stopping HTTP API: %v", err)
		}
	}
	if err := server.Stop(); err != nil {
		stdlog.Printf("Error stopping CoIoT server: %v", err)
	}
	stdlog.Println("Goodbye!")
}

// buildConfig assembles the configuration from the config file or, without
// one, from the command-line flags.
func buildConfig() (*config.Config, error) {
	var cfg *config.Config

	if flags.ConfigFile != "" {
		loaded, err := config.Load(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &config.Config{
			Device: config.DeviceConfig{
				Model: flags.Model,
				ID:    flags.ID,
			},
			CoIoT: config.CoIoTConfig{
				Address:    flags.Listen,
				Group:      flags.Group,
				IntervalMs: flags.IntervalMs,
			},
			HTTP: config.HTTPConfig{
				Enabled: flags.HTTPAddr != "",
				Address: flags.HTTPAddr,
			},
			MDNS: config.MDNSConfig{
				Enabled: flags.MDNS,
			},
			Log: config.LogConfig{
				File:  flags.LogFile,
				Debug: flags.LogDebug,
			},
		}
	}

	if cfg.Device.Firmware == "" {
		cfg.Device.Firmware = defaultFirmware
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	config.Normalize(cfg)
	return cfg, nil
}

// createDevice builds the simulated device for the configured model.
func createDevice(cfg config.DeviceConfig) (device.Device, error) {
	switch cfg.Model {
	case device.TypeShelly1:
		return device.NewShelly1(cfg.ID), nil
	case device.TypeShellyPlugS:
		return device.NewShellyPlugS(cfg.ID), nil
	case device.TypeShellyHT:
		return device.NewShellyHT(cfg.ID), nil
	default:
		// Validate rejects unknown models before this point.
		return nil, os.ErrInvalid
	}
}

// buildLogger assembles the protocol logger from the log configuration.
func buildLogger(cfg config.LogConfig) (log.Logger, func(), error) {
	var loggers []log.Logger
	closeLogger := func() {}

	if cfg.File != "" {
		fileLogger, err := log.NewFileLogger(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		loggers = append(loggers, fileLogger)
		closeLogger = func() { fileLogger.Close() }
	}
	if cfg.Debug {
		loggers = append(loggers, log.NewSlogAdapter(slog.Default()))
	}

	switch len(loggers) {
	case 0:
		return log.NoopLogger{}, closeLogger, nil
	case 1:
		return loggers[0], closeLogger, nil
	default:
		return log.NewMultiLogger(loggers...), closeLogger, nil
	}
}

// serviceInfo builds the mDNS advertisement for the running device.
func serviceInfo(cfg *config.Config, dev device.Device, api *httpapi.API) *discovery.ServiceInfo {
	info := &discovery.ServiceInfo{
		InstanceName: instanceName(dev),
		DeviceID:     coiot.Identifier(dev),
		Model:        dev.Type(),
		Firmware:     cfg.Device.Firmware,
		CoAPPort:     5683,
	}
	if api != nil {
		if tcpAddr, ok := api.Addr().(*net.TCPAddr); ok {
			info.HTTPPort = uint16(tcpAddr.Port)
		}
	}
	return info
}

// instanceName derives the mDNS instance name, e.g. "shsw-1-AABBCC".
func instanceName(dev device.Device) string {
	return strings.ToLower(dev.Type()) + "-" + dev.ID()
}
