// Package interactive provides the interactive command-line interface for
// the simulated device.
package interactive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tefinger/fake-shelly/pkg/coiot"
	"github.com/tefinger/fake-shelly/pkg/device"
)

// relayDevice is satisfied by the models with a switchable relay.
type relayDevice interface {
	Relay() bool
	SetRelay(on bool)
}

// Config provides the pieces the console drives.
type Config struct {
	// Server is the running CoIoT server.
	Server *coiot.Server

	// Device is the simulated device.
	Device device.Device

	// StartSimulation and StopSimulation control the background simulation
	// (optional).
	StartSimulation func()
	StopSimulation  func()
}

// Console handles interactive mode for fake-shelly.
type Console struct {
	config Config
	rl     *readline.Instance
}

// New creates a new interactive console.
func New(config Config) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "shelly> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Console{config: config, rl: rl}, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
// Use this for log output to avoid interfering with the command line.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "status", "s":
			c.cmdStatus()

		case "announce", "a":
			c.config.Server.Announce()
			fmt.Fprintln(c.rl.Stdout(), "Announcement sent")

		case "stats":
			c.cmdStats()

		case "on":
			c.cmdRelay(true)

		case "off":
			c.cmdRelay(false)

		case "toggle", "t":
			c.cmdToggle()

		case "power":
			c.cmdPower(args)

		case "readings":
			c.cmdReadings(args)

		case "battery":
			c.cmdBattery(args)

		case "sim-start":
			if c.config.StartSimulation != nil {
				c.config.StartSimulation()
				fmt.Fprintln(c.rl.Stdout(), "Simulation started")
			}

		case "sim-stop":
			if c.config.StopSimulation != nil {
				c.config.StopSimulation()
				fmt.Fprintln(c.rl.Stdout(), "Simulation stopped")
			}

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Shelly Device Commands:
  Status:
    status             - Show the current status payload
    stats              - Show protocol counters
    announce           - Send a status announcement now

  Relay devices (SHSW-1, SHPLG-S):
    on / off           - Switch the relay
    toggle             - Toggle the relay
    power <watts>      - Set the measured load (SHPLG-S)

  Sensor devices (SHHT-1):
    readings <t> <h>   - Set temperature (C) and humidity (%)
    battery <percent>  - Set the battery charge

  Simulation:
    sim-start          - Start the background simulation
    sim-stop           - Stop the background simulation

  General:
    help               - Show this help
    quit               - Exit device`)
}

func (c *Console) cmdStatus() {
	data, err := json.MarshalIndent(c.config.Device.StatusPayload(), "", "  ")
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "%s\n%s\n", c.config.Server.Identifier(), data)
}

func (c *Console) cmdStats() {
	stats := c.config.Server.Stats()
	fmt.Fprintf(c.rl.Stdout(), "Announcements: %d\nResponses:     %d\nNext serial:   %d\n",
		stats.Announcements, stats.Responses, stats.NextSerial)
}

func (c *Console) cmdRelay(on bool) {
	relay, ok := c.config.Device.(relayDevice)
	if !ok {
		fmt.Fprintln(c.rl.Stdout(), "This device has no relay")
		return
	}
	relay.SetRelay(on)
	fmt.Fprintf(c.rl.Stdout(), "Relay: %v\n", relay.Relay())
}

func (c *Console) cmdToggle() {
	relay, ok := c.config.Device.(relayDevice)
	if !ok {
		fmt.Fprintln(c.rl.Stdout(), "This device has no relay")
		return
	}
	relay.SetRelay(!relay.Relay())
	fmt.Fprintf(c.rl.Stdout(), "Relay: %v\n", relay.Relay())
}

func (c *Console) cmdPower(args []string) {
	plug, ok := c.config.Device.(*device.ShellyPlugS)
	if !ok {
		fmt.Fprintln(c.rl.Stdout(), "This device has no power meter")
		return
	}
	if len(args) != 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: power <watts>")
		return
	}
	watts, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid power value: %v\n", err)
		return
	}
	plug.SetPower(watts)
	fmt.Fprintf(c.rl.Stdout(), "Power: %.1f W\n", plug.Power())
}

func (c *Console) cmdReadings(args []string) {
	ht, ok := c.config.Device.(*device.ShellyHT)
	if !ok {
		fmt.Fprintln(c.rl.Stdout(), "This device has no climate sensor")
		return
	}
	if len(args) != 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: readings <temperature> <humidity>")
		return
	}
	temperature, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid temperature: %v\n", err)
		return
	}
	humidity, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid humidity: %v\n", err)
		return
	}
	ht.SetReadings(temperature, humidity)
	fmt.Fprintf(c.rl.Stdout(), "Readings: %.1f C, %.1f %%\n", ht.Temperature(), ht.Humidity())
}

func (c *Console) cmdBattery(args []string) {
	ht, ok := c.config.Device.(*device.ShellyHT)
	if !ok {
		fmt.Fprintln(c.rl.Stdout(), "This device has no battery")
		return
	}
	if len(args) != 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: battery <percent>")
		return
	}
	percent, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid battery value: %v\n", err)
		return
	}
	ht.SetBattery(percent)
	fmt.Fprintf(c.rl.Stdout(), "Battery: %d %%\n", ht.Battery())
}
