package main

import (
	"context"
	"math"
	"time"

	"github.com/tefinger/fake-shelly/pkg/device"
)

// runSimulation drives synthetic state changes until the context is
// cancelled. Each change triggers a status announcement through the device's
// change listeners.
func runSimulation(ctx context.Context, dev device.Device) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		elapsed := time.Since(start)

		switch d := dev.(type) {
		case *device.Shelly1:
			d.SetRelay(!d.Relay())

		case *device.ShellyPlugS:
			if !d.Relay() {
				d.SetRelay(true)
			}
			// Load oscillates around a 60W base.
			watts := 60 + 40*math.Sin(elapsed.Seconds()/30)
			d.SetPower(math.Round(watts*10) / 10)

		case *device.ShellyHT:
			temperature := 20 + 2*math.Sin(elapsed.Seconds()/120)
			humidity := 50 + 5*math.Cos(elapsed.Seconds()/180)
			d.SetReadings(math.Round(temperature*10)/10, math.Round(humidity))
		}
	}
}
