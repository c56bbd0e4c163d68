// Command coiot-monitor watches CoIoT traffic on the local network.
//
// By default it joins the CoIoT multicast group and prints every status
// announcement it sees. It can also fetch the status of a single device
// directly, or browse for devices via mDNS.
//
// Usage:
//
//	coiot-monitor [flags]
//
// Flags:
//
//	-group string      Multicast group to join (default "224.0.1.187:5683")
//	-interface string  Interface to join the group on (default all)
//	-get string        Fetch the status of one device (host:port) and exit
//	-discover          Browse for devices via mDNS and exit after the timeout
//	-timeout duration  Deadline for -get and -discover (default 5s)
//
// Examples:
//
//	# Watch all announcements on the segment
//	coiot-monitor
//
//	# Ask one device for its status
//	coiot-monitor -get 192.168.1.40:5683
//
//	# Find devices via mDNS
//	coiot-monitor -discover
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tefinger/fake-shelly/pkg/coap"
	"github.com/tefinger/fake-shelly/pkg/coiot"
	"github.com/tefinger/fake-shelly/pkg/discovery"
)

var flags struct {
	Group     string
	Interface string
	Get       string
	Discover  bool
	Timeout   time.Duration
}

func init() {
	flag.StringVar(&flags.Group, "group", coiot.DefaultMulticastGroup, "Multicast group to join")
	flag.StringVar(&flags.Interface, "interface", "", "Interface to join the group on")
	flag.StringVar(&flags.Get, "get", "", "Fetch the status of one device (host:port) and exit")
	flag.BoolVar(&flags.Discover, "discover", false, "Browse for devices via mDNS")
	flag.DurationVar(&flags.Timeout, "timeout", 5*time.Second, "Deadline for -get and -discover")
}

func main() {
	flag.Parse()
	stdlog.SetFlags(stdlog.Ltime)
	coiot.RegisterOptions()

	switch {
	case flags.Get != "":
		if err := fetchStatus(flags.Get); err != nil {
			stdlog.Fatalf("Fetch failed: %v", err)
		}
	case flags.Discover:
		if err := discoverDevices(); err != nil {
			stdlog.Fatalf("Discovery failed: %v", err)
		}
	default:
		if err := watchAnnouncements(); err != nil {
			stdlog.Fatalf("Monitor failed: %v", err)
		}
	}
}

// watchAnnouncements joins the multicast group and prints every status
// announcement until interrupted.
func watchAnnouncements() error {
	server, err := coap.NewServer(coap.ServerConfig{
		MulticastGroup: flags.Group,
		Interface:      flags.Interface,
		Handler: coap.HandlerFunc(func(req *coap.IncomingRequest) (*coap.Message, error) {
			// Announcements are NON GET /cit/s requests; a monitor never
			// answers them.
			if req.Message.Code == coap.CodeGET && req.Message.Path() == coiot.StatusPath {
				printStatus(req.From.String(), req.Message)
			}
			return nil, nil
		}),
	})
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	stdlog.Printf("Watching %s (Ctrl-C to stop)", flags.Group)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	return nil
}

// fetchStatus asks a single device for its status.
func fetchStatus(target string) error {
	ctx, cancel := context.WithTimeout(context.Background(), flags.Timeout)
	defer cancel()

	msg := coap.NewMessage(coap.NonConfirmable, coap.CodeGET)
	msg.MessageID = coap.NextMessageID()
	msg.Token = coap.NewToken()
	msg.SetPath(coiot.StatusPath)

	client := &coap.Client{Timeout: flags.Timeout}
	resp, err := client.Do(ctx, target, msg)
	if err != nil {
		return err
	}
	printStatus(target, resp)
	return nil
}

// discoverDevices browses for CoIoT devices via mDNS until the timeout.
func discoverDevices() error {
	ctx, cancel := context.WithTimeout(context.Background(), flags.Timeout)
	defer cancel()

	browser, err := discovery.NewMDNSBrowser(discovery.BrowserConfig{Interface: flags.Interface})
	if err != nil {
		return err
	}
	defer browser.Stop()

	results, err := browser.Browse(ctx)
	if err != nil {
		return err
	}

	stdlog.Printf("Browsing for %s (%s)", discovery.ServiceTypeCoIoT, flags.Timeout)
	count := 0
	for svc := range results {
		count++
		fmt.Printf("%-24s %s port %d %v\n", svc.DeviceID, svc.Host, svc.Port, svc.Addresses)
	}
	stdlog.Printf("Found %d device(s)", count)
	return nil
}

// printStatus prints one status message with its CoIoT options.
func printStatus(from string, msg *coap.Message) {
	opts, err := coiot.ExtractStatusOptions(msg)
	if err != nil {
		stdlog.Printf("%s: malformed status options: %v", from, err)
		return
	}
	fmt.Printf("%s  %-24s serial=%-5d validity=%-5d %s\n",
		time.Now().Format("15:04:05"), opts.DeviceID, opts.Serial, opts.Validity, msg.Payload)
}
