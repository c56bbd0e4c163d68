// Package discovery advertises and finds CoIoT devices on the local network
// via mDNS.
//
// A device publishes two services: "_coiot._udp" for the CoAP status
// endpoint and, when the HTTP API is enabled, "_http._tcp" for it. Both
// carry the device identity in TXT records. The browser side aggregates
// zeroconf entries from multiple interfaces into one service per instance
// name.
package discovery
