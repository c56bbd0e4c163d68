// Package coap implements the subset of CoAP (RFC 7252) that the CoIoT
// status protocol needs: the message model, the binary wire codec, a
// process-wide option registry, and UDP transport for both unicast and
// multicast-group listening.
//
// This is deliberately not a general CoAP stack. There is no retransmission,
// no observe, no blockwise transfer; CoIoT announcements are fire-and-forget
// non-confirmable messages and status exchanges are single-datagram
// request/response pairs.
//
// Layering:
//
//	Message + Marshal/Unmarshal  - wire codec (bit-exact RFC 7252 framing)
//	Server                       - owns one UDP socket, decodes inbound
//	                               requests and hands them to a Handler
//	Client                       - sends outbound requests (unicast with a
//	                               response deadline, or multicast with a
//	                               bounded response-collection window)
package coap
