// Package coiot implements the status side of the CoIoT protocol spoken by
// first-generation Shelly devices: periodic multicast status announcements
// and direct answers to GET /cit/s requests, both carrying the device
// identity in the CoIoT CoAP options 3332, 3412 and 3420.
//
// Server composes the pieces for a single device. Announcer and Responder
// share one SerialCounter, so recipients observe a single status sequence
// across announcements and direct responses.
package coiot
