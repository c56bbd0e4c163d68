package coiot

import "sync"

// SerialCounter issues the status serial sequence. A device has exactly one
// counter, shared between its announcer and its responder, so recipients
// observe a single sequence across announcements and direct responses.
//
// The internal sequence is 32 bits wide and starts at 1; the wire value is
// its low 16 bits, so the on-wire serial wraps from 65535 back to 0 while
// the issue count keeps advancing. Safe for concurrent use.
type SerialCounter struct {
	mu   sync.Mutex
	next uint32
}

// NewSerialCounter creates a counter whose first issued wire value is 1.
func NewSerialCounter() *SerialCounter {
	return &SerialCounter{next: 1}
}

// Next issues the next serial and advances the sequence.
func (c *SerialCounter) Next() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := uint16(c.next)
	c.next++
	return v
}

// Peek returns the wire value the next message will carry, without
// advancing the sequence.
func (c *SerialCounter) Peek() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint16(c.next)
}

// Issued returns how many serials have been handed out.
func (c *SerialCounter) Issued() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint64(c.next - 1)
}
