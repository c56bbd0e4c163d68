package coap

import (
	"strconv"
	"sync"
)

// OptionID identifies a CoAP option number.
type OptionID uint16

// Standard option numbers used by this stack.
const (
	OptionURIHost       OptionID = 3
	OptionURIPath       OptionID = 11
	OptionContentFormat OptionID = 12
	OptionURIQuery      OptionID = 15
)

// OptionFormat describes the value format of a registered option.
type OptionFormat uint8

const (
	// FormatOpaque is an uninterpreted byte sequence.
	FormatOpaque OptionFormat = 0
	// FormatUint is a big-endian unsigned integer.
	FormatUint OptionFormat = 1
	// FormatString is a UTF-8 string.
	FormatString OptionFormat = 2
)

// String returns the format name.
func (f OptionFormat) String() string {
	switch f {
	case FormatOpaque:
		return "opaque"
	case FormatUint:
		return "uint"
	case FormatString:
		return "string"
	default:
		return "unknown"
	}
}

// OptionDef describes a registered option number.
type OptionDef struct {
	// ID is the option number.
	ID OptionID

	// Name is the human-readable option name, used in logs and dumps.
	Name string

	// Format is the value format.
	Format OptionFormat
}

// The option registry is process-wide shared state, mirroring the global
// option table of CoAP implementations: every server and client in the
// process sees the same definitions.
var (
	registryMu sync.RWMutex
	registry   = map[OptionID]OptionDef{
		OptionURIHost:       {ID: OptionURIHost, Name: "Uri-Host", Format: FormatString},
		OptionURIPath:       {ID: OptionURIPath, Name: "Uri-Path", Format: FormatString},
		OptionContentFormat: {ID: OptionContentFormat, Name: "Content-Format", Format: FormatUint},
		OptionURIQuery:      {ID: OptionURIQuery, Name: "Uri-Query", Format: FormatString},
	}
)

// RegisterOption adds an option definition to the process-wide registry.
// Registration is idempotent: registering the same number again replaces the
// previous definition and never panics or duplicates.
func RegisterOption(def OptionDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[def.ID] = def
}

// LookupOption returns the definition of a registered option number.
func LookupOption(id OptionID) (OptionDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := registry[id]
	return def, ok
}

// OptionName returns the registered name of an option number, or its decimal
// form if unregistered.
func OptionName(id OptionID) string {
	if def, ok := LookupOption(id); ok {
		return def.Name
	}
	return strconv.Itoa(int(id))
}
