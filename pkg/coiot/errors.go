package coiot

import "errors"

var (
	// ErrNoDevice indicates a component was created without a device.
	ErrNoDevice = errors.New("no device provided")

	// ErrNoHandler indicates a dispatcher was created without a handler.
	ErrNoHandler = errors.New("no handler provided")

	// ErrAlreadyStarted indicates Start was called on a running component.
	ErrAlreadyStarted = errors.New("already started")

	// ErrValueNotNumeric indicates a numeric option value that is neither an
	// integer nor a decimal string.
	ErrValueNotNumeric = errors.New("option value is not numeric")

	// ErrValueOutOfRange indicates a numeric option value outside [0, 65535].
	ErrValueOutOfRange = errors.New("option value does not fit in 16 bits")

	// ErrBadOptionLength indicates a numeric option value of the wrong wire
	// length.
	ErrBadOptionLength = errors.New("option value has wrong length")

	// ErrBadIdentifier indicates a device identifier that does not follow the
	// "type#id#revision" layout.
	ErrBadIdentifier = errors.New("malformed device identifier")
)
