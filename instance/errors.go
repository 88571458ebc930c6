package instance

import "errors"

var (
	errNotOpen = errors.New("instance: device not open")

	// ErrDeviceNotFound is returned when no device name matches a
	// configured read/write prefix or index.
	ErrDeviceNotFound = errors.New("instance: device not found")
	// ErrDeviceOpenFailed wraps a failure opening an input or output
	// device during MidiInstance start.
	ErrDeviceOpenFailed = errors.New("instance: device open failed")
)
