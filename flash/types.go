package flash

import (
	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/sfr"
)

// Bus is the hardware register interface of the Flash controller.
type Bus interface {
	// ReadSFR reads a special-function register
	ReadSFR(r sfr.Addr) byte

	// WriteSFR writes a special-function register
	WriteSFR(r sfr.Addr, v byte)

	// Store performs a MOVX write to code space. It programs or erases
	// Flash only when the controller latches and key allow it.
	Store(a device.Addr, v byte)

	// Load performs a MOVC read from code space
	Load(a device.Addr) byte
}

// Device is a byte-addressable Flash memory with page erase.
// Primitives implements it over a Bus; remote.Client implements it over a
// serial link.
type Device interface {
	// Definition returns the geometry of the device
	Definition() *device.Definition

	// ByteRead returns the byte at a
	ByteRead(a device.Addr) (byte, error)

	// ByteWrite programs v at a. Bits can only be cleared; the byte must be
	// erased wherever v has ones.
	ByteWrite(a device.Addr, v byte) error

	// PageErase sets every byte of the page containing a to 0xFF
	PageErase(a device.Addr) error
}

// Logger is an optional logging interface shared by the packages of this
// module. It allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
