package flashutil

import (
	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/flash"
)

// PhaseHook is called before each phase of a page rewrite with the first
// address of the target page. Returning an error aborts the rewrite at that
// point and Clear returns the error.
type PhaseHook func(phase Phase, page device.Addr) error

// Config holds the editor configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger flash.Logger

	// PhaseHook observes page rewrites (optional)
	PhaseHook PhaseHook
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{}
}

// Option is a functional option for configuring the Editor.
type Option func(*Config)

// WithLogger sets a logger for the editor operations.
//
// Example:
//
//	ed := flashutil.New(dev, flashutil.WithLogger(myLogger))
func WithLogger(logger flash.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithPhaseHook installs a hook that runs before every rewrite phase.
//
// Example:
//
//	ed := flashutil.New(dev, flashutil.WithPhaseHook(func(p flashutil.Phase, page device.Addr) error {
//	    fmt.Printf("%s 0x%04X\n", p, page)
//	    return nil
//	}))
func WithPhaseHook(hook PhaseHook) Option {
	return func(c *Config) {
		c.PhaseHook = hook
	}
}
