package datalog

import (
	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/flash"
)

// Config holds the log configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger flash.Logger

	// StatsAddr is the address of the statistics block. Zero places it at
	// the first byte after the region.
	StatsAddr device.Addr
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{}
}

// Option is a functional option for configuring a Log.
type Option func(*Config)

// WithLogger sets a logger for the log operations.
func WithLogger(logger flash.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithStatsAddr places the statistics block at a.
//
// Example:
//
//	lg, err := datalog.Open(dev, region, datalog.WithStatsAddr(0x3C00))
func WithStatsAddr(a device.Addr) Option {
	return func(c *Config) {
		c.StatsAddr = a
	}
}
