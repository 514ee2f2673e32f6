package remote

import (
	"time"

	"github.com/moffa90/go-c8051flash/flash"
	"github.com/moffa90/go-c8051flash/protocol"
)

// Config holds the client and agent configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger flash.Logger

	// Timeout bounds one command round trip of the client. It is applied
	// only when the link supports deadlines.
	Timeout time.Duration

	// MaxChunk is the largest number of Flash bytes moved per Read, Write
	// or Update command
	MaxChunk int
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Timeout:  5 * time.Second,
		MaxChunk: protocol.DefaultChunkSize,
	}
}

// Option is a functional option for configuring a Client or an Agent.
type Option func(*Config)

// WithLogger sets a logger.
//
// Example:
//
//	client, err := remote.Dial(ctx, port, remote.WithLogger(myLogger))
func WithLogger(logger flash.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTimeout sets the round-trip timeout of the client. Zero disables it.
//
// Example:
//
//	client, err := remote.Dial(ctx, port, remote.WithTimeout(time.Second))
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout >= 0 {
			c.Timeout = timeout
		}
	}
}

// WithMaxChunk sets the transfer size of chunked operations.
// Sizes outside 1 to protocol.MaxDataSize-protocol.AddrSize are ignored.
//
// Example:
//
//	client, err := remote.Dial(ctx, port, remote.WithMaxChunk(32))
func WithMaxChunk(size int) Option {
	return func(c *Config) {
		if size > 0 && size <= protocol.MaxDataSize-protocol.AddrSize {
			c.MaxChunk = size
		}
	}
}
