package loader

import "github.com/moffa90/go-c8051flash/flash"

// Config holds the loader configuration.
type Config struct {
	// ProgressCallback is called during programming to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger flash.Logger

	// VerifyAfterProgram enables reading back every programmed byte
	VerifyAfterProgram bool

	// EraseUnusedPages erases every user page the image does not touch
	EraseUnusedPages bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		VerifyAfterProgram: true,
	}
}

// Option is a functional option for configuring the Loader.
type Option func(*Config)

// WithProgressCallback sets a callback function to track programming progress.
//
// Example:
//
//	ld := loader.New(dev,
//	    loader.WithProgressCallback(func(p loader.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the loader operations.
//
// Example:
//
//	ld := loader.New(dev, loader.WithLogger(myLogger))
func WithLogger(logger flash.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithVerifyAfterProgram enables or disables read-back verification.
// Default is true.
//
// Example:
//
//	ld := loader.New(dev, loader.WithVerifyAfterProgram(false))
func WithVerifyAfterProgram(verify bool) Option {
	return func(c *Config) {
		c.VerifyAfterProgram = verify
	}
}

// WithEraseUnusedPages erases the user pages the image leaves untouched, so
// that the device holds nothing but the image afterwards. Default is false.
//
// Example:
//
//	ld := loader.New(dev, loader.WithEraseUnusedPages(true))
func WithEraseUnusedPages(erase bool) Option {
	return func(c *Config) {
		c.EraseUnusedPages = erase
	}
}
