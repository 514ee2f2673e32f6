package flash

// Config holds the primitives configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// SettleCycles is the number of VDM0CN polls spent waiting for the VDD
	// monitor to stabilize after selecting the high threshold
	SettleCycles int
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		SettleCycles: 255,
	}
}

// Option is a functional option for configuring Primitives.
type Option func(*Config)

// WithLogger sets a logger for the primitives.
//
// Operations are logged at debug level only; a logger on the primitives is
// verbose.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithSettleCycles sets how long the VDD monitor is given to settle.
//
// Example:
//
//	dev := flash.New(bus, def, flash.WithSettleCycles(16))
func WithSettleCycles(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.SettleCycles = n
		}
	}
}
