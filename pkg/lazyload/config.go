package lazyload

// Config is shared by a Manager and all of its trackers.
type Config struct {
	// PlaceholderImageURL replaces the src of images that are not loaded yet.
	PlaceholderImageURL string
	// Threshold grows the container's viewport on every side, in pixels.
	Threshold int
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{}
}

// Option overrides part of the default Config.
type Option func(*Config)

// WithPlaceholder sets the placeholder image URL.
func WithPlaceholder(url string) Option {
	return func(c *Config) {
		c.PlaceholderImageURL = url
	}
}

// WithThreshold sets the preload threshold in pixels.
func WithThreshold(px int) Option {
	return func(c *Config) {
		c.Threshold = px
	}
}

// WithConfig replaces the whole configuration. Options after it still
// apply on top.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}
