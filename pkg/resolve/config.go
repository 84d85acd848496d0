package resolve

import "time"

// Defaults applied by Config.withDefaults.
const (
	DefaultTimeout   = 10 * time.Second
	DefaultFailedTTL = time.Hour
)

// DefaultEndpoints are the Twemoji asset hosts, in fallback priority order.
var DefaultEndpoints = []string{
	"https://cdn.jsdelivr.net/gh/twitter/twemoji@latest/assets/72x72",
	"https://twemoji.maxcdn.com/v/latest/72x72",
	"https://abs.twimg.com/emoji/v2/72x72",
}

// Config holds the resolver tunables. The zero value is usable: every field
// falls back to a default.
type Config struct {
	// CacheDir is the disk store location. Empty selects the default
	// directory relative to the working directory.
	CacheDir string

	// Timeout bounds each endpoint attempt. Must be positive; validation
	// and clamping of user input happens at the configuration boundary,
	// not here.
	Timeout time.Duration

	// FailedTTL is how long a failed glyph is suppressed before a fetch
	// may be retried.
	FailedTTL time.Duration

	// Endpoints are the base URLs tried in priority order.
	Endpoints []string

	// MemoryCapacity and FailureCapacity bound the volatile tiers.
	// Non-positive values select the cache package defaults.
	MemoryCapacity  int
	FailureCapacity int
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.FailedTTL <= 0 {
		c.FailedTTL = DefaultFailedTTL
	}
	if len(c.Endpoints) == 0 {
		c.Endpoints = DefaultEndpoints
	}
	return c
}
