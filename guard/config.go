package guard

import (
	"time"

	"github.com/kbukum/guardkit/backoff"
)

// Default configuration values.
const (
	DefaultOpenToHalfOpenWait     = 5 * time.Second
	DefaultMaxFailureCount        = 5
	DefaultSlowCallThreshold      = 5 * time.Second
	DefaultSlowCallCountThreshold = 10
	DefaultMaxConcurrentRequests  = 10
	DefaultCoolDownPeriod         = 60 * time.Second
	DefaultRequiredSuccessCount   = 1
	DefaultCallTimeout            = 30 * time.Second
)

// Config configures a breaker. The zero value is usable; ApplyDefaults
// fills every unset field. Scalar fields carry mapstructure/yaml tags so a
// Config can be loaded through the config package.
type Config struct {
	// Name identifies this breaker in logs, errors, and events.
	Name string `yaml:"name" mapstructure:"name"`

	// OpenToHalfOpenWait is how long an Open breaker makes a call wait
	// before failing it fast. Once the wait has fully elapsed since the
	// breaker opened, the breaker moves to HalfOpen.
	OpenToHalfOpenWait time.Duration `yaml:"open_to_half_open_wait" mapstructure:"open_to_half_open_wait" validate:"gte=0"`

	// MaxFailureCount is the number of consecutive counted failures
	// before the breaker opens.
	MaxFailureCount int `yaml:"max_failure_count" mapstructure:"max_failure_count" validate:"gte=0"`

	// RetryCount is the number of retries after the first attempt.
	// Retries only happen when a RetryStrategy is set.
	RetryCount int `yaml:"retry_count" mapstructure:"retry_count" validate:"gte=0"`

	// RetryStrategy computes the delay before each retry. Nil disables
	// retries regardless of RetryCount.
	RetryStrategy backoff.Strategy `yaml:"-" mapstructure:"-"`

	// SlowCallThreshold is the elapsed time beyond which a call counts
	// as slow, successful or not.
	SlowCallThreshold time.Duration `yaml:"slow_call_threshold" mapstructure:"slow_call_threshold" validate:"gte=0"`

	// SlowCallCountThreshold is the number of slow calls that forces the
	// breaker into Isolated.
	SlowCallCountThreshold int `yaml:"slow_call_count_threshold" mapstructure:"slow_call_count_threshold" validate:"gte=0"`

	// MaxConcurrentRequests bounds in-flight calls (the bulkhead).
	MaxConcurrentRequests int `yaml:"max_concurrent_requests" mapstructure:"max_concurrent_requests" validate:"gte=0"`

	// CoolDownPeriod is the gap after which a failure no longer extends
	// an existing failure streak; the counter resets first.
	CoolDownPeriod time.Duration `yaml:"cool_down_period" mapstructure:"cool_down_period" validate:"gte=0"`

	// RequiredSuccessCount is the number of successes needed to leave
	// HalfOpen.
	RequiredSuccessCount int `yaml:"required_success_count" mapstructure:"required_success_count" validate:"gte=0"`

	// CallTimeout is the default per-call timeout used by Execute.
	CallTimeout time.Duration `yaml:"call_timeout" mapstructure:"call_timeout" validate:"gte=0"`

	// FailureFilter decides whether a failure counts toward the failure
	// threshold. A failure it rejects still ends the attempt loop, but
	// is neither counted nor retried. Nil counts every failure.
	FailureFilter func(error) bool `yaml:"-" mapstructure:"-"`

	// OnStateChange is called on every transition with the previous and
	// new state. Called synchronously; do not call back into the breaker.
	OnStateChange func(from, to State) `yaml:"-" mapstructure:"-"`

	// OnOpen is called when the breaker enters Open, with the manual
	// open reason if one was recorded.
	OnOpen func(reason string) `yaml:"-" mapstructure:"-"`

	// OnClose is called when the breaker enters Closed.
	OnClose func() `yaml:"-" mapstructure:"-"`
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig(name string) Config {
	cfg := Config{Name: name}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "breaker"
	}
	if c.OpenToHalfOpenWait <= 0 {
		c.OpenToHalfOpenWait = DefaultOpenToHalfOpenWait
	}
	if c.MaxFailureCount <= 0 {
		c.MaxFailureCount = DefaultMaxFailureCount
	}
	if c.SlowCallThreshold <= 0 {
		c.SlowCallThreshold = DefaultSlowCallThreshold
	}
	if c.SlowCallCountThreshold <= 0 {
		c.SlowCallCountThreshold = DefaultSlowCallCountThreshold
	}
	if c.MaxConcurrentRequests <= 0 {
		c.MaxConcurrentRequests = DefaultMaxConcurrentRequests
	}
	if c.CoolDownPeriod <= 0 {
		c.CoolDownPeriod = DefaultCoolDownPeriod
	}
	if c.RequiredSuccessCount <= 0 {
		c.RequiredSuccessCount = DefaultRequiredSuccessCount
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
}
