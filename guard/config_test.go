package guard

import (
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Name != "breaker" {
		t.Errorf("expected default name, got %q", cfg.Name)
	}
	if cfg.OpenToHalfOpenWait != DefaultOpenToHalfOpenWait {
		t.Errorf("expected %v, got %v", DefaultOpenToHalfOpenWait, cfg.OpenToHalfOpenWait)
	}
	if cfg.MaxFailureCount != DefaultMaxFailureCount {
		t.Errorf("expected %d, got %d", DefaultMaxFailureCount, cfg.MaxFailureCount)
	}
	if cfg.SlowCallThreshold != DefaultSlowCallThreshold {
		t.Errorf("expected %v, got %v", DefaultSlowCallThreshold, cfg.SlowCallThreshold)
	}
	if cfg.SlowCallCountThreshold != DefaultSlowCallCountThreshold {
		t.Errorf("expected %d, got %d", DefaultSlowCallCountThreshold, cfg.SlowCallCountThreshold)
	}
	if cfg.MaxConcurrentRequests != DefaultMaxConcurrentRequests {
		t.Errorf("expected %d, got %d", DefaultMaxConcurrentRequests, cfg.MaxConcurrentRequests)
	}
	if cfg.CoolDownPeriod != DefaultCoolDownPeriod {
		t.Errorf("expected %v, got %v", DefaultCoolDownPeriod, cfg.CoolDownPeriod)
	}
	if cfg.RequiredSuccessCount != DefaultRequiredSuccessCount {
		t.Errorf("expected %d, got %d", DefaultRequiredSuccessCount, cfg.RequiredSuccessCount)
	}
	if cfg.CallTimeout != DefaultCallTimeout {
		t.Errorf("expected %v, got %v", DefaultCallTimeout, cfg.CallTimeout)
	}
	if cfg.RetryCount != 0 {
		t.Errorf("retries are opt-in, got %d", cfg.RetryCount)
	}
}

func TestConfig_ExplicitValuesKept(t *testing.T) {
	cfg := Config{
		Name:               "payments",
		MaxFailureCount:    2,
		OpenToHalfOpenWait: time.Minute,
	}
	cfg.ApplyDefaults()

	if cfg.Name != "payments" {
		t.Errorf("expected payments, got %q", cfg.Name)
	}
	if cfg.MaxFailureCount != 2 {
		t.Errorf("expected 2, got %d", cfg.MaxFailureCount)
	}
	if cfg.OpenToHalfOpenWait != time.Minute {
		t.Errorf("expected 1m, got %v", cfg.OpenToHalfOpenWait)
	}
}
