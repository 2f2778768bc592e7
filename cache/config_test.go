package cache

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxSize != 1000 {
		t.Errorf("MaxSize = %d; want 1000", cfg.MaxSize)
	}
	if cfg.DefaultTTL != 5*time.Minute {
		t.Errorf("DefaultTTL = %s; want 5m", cfg.DefaultTTL)
	}
	if cfg.CleanupInterval != time.Minute {
		t.Errorf("CleanupInterval = %s; want 1m", cfg.CleanupInterval)
	}
	if cfg.Policy != EvictLRU {
		t.Errorf("Policy = %s; want lru", cfg.Policy)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"zero max size", Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute}, "MaxSize"},
		{"negative max size", Config{MaxSize: -1, DefaultTTL: time.Minute, CleanupInterval: time.Minute}, "MaxSize"},
		{"zero ttl", Config{MaxSize: 10, CleanupInterval: time.Minute}, "DefaultTTL"},
		{"zero cleanup", Config{MaxSize: 10, DefaultTTL: time.Minute}, "CleanupInterval"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("err = %T; want *ConfigError", err)
			}
			if ce.Field != tc.field {
				t.Fatalf("field = %s; want %s", ce.Field, tc.field)
			}
		})
	}
}

func TestConfigUnknownPolicyIsValid(t *testing.T) {
	cfg := Config{MaxSize: 10, DefaultTTL: time.Minute, CleanupInterval: time.Minute, Policy: "fifo"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unrecognized policies are not a config error, got %v", err)
	}
}

func TestConfigWithDefaults(t *testing.T) {
	got := Config{MaxSize: 7}.withDefaults()
	want := DefaultConfig()
	want.MaxSize = 7

	if got != want {
		t.Fatalf("withDefaults = %+v; want %+v", got, want)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("withDefaults must produce a valid config, got %v", err)
	}
}
