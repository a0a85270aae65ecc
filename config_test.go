package gatehouse

import (
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := defaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero session timeout", func(c *Config) { c.Session.Timeout = 0 }},
		{"negative session timeout", func(c *Config) { c.Session.Timeout = -time.Minute }},
		{"empty cookie name", func(c *Config) { c.Session.CookieName = "" }},
		{"empty redis prefix", func(c *Config) { c.Session.RedisPrefix = "" }},
		{"zero lock period", func(c *Config) { c.Lockout.LockPeriod = 0 }},
		{"zero max attempts", func(c *Config) { c.Lockout.MaxLoginAttempts = 0 }},
		{"empty cookie path", func(c *Config) { c.Cookie.Path = "" }},
		{"empty date format", func(c *Config) { c.Messages.DateFormat = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestBuilderRequiresDependencies(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("build without redis succeeded")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New()
	b.built = true
	if _, err := b.Build(); err == nil {
		t.Fatal("reused builder succeeded")
	}
}
