package gatehouse

import (
	"errors"
	"time"
)

// Config defines a public type used by gatehouse APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Kind     PrincipalKind
	Session  SessionConfig
	Lockout  LockoutConfig
	Cookie   CookieConfig
	Messages MessageConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by gatehouse APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// Timeout bounds both the session-record lifetime and the outbound
	// cookie expiry.
	Timeout time.Duration
	// CookieName is the binding cookie; it is also an input to the binding
	// hash, so frontend and backend engines sharing a store never collide.
	CookieName string
	RedisPrefix string
	// DisableIPCheck removes the client IP from the binding hash and from
	// session validation, for clients behind IP-rotating proxies.
	DisableIPCheck bool
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig defines a public type used by gatehouse APIs.
//
// LockoutConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LockoutConfig struct {
	// LockPeriod is how long a lock blocks login attempts once entered.
	LockPeriod time.Duration
	// MaxLoginAttempts seeds and resets the per-record attempt counter.
	MaxLoginAttempts int
	// AdminEmail enables the lockout notice when non-empty.
	AdminEmail string
}

// CookieConfig defines a public type used by gatehouse APIs.
//
// CookieConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookieConfig struct {
	Path string
}

// MessageConfig holds the user-visible message templates. AccountLocked is a
// fmt template receiving the remaining lock time in minutes; DateFormat is a
// Go reference layout used when audit entries render activity-window
// timestamps.
type MessageConfig struct {
	InvalidLogin  string
	AccountLocked string
	DateFormat    string
}

// AuditConfig defines a public type used by gatehouse APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by gatehouse APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Kind: KindBackend,
		Session: SessionConfig{
			Timeout:     time.Hour,
			CookieName:  "user_auth",
			RedisPrefix: "gh",
		},
		Lockout: LockoutConfig{
			LockPeriod:       5 * time.Minute,
			MaxLoginAttempts: 3,
		},
		Cookie: CookieConfig{
			Path: "/",
		},
		Messages: MessageConfig{
			InvalidLogin:  "Login failed (note that usernames and passwords are case-sensitive)",
			AccountLocked: "The account has been locked for security reasons. You can log in again in %d minute(s)",
			DateFormat:    "2006-01-02 15:04",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.Session.Timeout <= 0 {
		return errors.New("session timeout must be positive")
	}
	if c.Session.CookieName == "" {
		return errors.New("session cookie name required")
	}
	if c.Session.RedisPrefix == "" {
		return errors.New("session redis prefix required")
	}
	if c.Lockout.LockPeriod <= 0 {
		return errors.New("lock period must be positive")
	}
	if c.Lockout.MaxLoginAttempts < 1 {
		return errors.New("max login attempts must be at least 1")
	}
	if c.Cookie.Path == "" {
		return errors.New("cookie path required")
	}
	if c.Messages.DateFormat == "" {
		return errors.New("date format required")
	}
	return nil
}
