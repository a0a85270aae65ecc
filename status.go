package gatehouse

import "time"

// AccountDecision is the outcome of evaluating one record against the
// lockout and activation-window policy.
type AccountDecision uint8

const (
	// DecisionAllowed is an exported constant or variable used by the authentication engine.
	DecisionAllowed AccountDecision = iota
	// DecisionLocked is an exported constant or variable used by the authentication engine.
	DecisionLocked
	// DecisionDisabled is an exported constant or variable used by the authentication engine.
	DecisionDisabled
	// DecisionNotPermitted is an exported constant or variable used by the authentication engine.
	DecisionNotPermitted
	// DecisionNotYetActive is an exported constant or variable used by the authentication engine.
	DecisionNotYetActive
	// DecisionExpired is an exported constant or variable used by the authentication engine.
	DecisionExpired
)

// AccountStatus carries the decision plus the datum a caller needs to act on
// it: the remaining lock time, the activation time, or the expiry time.
type AccountStatus struct {
	Decision    AccountDecision
	RetryAfter  time.Duration
	ActivatesAt time.Time
	ExpiredAt   time.Time
}

// EvaluateAccount decides whether login is currently permitted for the
// record. It is pure and total: exactly one decision is produced for any
// input, with precedence Locked > Disabled > NotPermitted > NotYetActive >
// Expired > Allowed. Only Login consults it; Authenticate deliberately does
// not.
func EvaluateAccount(u UserRecord, kind PrincipalKind, lockPeriod time.Duration, now time.Time) AccountStatus {
	if u.Locked != 0 {
		lockedUntil := time.Unix(u.Locked, 0).Add(lockPeriod)
		if now.Before(lockedUntil) {
			return AccountStatus{
				Decision:   DecisionLocked,
				RetryAfter: lockedUntil.Sub(now),
			}
		}
	}

	if u.Disable {
		return AccountStatus{Decision: DecisionDisabled}
	}

	if kind == KindFrontend && !u.AllowLogin {
		return AccountStatus{Decision: DecisionNotPermitted}
	}

	if u.Start != 0 {
		start := time.Unix(u.Start, 0)
		if start.After(now) {
			return AccountStatus{
				Decision:    DecisionNotYetActive,
				ActivatesAt: start,
			}
		}
	}

	if u.Stop != 0 {
		stop := time.Unix(u.Stop, 0)
		if stop.Before(now) {
			return AccountStatus{
				Decision:  DecisionExpired,
				ExpiredAt: stop,
			}
		}
	}

	return AccountStatus{Decision: DecisionAllowed}
}

// Err maps the decision onto the engine's error taxonomy; nil for Allowed.
func (s AccountStatus) Err() error {
	switch s.Decision {
	case DecisionAllowed:
		return nil
	case DecisionLocked:
		return ErrAccountLocked
	case DecisionDisabled:
		return ErrAccountDisabled
	case DecisionNotPermitted:
		return ErrLoginNotPermitted
	case DecisionNotYetActive:
		return ErrAccountNotYetActive
	case DecisionExpired:
		return ErrAccountExpired
	default:
		return ErrLoginNotPermitted
	}
}
