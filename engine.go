package gatehouse

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/schmanat/gatehouse/password"
	"github.com/schmanat/gatehouse/session"
)

// Engine defines a public type used by gatehouse APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config   Config
	users    UserStore
	sessions *session.Store
	verifier *password.Verifier
	clock    Clock
	notifier Notifier

	importers   []UserImporter
	checkers    []CredentialChecker
	postLogins  []PostLoginHook
	postLogouts []PostLogoutHook

	audit   *auditDispatcher
	metrics *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) now() time.Time {
	if e == nil || e.clock == nil {
		return time.Now()
	}
	return e.clock.Now()
}

// bindingIP is the IP folded into the binding hash: empty when the IP check
// is disabled, so hashes stay stable across proxy rotation.
func (e *Engine) bindingIP(ctx context.Context) string {
	if e.config.Session.DisableIPCheck {
		return ""
	}
	return clientIPFromContext(ctx)
}

// Authenticate revalidates the binding cookie presented by the request
// against the session store, reloads the owning principal, and refreshes the
// session activity timestamp and cookie expiry.
//
// Account status (lock, disable, activity window) is NOT re-evaluated here;
// only Login does that. A session opened before an account was disabled
// therefore survives until the session timeout — an accepted staleness
// tradeoff that keeps this per-request path to one store round-trip.
func (e *Engine) Authenticate(ctx context.Context, req Request) (*UserRecord, error) {
	const origin = "Engine.Authenticate"

	if e == nil || e.users == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}
	if req.Cookies == nil || req.Carrier == nil {
		return nil, ErrEngineNotReady
	}

	cookieName := e.config.Session.CookieName

	presented, ok := req.Cookies.Get(cookieName)
	if !ok || presented == "" {
		e.metricInc(MetricAuthenticateFailure)
		return nil, ErrSessionNotFound
	}

	// Never trust the client-declared hash alone: recompute the expected
	// binding for this exact client and compare first.
	expected := session.BindingHash(req.Carrier.SessionID(), e.bindingIP(ctx), cookieName)
	if subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
		e.metricInc(MetricAuthenticateFailure)
		e.emitAudit(ctx, auditEventAuthenticateFailure, origin, false, "", "", ErrSessionMismatch, func() map[string]string {
			return map[string]string{
				"reason": "cookie_hash_mismatch",
			}
		})
		return nil, ErrSessionMismatch
	}

	rec, err := e.sessions.Lookup(ctx, cookieName, presented)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			e.metricInc(MetricAuthenticateFailure)
			e.emitAudit(ctx, auditEventAuthenticateFailure, origin, false, "", "", ErrSessionNotFound, func() map[string]string {
				return map[string]string{
					"reason": "record_not_found",
				}
			})
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	now := e.now()

	if rec.SessionID != req.Carrier.SessionID() ||
		(!e.config.Session.DisableIPCheck && rec.IP != clientIPFromContext(ctx)) ||
		rec.Hash != presented ||
		time.Unix(rec.LastActivity, 0).Add(e.config.Session.Timeout).Before(now) {
		e.metricInc(MetricAuthenticateFailure)
		e.emitAudit(ctx, auditEventAuthenticateFailure, origin, false, rec.PrincipalID, rec.SessionID, ErrSessionMismatch, func() map[string]string {
			return map[string]string{
				"reason": "record_mismatch",
			}
		})
		return nil, ErrSessionMismatch
	}

	user, err := e.users.FindByID(ctx, rec.PrincipalID)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			e.metricInc(MetricAuthenticateFailure)
			e.emitAudit(ctx, auditEventAuthenticateFailure, origin, false, rec.PrincipalID, rec.SessionID, ErrPrincipalNotFound, nil)
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	if err := e.sessions.Touch(ctx, rec, now, e.config.Session.Timeout); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	req.Cookies.Set(cookieName, presented, now.Add(e.config.Session.Timeout), e.config.Cookie.Path)

	e.metricInc(MetricAuthenticateSuccess)
	e.emitAudit(ctx, auditEventAuthenticateSuccess, origin, true, user.ID, rec.SessionID, nil, nil)

	return &user, nil
}

// Logout removes the binding cookie, destroys the session record and the
// underlying low-level session, and invokes the post-logout hooks. It is a
// no-op returning (false, nil) when the request carries no binding cookie.
func (e *Engine) Logout(ctx context.Context, req Request) (bool, error) {
	const origin = "Engine.Logout"

	if e == nil || e.users == nil || e.sessions == nil {
		return false, ErrEngineNotReady
	}
	if req.Cookies == nil || req.Carrier == nil {
		return false, ErrEngineNotReady
	}

	cookieName := e.config.Session.CookieName

	presented, ok := req.Cookies.Get(cookieName)
	if !ok || presented == "" {
		return false, nil
	}

	// Read the record first so the logout can be attributed even after the
	// delete.
	rec, err := e.sessions.Lookup(ctx, cookieName, presented)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return false, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	if err := e.sessions.Delete(ctx, cookieName, presented); err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	now := e.now()
	req.Cookies.Set(cookieName, presented, now.Add(-24*time.Hour), e.config.Cookie.Path)

	req.Carrier.Destroy()
	req.Carrier.SetAuthenticated(false)

	var principal UserRecord
	if rec != nil {
		principal = UserRecord{ID: rec.PrincipalID}
		if user, err := e.users.FindByID(ctx, rec.PrincipalID); err == nil {
			principal = user
			e.emitAudit(ctx, auditEventLogout, origin, true, user.ID, rec.SessionID, nil, func() map[string]string {
				return map[string]string{
					"username": user.Username,
				}
			})
		}
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricSessionInvalidated)

	for _, hook := range e.postLogouts {
		hook.PostLogout(ctx, principal)
	}

	return true, nil
}
