package gatehouse

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/schmanat/gatehouse/session"
)

// Login verifies the submitted credentials and, on success, opens a new
// bound session for the request. Every defined failure path returns a
// sentinel from the error taxonomy; user-visible messages go to the request's
// [Messenger], collapsed to the generic invalid-login text for all
// credential-path failures.
func (e *Engine) Login(ctx context.Context, req Request, username, pass, language string) error {
	const origin = "Engine.Login"

	if e == nil || e.users == nil || e.sessions == nil || e.verifier == nil {
		return ErrEngineNotReady
	}
	if req.Cookies == nil || req.Carrier == nil {
		return ErrEngineNotReady
	}

	if username == "" || pass == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, origin, false, "", "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "missing_input",
			}
		})
		return ErrInvalidCredentials
	}

	user, err := e.lookupOrImport(ctx, req, username, pass, origin)
	if err != nil {
		return err
	}

	now := e.now()

	if language != "" {
		user.Language = language
	}

	// A record arriving here with an exhausted counter enters the lock:
	// this attempt is refused regardless of credential correctness.
	if user.LoginCount < 1 {
		return e.lockAccount(ctx, user, now, origin)
	}

	status := EvaluateAccount(user, e.config.Kind, e.config.Lockout.LockPeriod, now)
	if statusErr := status.Err(); statusErr != nil {
		e.surfaceStatusError(req, status)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, origin, false, user.ID, "", statusErr, func() map[string]string {
			return e.statusMetadata(user, status)
		})
		return statusErr
	}

	authenticated, migrated, err := e.verifier.Verify(user.Password, pass)
	if err != nil {
		return fmt.Errorf("credential verification: %w", err)
	}
	if authenticated && migrated != "" {
		// Persist the salted replacement immediately so the unsalted form
		// is never consulted again. Persistence is best-effort: a store
		// hiccup must not fail a login the credentials already earned.
		user.Password = migrated
		if err := e.users.Save(ctx, user); err != nil {
			log.Print("gatehouse: credential migration persistence failed")
		} else {
			e.metricInc(MetricPasswordMigrated)
			e.emitAudit(ctx, auditEventPasswordMigrated, origin, true, user.ID, "", nil, func() map[string]string {
				return map[string]string{
					"username": user.Username,
				}
			})
		}
	}

	if !authenticated {
		for _, checker := range e.checkers {
			if checker.CheckCredentials(ctx, username, pass, user) {
				authenticated = true
				break
			}
		}
	}

	if !authenticated {
		user.LoginCount--
		if err := e.users.Save(ctx, user); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreFailure, err)
		}

		req.addError(e.config.Messages.InvalidLogin)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, origin, false, user.ID, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"username": user.Username,
				"reason":   "password_mismatch",
			}
		})
		return ErrInvalidCredentials
	}

	// Success: reload the full record, shift the login timestamps, and
	// reset the attempt counter.
	fresh, err := e.users.FindByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return ErrPrincipalNotFound
		}
		return fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	user = fresh
	if language != "" {
		user.Language = language
	}

	user.LastLogin = user.CurrentLogin
	user.CurrentLogin = now.Unix()
	user.LoginCount = e.config.Lockout.MaxLoginAttempts
	if err := e.users.Save(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	if err := e.createSession(ctx, req, user, now); err != nil {
		return err
	}

	e.metricInc(MetricSessionCreated)
	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, origin, true, user.ID, req.Carrier.SessionID(), nil, func() map[string]string {
		return map[string]string{
			"username": user.Username,
		}
	})

	for _, hook := range e.postLogins {
		hook.PostLogin(ctx, user)
	}

	return nil
}

// lookupOrImport resolves the principal by username, consulting the ordered
// importer chain when no record exists.
func (e *Engine) lookupOrImport(ctx context.Context, req Request, username, pass, origin string) (UserRecord, error) {
	user, err := e.users.FindByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrPrincipalNotFound) {
		return UserRecord{}, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	imported := false
	for _, importer := range e.importers {
		if importer.ImportUser(ctx, username, pass) {
			imported = true
			break
		}
	}

	if imported {
		user, err = e.users.FindByUsername(ctx, username)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrPrincipalNotFound) {
			return UserRecord{}, fmt.Errorf("%w: %v", ErrStoreFailure, err)
		}
	}

	req.addError(e.config.Messages.InvalidLogin)
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, origin, false, "", "", ErrInvalidCredentials, func() map[string]string {
		return map[string]string{
			"username": username,
			"reason":   "principal_not_found",
		}
	})
	return UserRecord{}, ErrInvalidCredentials
}

// lockAccount enters the lock: stamps the lock time, reseeds the attempt
// counter, and notifies the administrative contact.
func (e *Engine) lockAccount(ctx context.Context, user UserRecord, now time.Time, origin string) error {
	user.Locked = now.Unix()
	user.LoginCount = e.config.Lockout.MaxLoginAttempts
	if err := e.users.Save(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	e.metricInc(MetricAccountLocked)
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventAccountLockout, origin, false, user.ID, "", ErrAccountLocked, func() map[string]string {
		return map[string]string{
			"username": user.Username,
		}
	})

	if e.config.Lockout.AdminEmail != "" && e.notifier != nil {
		// Notification is best-effort and must not abort the flow.
		if err := e.notifier.SendLockoutNotice(ctx, user, e.config.Lockout.LockPeriod); err != nil {
			log.Print("gatehouse: lockout notice delivery failed")
			e.emitAudit(ctx, auditEventLockoutNoticeFailed, origin, false, user.ID, "", nil, nil)
		}
	}

	return ErrAccountLocked
}

func (e *Engine) createSession(ctx context.Context, req Request, user UserRecord, now time.Time) error {
	cookieName := e.config.Session.CookieName
	sid := req.Carrier.SessionID()
	hash := session.BindingHash(sid, e.bindingIP(ctx), cookieName)

	rec := &session.Record{
		PrincipalID:  user.ID,
		SessionID:    sid,
		IP:           clientIPFromContext(ctx),
		CookieName:   cookieName,
		Hash:         hash,
		LastActivity: now.Unix(),
	}

	if err := e.sessions.Create(ctx, rec, e.config.Session.Timeout); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	req.Cookies.Set(cookieName, hash, now.Add(e.config.Session.Timeout), e.config.Cookie.Path)
	req.Carrier.SetAuthenticated(true)

	return nil
}

// surfaceStatusError picks the user-visible message for a non-Allowed
// status. The lock message is specific; a frontend login-flag refusal stays
// behind the generic text so the flag's existence is not probeable.
func (e *Engine) surfaceStatusError(req Request, status AccountStatus) {
	switch status.Decision {
	case DecisionLocked:
		minutes := int(math.Ceil(status.RetryAfter.Minutes()))
		req.addError(fmt.Sprintf(e.config.Messages.AccountLocked, minutes))
	case DecisionNotPermitted:
		req.addError(e.config.Messages.InvalidLogin)
	default:
		req.addError(e.config.Messages.InvalidLogin)
	}
}

func (e *Engine) statusMetadata(user UserRecord, status AccountStatus) map[string]string {
	meta := map[string]string{
		"username": user.Username,
	}

	switch status.Decision {
	case DecisionLocked:
		meta["retry_after"] = status.RetryAfter.Truncate(time.Second).String()
	case DecisionNotYetActive:
		meta["activation_date"] = status.ActivatesAt.Format(e.config.Messages.DateFormat)
	case DecisionExpired:
		meta["deactivation_date"] = status.ExpiredAt.Format(e.config.Messages.DateFormat)
	}

	return meta
}
