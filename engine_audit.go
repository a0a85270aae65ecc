package gatehouse

import (
	"context"
	"errors"
)

const (
	auditEventLoginSuccess        = "login_success"
	auditEventLoginFailure        = "login_failure"
	auditEventAccountLockout      = "account_lockout"
	auditEventPasswordMigrated    = "password_migrated"
	auditEventAuthenticateSuccess = "authenticate_success"
	auditEventAuthenticateFailure = "authenticate_failure"
	auditEventLogout              = "logout"
	auditEventLockoutNoticeFailed = "lockout_notice_failed"
)

// AuditErrorCode defines a public type used by gatehouse APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrAccountLocked      AuditErrorCode = "account_locked"
	auditErrAccountDisabled    AuditErrorCode = "account_disabled"
	auditErrAccountNotActive   AuditErrorCode = "account_not_active"
	auditErrLoginNotPermitted  AuditErrorCode = "login_not_permitted"
	auditErrSessionNotFound    AuditErrorCode = "session_not_found"
	auditErrSessionMismatch    AuditErrorCode = "session_mismatch"
	auditErrPrincipalNotFound  AuditErrorCode = "principal_not_found"
	auditErrStoreFailure       AuditErrorCode = "store_failure"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	origin string,
	success bool,
	principalID string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:   e.now().UTC(),
		EventType:   eventType,
		Origin:      origin,
		Category:    CategoryAccess,
		PrincipalID: principalID,
		SessionID:   sessionID,
		IP:          clientIPFromContext(ctx),
		Success:     success,
		Metadata:    metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrAccountLocked):
		return auditErrAccountLocked
	case errors.Is(err, ErrAccountDisabled):
		return auditErrAccountDisabled
	case errors.Is(err, ErrAccountNotYetActive),
		errors.Is(err, ErrAccountExpired):
		return auditErrAccountNotActive
	case errors.Is(err, ErrLoginNotPermitted):
		return auditErrLoginNotPermitted
	case errors.Is(err, ErrSessionNotFound):
		return auditErrSessionNotFound
	case errors.Is(err, ErrSessionMismatch):
		return auditErrSessionMismatch
	case errors.Is(err, ErrPrincipalNotFound):
		return auditErrPrincipalNotFound
	case errors.Is(err, ErrStoreFailure):
		return auditErrStoreFailure
	default:
		return auditErrInternal
	}
}
