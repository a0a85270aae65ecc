package gatehouse

import "errors"

var (
	// ErrInvalidCredentials is an exported constant or variable used by the authentication engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked is an exported constant or variable used by the authentication engine.
	ErrAccountLocked = errors.New("account locked")
	// ErrAccountDisabled is an exported constant or variable used by the authentication engine.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrAccountNotYetActive is an exported constant or variable used by the authentication engine.
	ErrAccountNotYetActive = errors.New("account not active yet")
	// ErrAccountExpired is an exported constant or variable used by the authentication engine.
	ErrAccountExpired = errors.New("account not active anymore")
	// ErrLoginNotPermitted is an exported constant or variable used by the authentication engine.
	ErrLoginNotPermitted = errors.New("login not permitted")
	// ErrSessionNotFound is an exported constant or variable used by the authentication engine.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionMismatch is an exported constant or variable used by the authentication engine.
	ErrSessionMismatch = errors.New("session mismatch")
	// ErrPrincipalNotFound is an exported constant or variable used by the authentication engine.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrStoreFailure is an exported constant or variable used by the authentication engine.
	ErrStoreFailure = errors.New("store failure")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
