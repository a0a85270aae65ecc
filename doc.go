// Package gatehouse provides a server-side user authentication and
// session-management engine: credential verification with online migration
// from the legacy unsalted scheme, cookie-bound Redis-backed sessions tied
// to the client IP, and account lockout / activation-window policy.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. Per-request collaborators (cookie jar, session carrier,
// message surface) are passed as a [Request] value; the client IP travels on
// the context via [WithClientIP].
//
// # Architecture boundaries
//
// gatehouse is the public surface. It exposes [Engine], [Builder], [Config],
// the collaborator interfaces ([UserStore], [Notifier], the hook interfaces),
// and value types. Session persistence lives in the session subpackage; the
// credential verifier lives in the password subpackage; a pgx-backed
// [UserStore] implementation lives under userstore/postgres.
//
// # What this package must NOT do
//
//   - Re-check account status during [Engine.Authenticate]. Only
//     [Engine.Login] consults the lock/disable/activity-window state; a
//     session opened before an account was disabled lives until the session
//     timeout. This is a deliberate tradeoff that keeps the per-request path
//     to a single session-store round-trip.
//   - Reveal which login check failed to the end user. Credential-path
//     failures all surface the generic invalid-login message; only lock,
//     disable, and activity-window failures are specific. The audit stream
//     carries the distinction.
package gatehouse
