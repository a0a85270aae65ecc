package gatehouse

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// PrincipalKind selects which kind of principal an [Engine] authenticates.
// Frontend engines additionally require the record's AllowLogin flag;
// backend engines ignore it.
type PrincipalKind uint8

const (
	// KindBackend is an exported constant or variable used by the authentication engine.
	KindBackend PrincipalKind = iota
	// KindFrontend is an exported constant or variable used by the authentication engine.
	KindFrontend
)

// UserRecord is the full principal record exchanged with the [UserStore].
// It carries the credential in the legacy "digest:salt" encoding (empty salt
// means the unsalted scheme, migrated in place on the next successful login),
// the lockout counters, and the activity window. Timestamps are Unix seconds;
// zero means unset.
type UserRecord struct {
	ID          string
	Username    string
	Password    string
	DisplayName string
	Language    string

	LoginCount int
	Locked     int64
	Disable    bool
	AllowLogin bool

	Start int64
	Stop  int64

	CurrentLogin int64
	LastLogin    int64

	// Groups is the serialized group-ID set, comma separated ("5,9").
	Groups string
}

// IsMemberOf reports whether groupID is numeric and present in the record's
// deserialized group set. Malformed or missing input returns false; it never
// fails.
func (u UserRecord) IsMemberOf(groupID string) bool {
	id, err := strconv.Atoi(strings.TrimSpace(groupID))
	if err != nil {
		return false
	}

	for _, part := range strings.Split(u.Groups, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if g, err := strconv.Atoi(part); err == nil && g == id {
			return true
		}
	}

	return false
}

// UserStore is the persistence collaborator for [UserRecord]. Lookups return
// [ErrPrincipalNotFound] when no record matches; any other error is treated
// as fatal to the current flow.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (UserRecord, error)
	FindByID(ctx context.Context, id string) (UserRecord, error)
	Save(ctx context.Context, u UserRecord) error
}

// Clock abstracts the time source so lockout and session-expiry decisions
// are testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// CookieJar abstracts inbound/outbound HTTP cookie handling for one request.
type CookieJar interface {
	Set(name, value string, expires time.Time, path string)
	Get(name string) (string, bool)
}

// SessionCarrier is the low-level request-session mechanism the binding hash
// is derived from. SessionID must be stable for the lifetime of the carrier;
// Destroy invalidates the underlying session.
type SessionCarrier interface {
	SessionID() string
	Destroy()
	SetAuthenticated(bool)
}

// Notifier delivers the administrative lockout notice. lockPeriod is how
// long the lock holds, for rendering in the notice body. Delivery is
// best-effort: failures are logged and never abort the login flow.
type Notifier interface {
	SendLockoutNotice(ctx context.Context, principal UserRecord, lockPeriod time.Duration) error
}

// Messenger is the user-visible message surface. AddError is fire-and-forget.
type Messenger interface {
	AddError(text string)
}

// UserImporter is consulted, in registration order, when a submitted username
// has no stored record. The first importer returning true ends the chain and
// triggers a re-lookup.
type UserImporter interface {
	ImportUser(ctx context.Context, username, password string) bool
}

// UserImporterFunc adapts a function to the [UserImporter] interface.
type UserImporterFunc func(ctx context.Context, username, password string) bool

// ImportUser describes the importuser operation and its observable behavior.
func (f UserImporterFunc) ImportUser(ctx context.Context, username, password string) bool {
	return f(ctx, username, password)
}

// CredentialChecker is consulted, in registration order, when the stored
// credential rejects the submission. The first checker returning true
// authenticates the principal.
type CredentialChecker interface {
	CheckCredentials(ctx context.Context, username, password string, principal UserRecord) bool
}

// CredentialCheckerFunc adapts a function to the [CredentialChecker] interface.
type CredentialCheckerFunc func(ctx context.Context, username, password string, principal UserRecord) bool

// CheckCredentials describes the checkcredentials operation and its observable behavior.
func (f CredentialCheckerFunc) CheckCredentials(ctx context.Context, username, password string, principal UserRecord) bool {
	return f(ctx, username, password, principal)
}

// PostLoginHook runs after a successful login, in registration order.
type PostLoginHook interface {
	PostLogin(ctx context.Context, principal UserRecord)
}

// PostLoginHookFunc adapts a function to the [PostLoginHook] interface.
type PostLoginHookFunc func(ctx context.Context, principal UserRecord)

// PostLogin describes the postlogin operation and its observable behavior.
func (f PostLoginHookFunc) PostLogin(ctx context.Context, principal UserRecord) {
	f(ctx, principal)
}

// PostLogoutHook runs after a logout, in registration order.
type PostLogoutHook interface {
	PostLogout(ctx context.Context, principal UserRecord)
}

// PostLogoutHookFunc adapts a function to the [PostLogoutHook] interface.
type PostLogoutHookFunc func(ctx context.Context, principal UserRecord)

// PostLogout describes the postlogout operation and its observable behavior.
func (f PostLogoutHookFunc) PostLogout(ctx context.Context, principal UserRecord) {
	f(ctx, principal)
}

// Request groups the per-request collaborators threaded through every engine
// operation. Cookies and Carrier are required; Messages may be nil, in which
// case user-visible messages are dropped.
type Request struct {
	Cookies  CookieJar
	Carrier  SessionCarrier
	Messages Messenger
}

func (r Request) addError(text string) {
	if r.Messages == nil || text == "" {
		return
	}
	r.Messages.AddError(text)
}
