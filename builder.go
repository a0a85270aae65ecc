package gatehouse

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/schmanat/gatehouse/password"
	"github.com/schmanat/gatehouse/session"
)

// Builder defines a public type used by gatehouse APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	users    UserStore
	clock    Clock
	notifier Notifier

	importers   []UserImporter
	checkers    []CredentialChecker
	postLogins  []PostLoginHook
	postLogouts []PostLogoutHook

	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore describes the withuserstore operation and its observable behavior.
//
// WithUserStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

// WithClock describes the withclock operation and its observable behavior.
//
// WithClock does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithClock(clock Clock) *Builder {
	b.clock = clock
	return b
}

// WithNotifier describes the withnotifier operation and its observable behavior.
//
// WithNotifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// AddUserImporter appends an importer to the ordered chain consulted when a
// login names a principal no store record exists for.
func (b *Builder) AddUserImporter(imp UserImporter) *Builder {
	if imp != nil {
		b.importers = append(b.importers, imp)
	}
	return b
}

// AddCredentialChecker appends a checker to the ordered chain consulted when
// the stored digest rejects a submitted password.
func (b *Builder) AddCredentialChecker(c CredentialChecker) *Builder {
	if c != nil {
		b.checkers = append(b.checkers, c)
	}
	return b
}

// AddPostLoginHook appends a hook invoked after a fully successful login.
func (b *Builder) AddPostLoginHook(h PostLoginHook) *Builder {
	if h != nil {
		b.postLogins = append(b.postLogins, h)
	}
	return b
}

// AddPostLogoutHook appends a hook invoked after session teardown.
func (b *Builder) AddPostLogoutHook(h PostLogoutHook) *Builder {
	if h != nil {
		b.postLogouts = append(b.postLogouts, h)
	}
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	if b.users == nil {
		return nil, errors.New("user store required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine := &Engine{
		config:   cfg,
		users:    b.users,
		sessions: session.NewStore(b.redis, cfg.Session.RedisPrefix),
		verifier: password.NewVerifier(),
		notifier: b.notifier,

		importers:   b.importers,
		checkers:    b.checkers,
		postLogins:  b.postLogins,
		postLogouts: b.postLogouts,
	}

	engine.clock = b.clock
	if engine.clock == nil {
		engine.clock = systemClock{}
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
