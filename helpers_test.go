package gatehouse

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/schmanat/gatehouse/password"
)

type mockUserStore struct {
	mu    sync.Mutex
	users map[string]UserRecord

	saveErr error
	findErr error
}

func newMockUserStore(users ...UserRecord) *mockUserStore {
	s := &mockUserStore{users: map[string]UserRecord{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *mockUserStore) FindByUsername(_ context.Context, username string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return UserRecord{}, s.findErr
	}
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return UserRecord{}, ErrPrincipalNotFound
}

func (s *mockUserStore) FindByID(_ context.Context, id string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return UserRecord{}, s.findErr
	}
	u, ok := s.users[id]
	if !ok {
		return UserRecord{}, ErrPrincipalNotFound
	}
	return u, nil
}

func (s *mockUserStore) Save(_ context.Context, u UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.users[u.ID] = u
	return nil
}

func (s *mockUserStore) get(t *testing.T, id string) UserRecord {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		t.Fatalf("user %q not in store", id)
	}
	return u
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(at time.Time) *fakeClock {
	return &fakeClock{now: at}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memoryCookieJar struct {
	mu      sync.Mutex
	values  map[string]string
	expires map[string]time.Time
}

func newMemoryCookieJar() *memoryCookieJar {
	return &memoryCookieJar{
		values:  map[string]string{},
		expires: map[string]time.Time{},
	}
}

func (j *memoryCookieJar) Set(name, value string, expires time.Time, _ string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.values[name] = value
	j.expires[name] = expires
}

func (j *memoryCookieJar) Get(name string) (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	v, ok := j.values[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

type recordingMessenger struct {
	mu       sync.Mutex
	messages []string
}

func (m *recordingMessenger) AddError(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, text)
}

func (m *recordingMessenger) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return ""
	}
	return m.messages[len(m.messages)-1]
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []UserRecord
	err  error
}

func (n *mockNotifier) SendLockoutNotice(_ context.Context, principal UserRecord, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, principal)
	return nil
}

func (n *mockNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type testRig struct {
	engine   *Engine
	store    *mockUserStore
	clock    *fakeClock
	jar      *memoryCookieJar
	carrier  *MemoryCarrier
	msgs     *recordingMessenger
	notifier *mockNotifier
}

func (r *testRig) request() Request {
	return Request{
		Cookies:  r.jar,
		Carrier:  r.carrier,
		Messages: r.msgs,
	}
}

func newTestEngine(t *testing.T, cfg Config, users ...UserRecord) *testRig {
	return newTestEngineWith(t, cfg, nil, users...)
}

func newTestEngineWith(t *testing.T, cfg Config, customize func(*Builder), users ...UserRecord) *testRig {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := newMockUserStore(users...)
	clock := newFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	notifier := &mockNotifier{}

	b := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserStore(store).
		WithClock(clock).
		WithNotifier(notifier)
	if customize != nil {
		customize(b)
	}

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testRig{
		engine:   engine,
		store:    store,
		clock:    clock,
		jar:      newMemoryCookieJar(),
		carrier:  NewMemoryCarrier(),
		msgs:     &recordingMessenger{},
		notifier: notifier,
	}
}

func sha1HexForTest(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func testUser(id, username, plaintext string) UserRecord {
	v := password.NewVerifier()
	stored, err := v.Generate(plaintext)
	if err != nil {
		panic(err)
	}
	return UserRecord{
		ID:         id,
		Username:   username,
		Password:   stored,
		LoginCount: 3,
		AllowLogin: true,
	}
}
