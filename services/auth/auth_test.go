package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"memorybook/models"
	"memorybook/services/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// fakeUserRepo is an in-memory UserRepository that records every merge
// write so tests can assert on exactly which fields were touched.
type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[string]*models.User
	setCalls []bson.M
	history  []models.LoginEntry
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, assert.AnError
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Create(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) UpdateSetDocument(id string, doc bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setCalls = append(r.setCalls, doc)
	u, ok := r.users[id]
	if !ok {
		return assert.AnError
	}
	if v, ok := doc["session_expiry"]; ok {
		if v == nil {
			u.SessionExpiry = nil
		} else if e, ok := v.(int64); ok {
			u.SessionExpiry = &e
		}
	}
	if v, ok := doc["email_verified_at"].(time.Time); ok {
		u.EmailVerifiedAt = &v
	}
	if v, ok := doc["login_token_used"].(bool); ok {
		u.LoginTokenUsed = v
	}
	return nil
}

func (r *fakeUserRepo) UnsetFields(id string, fields ...string) error { return nil }

func (r *fakeUserRepo) AppendLoginHistory(id string, entry models.LoginEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, entry)
	return nil
}

func (r *fakeUserRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

// lastSet returns the most recent merge write, or nil.
func (r *fakeUserRepo) lastSet() bson.M {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.setCalls) == 0 {
		return nil
	}
	return r.setCalls[len(r.setCalls)-1]
}

// fakeProvider is a scripted identity.Provider. It counts credential
// checks so tests can prove the allow-list gate runs first.
type fakeProvider struct {
	mu         sync.Mutex
	idents     map[string]*identity.Identity // keyed by email
	password   string
	authCalls  int
	emailsSent int
	signOuts   int
	listeners  []identity.Listener
}

func newFakeProvider(password string, idents ...*identity.Identity) *fakeProvider {
	p := &fakeProvider{idents: make(map[string]*identity.Identity), password: password}
	for _, id := range idents {
		p.idents[id.Email] = id
	}
	return p
}

func (p *fakeProvider) Authenticate(ctx context.Context, email, password string) (*identity.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authCalls++
	ident, ok := p.idents[email]
	if !ok || password != p.password {
		return nil, identity.ErrBadCredentials
	}
	cp := *ident
	return &cp, nil
}

func (p *fakeProvider) Reload(ctx context.Context, ident *identity.Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if stored, ok := p.idents[ident.Email]; ok {
		ident.EmailVerified = stored.EmailVerified
	}
	return nil
}

func (p *fakeProvider) SendVerificationEmail(ctx context.Context, ident *identity.Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emailsSent++
	return nil
}

func (p *fakeProvider) SignOut(ctx context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signOuts++
	return nil
}

func (p *fakeProvider) Register(ctx context.Context, email, password string) (*identity.Identity, error) {
	ident := &identity.Identity{UID: "reg-" + email, Email: email}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idents[email] = ident
	return ident, nil
}

func (p *fakeProvider) ObserveAuthState(l identity.Listener) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, l)
	return func() {}
}

// notify pushes an auth-state change to all subscribers, the way the
// real provider does after its own state transitions.
func (p *fakeProvider) notify(ident *identity.Identity) {
	p.mu.Lock()
	ls := append([]identity.Listener{}, p.listeners...)
	p.mu.Unlock()
	for _, l := range ls {
		l(ident)
	}
}

func (p *fakeProvider) counts() (auth, emails, signOuts int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.authCalls, p.emailsSent, p.signOuts
}

const testSessionDuration = time.Hour

func newTestService(repo *fakeUserRepo, provider *fakeProvider, allowed []string, now time.Time) *DefaultAuthService {
	s := NewDefaultAuthService(repo, provider, allowed, testSessionDuration, nil)
	s.Now = func() time.Time { return now }
	return s
}

func TestSignInRejectsUnlistedEmailBeforeCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	provider := newFakeProvider("secret")
	svc := newTestService(repo, provider, []string{"alice@example.com"}, time.Now())
	defer svc.Close()

	_, err := svc.SignIn(context.Background(), "mallory@example.com", "secret", "ua")
	require.ErrorIs(t, err, ErrNotAuthorized)

	// The provider must never have seen the password.
	authCalls, _, _ := provider.counts()
	assert.Equal(t, 0, authCalls)
	assert.False(t, svc.IsSessionValid())
}

func TestSignInInvalidCredentials(t *testing.T) {
	verifiedAt := time.Now()
	user := &models.User{ID: "u1", Email: "alice@example.com", EmailVerifiedAt: &verifiedAt}
	repo := newFakeUserRepo(user)
	provider := newFakeProvider("secret", &identity.Identity{UID: "u1", Email: "alice@example.com", EmailVerified: true})
	svc := newTestService(repo, provider, []string{"alice@example.com"}, time.Now())
	defer svc.Close()

	_, err := svc.SignIn(context.Background(), "alice@example.com", "wrong", "ua")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, svc.IsSessionValid())
}

func TestSignInUnverifiedQueuesOneEmailAndOpensNoSession(t *testing.T) {
	user := &models.User{ID: "u1", Email: "alice@example.com"}
	repo := newFakeUserRepo(user)
	provider := newFakeProvider("secret", &identity.Identity{UID: "u1", Email: "alice@example.com", EmailVerified: false})
	svc := newTestService(repo, provider, []string{"alice@example.com"}, time.Now())
	defer svc.Close()

	_, err := svc.SignIn(context.Background(), "alice@example.com", "secret", "ua")
	require.ErrorIs(t, err, ErrEmailVerificationRequired)

	_, emails, signOuts := provider.counts()
	assert.Equal(t, 1, emails, "exactly one verification email per failed attempt")
	assert.Equal(t, 1, signOuts, "provider session must be terminated")
	assert.False(t, svc.IsSessionValid())
	assert.Nil(t, svc.SessionExpiry())
}

func TestSignInVerifiedOpensSessionOfConfiguredDuration(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	verifiedAt := now.Add(-24 * time.Hour)
	user := &models.User{ID: "u1", Email: "alice@example.com", EmailVerifiedAt: &verifiedAt}
	repo := newFakeUserRepo(user)
	provider := newFakeProvider("secret", &identity.Identity{UID: "u1", Email: "alice@example.com", EmailVerified: true})
	svc := newTestService(repo, provider, []string{"alice@example.com"}, now)
	defer svc.Close()

	resp, err := svc.SignIn(context.Background(), "alice@example.com", "secret", "test-agent")
	require.NoError(t, err)

	wantExpiry := now.Add(testSessionDuration).UnixMilli()
	assert.Equal(t, wantExpiry, resp.SessionExpiry)
	assert.Equal(t, "u1", resp.ID)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, svc.IsSessionValid())

	// The persisted write is a merge: only session fields are named.
	last := repo.lastSet()
	require.NotNil(t, last)
	assert.Equal(t, wantExpiry, last["session_expiry"])
	assert.NotContains(t, last, "login_history")

	require.Len(t, repo.history, 1)
	assert.Equal(t, "test-agent", repo.history[0].UserAgent)
}

func TestSignOutIsIdempotent(t *testing.T) {
	now := time.Now()
	verifiedAt := now
	user := &models.User{ID: "u1", Email: "alice@example.com", EmailVerifiedAt: &verifiedAt}
	repo := newFakeUserRepo(user)
	provider := newFakeProvider("secret", &identity.Identity{UID: "u1", Email: "alice@example.com", EmailVerified: true})
	svc := newTestService(repo, provider, []string{"alice@example.com"}, now)
	defer svc.Close()

	_, err := svc.SignIn(context.Background(), "alice@example.com", "secret", "ua")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(context.Background()))
	assert.False(t, svc.IsSessionValid())

	last := repo.lastSet()
	require.NotNil(t, last)
	assert.Nil(t, last["session_expiry"])
	assert.Contains(t, last, "last_logout")

	writes := len(repo.setCalls)
	// A second sign-out has no session to clear and writes nothing.
	require.NoError(t, svc.SignOut(context.Background()))
	assert.Equal(t, writes, len(repo.setCalls))
}

func TestWatcherSignsOutExpiredSession(t *testing.T) {
	verifiedAt := time.Now()
	user := &models.User{ID: "u1", Email: "alice@example.com", EmailVerifiedAt: &verifiedAt}
	repo := newFakeUserRepo(user)
	provider := newFakeProvider("secret", &identity.Identity{UID: "u1", Email: "alice@example.com", EmailVerified: true})

	svc := NewDefaultAuthService(repo, provider, []string{"alice@example.com"}, 30*time.Millisecond, nil)
	svc.CheckInterval = 10 * time.Millisecond
	defer svc.Close()

	_, err := svc.SignIn(context.Background(), "alice@example.com", "secret", "ua")
	require.NoError(t, err)
	require.True(t, svc.IsSessionValid())

	// Within a few intervals past expiry the watcher must have cleared
	// the session and persisted the sign-out.
	assert.Eventually(t, func() bool {
		return !svc.IsSessionValid() && svc.SessionExpiry() == nil
	}, time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		last := repo.lastSet()
		if last == nil {
			return false
		}
		v, ok := last["session_expiry"]
		return ok && v == nil
	}, time.Second, 5*time.Millisecond)
}

func TestRegisterGatedByAllowList(t *testing.T) {
	repo := newFakeUserRepo()
	provider := newFakeProvider("secret")
	svc := newTestService(repo, provider, []string{"alice@example.com"}, time.Now())
	defer svc.Close()

	err := svc.Register(context.Background(), "mallory@example.com", "pw")
	require.ErrorIs(t, err, ErrNotAuthorized)

	require.NoError(t, svc.Register(context.Background(), "alice@example.com", "pw"))
	_, emails, _ := provider.counts()
	assert.Equal(t, 1, emails)
}
