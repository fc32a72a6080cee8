package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	userRepo "memorybook/database/repository/user"
	"memorybook/models"
	"memorybook/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrBadCredentials is returned for an unknown email or a wrong
// password; callers must not be able to tell the two apart.
var ErrBadCredentials = errors.New("invalid email or password")

// LocalProvider implements Provider over the user collection with
// bcrypt credential hashes.
type LocalProvider struct {
	Repo userRepo.UserRepository
	// BaseURL is the public origin verification links point at.
	BaseURL string
	// TokenTTL bounds login-token validity.
	TokenTTL time.Duration
	// EnqueueEmail hands the rendered link off for delivery
	// (asynchronous, best effort).
	EnqueueEmail func(email, link string) error

	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
}

func NewLocalProvider(repo userRepo.UserRepository, baseURL string, tokenTTL time.Duration, enqueue func(email, link string) error) *LocalProvider {
	return &LocalProvider{
		Repo:         repo,
		BaseURL:      baseURL,
		TokenTTL:     tokenTTL,
		EnqueueEmail: enqueue,
		listeners:    make(map[int]Listener),
	}
}

func identityOf(u *models.User) *Identity {
	return &Identity{
		UID:           u.ID,
		Email:         u.Email,
		EmailVerified: u.EmailVerifiedAt != nil,
	}
}

// Authenticate verifies the credential pair. Both unknown-email and
// wrong-password collapse into ErrBadCredentials.
func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	u, err := p.Repo.GetByEmail(email)
	if err != nil {
		utils.GetLogger().Error("Authenticate: failed to fetch user", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	if u == nil {
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}

	ident := identityOf(u)
	p.notify(ident)
	return ident, nil
}

// Reload re-reads the stored record so the verification flag reflects
// an out-of-band verification that happened after Authenticate.
func (p *LocalProvider) Reload(ctx context.Context, ident *Identity) error {
	u, err := p.Repo.GetByID(ident.UID)
	if err != nil {
		return fmt.Errorf("failed to reload identity %s: %w", ident.UID, err)
	}
	ident.Email = u.Email
	ident.EmailVerified = u.EmailVerifiedAt != nil
	return nil
}

// SendVerificationEmail mints a fresh single-use token, persists it on
// the user record (replacing any earlier token), and queues the link
// for delivery.
func (p *LocalProvider) SendVerificationEmail(ctx context.Context, ident *Identity) error {
	token := uuid.NewString()
	expiry := time.Now().Add(p.TokenTTL).UnixMilli()

	err := p.Repo.UpdateSetDocument(ident.UID, bson.M{
		"login_token":        token,
		"login_token_expiry": expiry,
		"login_token_used":   false,
	})
	if err != nil {
		return fmt.Errorf("failed to issue login token for %s: %w", ident.UID, err)
	}

	link := fmt.Sprintf("%s/verify-login?uid=%s&token=%s",
		p.BaseURL, url.QueryEscape(ident.UID), url.QueryEscape(token))

	if p.EnqueueEmail != nil {
		if err := p.EnqueueEmail(ident.Email, link); err != nil {
			return fmt.Errorf("failed to queue verification email for %s: %w", ident.Email, err)
		}
	}
	utils.GetLogger().Sugar().Infof("Queued verification email for %s", ident.Email)
	return nil
}

// SignOut ends the provider-side session and notifies observers.
func (p *LocalProvider) SignOut(ctx context.Context, uid string) error {
	p.notify(nil)
	return nil
}

// Register creates a new account. The address still has to pass the
// allow-list and verification gates before it can do anything.
func (p *LocalProvider) Register(ctx context.Context, email, password string) (*Identity, error) {
	existing, err := p.Repo.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("registration failed, please try again")
	}
	if existing != nil {
		return nil, fmt.Errorf("an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := p.Repo.Create(u); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return identityOf(u), nil
}

// ObserveAuthState registers a listener for auth state changes.
func (p *LocalProvider) ObserveAuthState(l Listener) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = l
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *LocalProvider) notify(ident *Identity) {
	p.mu.Lock()
	ls := make([]Listener, 0, len(p.listeners))
	for _, l := range p.listeners {
		ls = append(ls, l)
	}
	p.mu.Unlock()

	for _, l := range ls {
		l(ident)
	}
}
