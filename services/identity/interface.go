package identity

import "context"

// Identity is the provider's view of an authenticated account.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
}

// Listener receives the current identity on every auth state change;
// nil means signed out.
type Listener func(ident *Identity)

// Provider is the narrow contract the session authority consumes.
// Credential storage and primary authentication are its concern alone.
type Provider interface {
	// Authenticate verifies the credential pair and returns the
	// identity, or ErrBadCredentials.
	Authenticate(ctx context.Context, email, password string) (*Identity, error)
	// Reload force-refreshes the identity's verification flag.
	Reload(ctx context.Context, ident *Identity) error
	// SendVerificationEmail issues a fresh single-use login token and
	// dispatches the verification link to the identity's address.
	SendVerificationEmail(ctx context.Context, ident *Identity) error
	// SignOut terminates the provider-side session for the account.
	SignOut(ctx context.Context, uid string) error
	// Register creates a new account with the given credentials.
	Register(ctx context.Context, email, password string) (*Identity, error)
	// ObserveAuthState registers a listener invoked on every state
	// change. The returned function unsubscribes it.
	ObserveAuthState(l Listener) (unsubscribe func())
}
