package auth

import "errors"

// Sign-in and verification failures are distinct, user-reportable
// conditions. None are retried internally.
var (
	// ErrNotAuthorized: the email is not on the allow-list. Raised
	// before any credential check so the response can never leak
	// which allow-listed addresses have valid passwords.
	ErrNotAuthorized = errors.New("this email is not authorized to access this site")

	// ErrInvalidCredentials: the identity provider rejected the pair.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailVerificationRequired: credentials are valid but the
	// email is unverified. Raising it has already triggered a
	// verification-email send and terminated the provider session.
	ErrEmailVerificationRequired = errors.New("email not verified. A verification email has been sent. Please verify your email and try again")

	// Verification-link consumption failures, mutually exclusive.
	ErrInvalidLink     = errors.New("invalid verification link")
	ErrLinkExpired     = errors.New("verification link has expired. Please log in again")
	ErrLinkAlreadyUsed = errors.New("this verification link has already been used")
)
