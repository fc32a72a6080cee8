// models/user.go
package models

import "time"

// User represents a journal member. Credentials live with the identity
// provider; this record carries the session and verification state the
// rest of the system keys off.
type User struct {
	ID           string `bson:"id" json:"id"`
	Email        string `bson:"email" json:"email"`
	PasswordHash string `bson:"password_hash" json:"-"`

	// EmailVerifiedAt is set exactly once, when a login verification
	// link is consumed. Nil means the member has never verified.
	EmailVerifiedAt *time.Time `bson:"email_verified_at,omitempty" json:"emailVerifiedAt,omitempty"`

	// SessionExpiry is epoch milliseconds. A session is valid iff this
	// is non-nil and strictly in the future.
	SessionExpiry *int64 `bson:"session_expiry,omitempty" json:"sessionExpiry,omitempty"`

	// Single-use login verification token state.
	LoginToken       string `bson:"login_token,omitempty" json:"-"`
	LoginTokenExpiry int64  `bson:"login_token_expiry,omitempty" json:"-"`
	LoginTokenUsed   bool   `bson:"login_token_used,omitempty" json:"-"`

	// LoginHistory is append-only and retained in full; consumers
	// display only the most recent entries.
	LoginHistory []LoginEntry `bson:"login_history,omitempty" json:"loginHistory,omitempty"`

	WorkspaceID string     `bson:"workspace_id,omitempty" json:"workspaceId,omitempty"`
	FCMToken    string     `bson:"fcm_token,omitempty" json:"-"`
	LastLogin   *time.Time `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	LastLogout  *time.Time `bson:"last_logout,omitempty" json:"lastLogout,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// LoginEntry is a single successful sign-in.
type LoginEntry struct {
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	UserAgent string    `bson:"user_agent" json:"userAgent"`
}
