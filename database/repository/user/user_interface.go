package userRepo

import (
	"memorybook/models"

	"go.mongodb.org/mongo-driver/bson"
)

// UserRepository defines methods for user record access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID. Absence is an error.
	GetByID(id string) (*models.User, error)
	// GetByEmail retrieves a user by its email address.
	// Returns (nil, nil) when no such user exists.
	GetByEmail(email string) (*models.User, error)
	// Create inserts a new user record.
	Create(user *models.User) error
	// UpdateSetDocument merge-writes the given fields onto the user
	// record, leaving all siblings untouched.
	UpdateSetDocument(id string, updateDoc bson.M) error
	// UnsetFields removes the named fields from the user record.
	UnsetFields(id string, fields ...string) error
	// AppendLoginHistory appends one entry to the user's login history.
	AppendLoginHistory(id string, entry models.LoginEntry) error
	// Delete removes a user record by its ID.
	Delete(id string) error
}
