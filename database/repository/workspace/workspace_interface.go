package workspaceRepo

import (
	"memorybook/models"

	"go.mongodb.org/mongo-driver/bson"
)

// WorkspaceRepository defines access to the singleton workspace record.
// All writes are merge writes: fields not named in the update document
// are never touched, so concurrent writers only collide at the
// granularity of the field groups they actually change.
type WorkspaceRepository interface {
	// GetByID retrieves the workspace. Returns (nil, nil) when the
	// document does not exist yet; absence is a distinct state, not
	// an error.
	GetByID(id string) (*models.Workspace, error)
	// EnsureWorkspace creates the workspace with the given seed state
	// if it does not exist, and returns the stored document either
	// way. Safe under concurrent first access: the insert happens at
	// most once.
	EnsureWorkspace(seed *models.Workspace) (*models.Workspace, error)
	// MergeSet merge-writes the given fields onto the workspace.
	MergeSet(id string, updateDoc bson.M) error
}
