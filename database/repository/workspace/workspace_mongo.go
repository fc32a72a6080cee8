package workspaceRepo

import (
	"context"
	"fmt"
	"time"

	"memorybook/database"
	"memorybook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoWorkspaceRepo implements WorkspaceRepository using MongoDB.
type MongoWorkspaceRepo struct {
	coll *mongo.Collection
}

// NewMongoWorkspaceRepo creates a new instance of WorkspaceRepository using MongoDB.
func NewMongoWorkspaceRepo() WorkspaceRepository {
	coll := database.MongoClient.Database(database.DatabaseName).Collection("workspaces")
	repo := &MongoWorkspaceRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoWorkspaceRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves the workspace document. Absence is (nil, nil).
func (r *MongoWorkspaceRepo) GetByID(id string) (*models.Workspace, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var ws models.Workspace
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&ws); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch workspace %s: %w", id, err)
	}
	return &ws, nil
}

// EnsureWorkspace upserts the seed document with $setOnInsert, so two
// concurrent first-access callers produce exactly one document. The
// unique index on "id" backs this up. Returns the stored document.
func (r *MongoWorkspaceRepo) EnsureWorkspace(seed *models.Workspace) (*models.Workspace, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	seed.CreatedAt = time.Now()
	update := bson.M{"$setOnInsert": seed}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var ws models.Workspace
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": seed.ID}, update, opts).Decode(&ws)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure workspace %s: %w", seed.ID, err)
	}
	return &ws, nil
}

// MergeSet merge-writes the given fields onto the workspace document.
func (r *MongoWorkspaceRepo) MergeSet(id string, updateDoc bson.M) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": updateDoc}
	filter := bson.M{"id": id}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update workspace %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("workspace %s not found", id)
	}
	return nil
}
