package contentRepo

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

// MongoContentRepo implements ContentRepository using MongoDB.
type MongoContentRepo struct {
	locations *mongo.Collection
	albums    *mongo.Collection
	media     *mongo.Collection
	music     *mongo.Collection
}

// NewMongoContentRepo creates a new instance of ContentRepository using MongoDB.
func NewMongoContentRepo() ContentRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	repo := &MongoContentRepo{
		locations: db.Collection("locations"),
		albums:    db.Collection("albums"),
		media:     db.Collection("media"),
		music:     db.Collection("music"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoContentRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	type target struct {
		coll *mongo.Collection
		keys bson.D
	}
	targets := []target{
		{r.locations, bson.D{{Key: "id", Value: 1}}},
		{r.albums, bson.D{{Key: "location_id", Value: 1}}},
		{r.media, bson.D{{Key: "album_id", Value: 1}}},
		{r.music, bson.D{{Key: "user_id", Value: 1}}},
	}
	for _, t := range targets {
		if _, err := t.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: t.keys}); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func insertOne(coll *mongo.Collection, doc any) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", coll.Name(), err)
	}
	return nil
}

func deleteByID(coll *mongo.Collection, id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()
	result, err := coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s from %s: %w", id, coll.Name(), err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%s with id %s not found", coll.Name(), id)
	}
	return nil
}

func (r *MongoContentRepo) CreateLocation(loc *models.Location) error {
	loc.CreatedAt = time.Now()
	return insertOne(r.locations, loc)
}

func (r *MongoContentRepo) ListLocations() ([]models.Location, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.locations.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Location
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode locations: %w", err)
	}
	return out, nil
}

func (r *MongoContentRepo) DeleteLocation(id string) error {
	return deleteByID(r.locations, id)
}

func (r *MongoContentRepo) CreateAlbum(album *models.Album) error {
	album.CreatedAt = time.Now()
	return insertOne(r.albums, album)
}

func (r *MongoContentRepo) ListAlbumsByLocation(locationID string) ([]models.Album, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.albums.Find(ctx, bson.M{"location_id": locationID}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list albums for location %s: %w", locationID, err)
	}
	defer cursor.Close(ctx)

	var out []models.Album
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode albums: %w", err)
	}
	return out, nil
}

func (r *MongoContentRepo) DeleteAlbum(id string) error {
	return deleteByID(r.albums, id)
}

func (r *MongoContentRepo) CreateMedia(m *models.Media) error {
	m.CreatedAt = time.Now()
	return insertOne(r.media, m)
}

func (r *MongoContentRepo) ListMediaByAlbum(albumID string) ([]models.Media, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.media.Find(ctx, bson.M{"album_id": albumID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list media for album %s: %w", albumID, err)
	}
	defer cursor.Close(ctx)

	var out []models.Media
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode media: %w", err)
	}
	return out, nil
}

// DeleteMedia removes the record and returns it so the caller can also
// drop the backing blob.
func (r *MongoContentRepo) DeleteMedia(id string) (*models.Media, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var m models.Media
	if err := r.media.FindOneAndDelete(ctx, bson.M{"id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("media with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to delete media %s: %w", id, err)
	}
	return &m, nil
}

func (r *MongoContentRepo) CreateMusic(track *models.MusicTrack) error {
	track.CreatedAt = time.Now()
	return insertOne(r.music, track)
}

func (r *MongoContentRepo) ListMusicByUser(userID string) ([]models.MusicTrack, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.music.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list music for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var out []models.MusicTrack
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode music: %w", err)
	}
	return out, nil
}

func (r *MongoContentRepo) DeleteMusic(id string) (*models.MusicTrack, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var t models.MusicTrack
	if err := r.music.FindOneAndDelete(ctx, bson.M{"id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("music with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to delete music %s: %w", id, err)
	}
	return &t, nil
}
