// models/content.go
package models

import "time"

// Content entities are flat collections keyed by foreign reference
// fields. They are read and written directly by presentation views;
// no invariants beyond the reference fields themselves.

// Location is a pin on the shared map.
type Location struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Lat       float64   `bson:"lat" json:"lat"`
	Lng       float64   `bson:"lng" json:"lng"`
	CreatedBy string    `bson:"created_by" json:"createdBy"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Album is a dated set of media attached to a location.
type Album struct {
	ID         string    `bson:"id" json:"id"`
	LocationID string    `bson:"location_id" json:"locationId"`
	Title      string    `bson:"title" json:"title"`
	Date       string    `bson:"date" json:"date"`
	CoverURL   string    `bson:"cover_url,omitempty" json:"coverUrl,omitempty"`
	CreatedBy  string    `bson:"created_by" json:"createdBy"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}

// Media is a single photo or video inside an album.
type Media struct {
	ID        string    `bson:"id" json:"id"`
	AlbumID   string    `bson:"album_id" json:"albumId"`
	Type      string    `bson:"type" json:"type"` // "image" or "video"
	PublicID  string    `bson:"public_id" json:"publicId"`
	URL       string    `bson:"url" json:"url"`
	Caption   string    `bson:"caption,omitempty" json:"caption,omitempty"`
	CreatedBy string    `bson:"created_by" json:"createdBy"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// MusicTrack is background music a member attached to an album.
type MusicTrack struct {
	ID        string    `bson:"id" json:"id"`
	AlbumID   string    `bson:"album_id,omitempty" json:"albumId,omitempty"`
	UserID    string    `bson:"user_id" json:"userId"`
	Title     string    `bson:"title" json:"title"`
	PublicID  string    `bson:"public_id" json:"publicId"`
	URL       string    `bson:"url" json:"url"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
