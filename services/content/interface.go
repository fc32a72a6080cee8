package content

import (
	contentRepo "memorybook/database/repository/content"
	"memorybook/models"
)

// ContentService is the thin business layer over the journal's flat
// content collections. Views consume these directly; the entities
// carry no invariants beyond their reference fields.
type ContentService interface {
	CreateLocation(name string, lat, lng float64, createdBy string) (*models.Location, error)
	ListLocations() ([]models.Location, error)
	DeleteLocation(id string) error

	CreateAlbum(locationID, title, date, createdBy string) (*models.Album, error)
	ListAlbums(locationID string) ([]models.Album, error)
	DeleteAlbum(id string) error

	AddMedia(albumID, mediaType, publicID, url, caption, createdBy string) (*models.Media, error)
	ListMedia(albumID string) ([]models.Media, error)
	RemoveMedia(id string) (*models.Media, error)

	AddMusic(albumID, userID, title, publicID, url string) (*models.MusicTrack, error)
	ListMusic(userID string) ([]models.MusicTrack, error)
	RemoveMusic(id string) (*models.MusicTrack, error)
}

// DefaultContentService is the production implementation.
type DefaultContentService struct {
	Repo contentRepo.ContentRepository
}
