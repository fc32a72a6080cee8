package contentRepo

import "memorybook/models"

// ContentRepository covers the flat journal collections consumed
// directly by presentation views: map pins, albums, media, music.
// Entities reference each other through plain foreign-key fields.
type ContentRepository interface {
	CreateLocation(loc *models.Location) error
	ListLocations() ([]models.Location, error)
	DeleteLocation(id string) error

	CreateAlbum(album *models.Album) error
	ListAlbumsByLocation(locationID string) ([]models.Album, error)
	DeleteAlbum(id string) error

	CreateMedia(m *models.Media) error
	ListMediaByAlbum(albumID string) ([]models.Media, error)
	DeleteMedia(id string) (*models.Media, error)

	CreateMusic(track *models.MusicTrack) error
	ListMusicByUser(userID string) ([]models.MusicTrack, error)
	DeleteMusic(id string) (*models.MusicTrack, error)
}
