package content

import (
	"fmt"

	"memorybook/models"

	"github.com/google/uuid"
)

func (s *DefaultContentService) CreateLocation(name string, lat, lng float64, createdBy string) (*models.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("location name is required")
	}
	loc := &models.Location{
		ID:        uuid.NewString(),
		Name:      name,
		Lat:       lat,
		Lng:       lng,
		CreatedBy: createdBy,
	}
	if err := s.Repo.CreateLocation(loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *DefaultContentService) ListLocations() ([]models.Location, error) {
	return s.Repo.ListLocations()
}

func (s *DefaultContentService) DeleteLocation(id string) error {
	return s.Repo.DeleteLocation(id)
}

func (s *DefaultContentService) CreateAlbum(locationID, title, date, createdBy string) (*models.Album, error) {
	if locationID == "" {
		return nil, fmt.Errorf("album requires a location")
	}
	album := &models.Album{
		ID:         uuid.NewString(),
		LocationID: locationID,
		Title:      title,
		Date:       date,
		CreatedBy:  createdBy,
	}
	if err := s.Repo.CreateAlbum(album); err != nil {
		return nil, err
	}
	return album, nil
}

func (s *DefaultContentService) ListAlbums(locationID string) ([]models.Album, error) {
	return s.Repo.ListAlbumsByLocation(locationID)
}

func (s *DefaultContentService) DeleteAlbum(id string) error {
	return s.Repo.DeleteAlbum(id)
}

func (s *DefaultContentService) AddMedia(albumID, mediaType, publicID, url, caption, createdBy string) (*models.Media, error) {
	if albumID == "" {
		return nil, fmt.Errorf("media requires an album")
	}
	if mediaType != "image" && mediaType != "video" {
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}
	m := &models.Media{
		ID:        uuid.NewString(),
		AlbumID:   albumID,
		Type:      mediaType,
		PublicID:  publicID,
		URL:       url,
		Caption:   caption,
		CreatedBy: createdBy,
	}
	if err := s.Repo.CreateMedia(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *DefaultContentService) ListMedia(albumID string) ([]models.Media, error) {
	return s.Repo.ListMediaByAlbum(albumID)
}

func (s *DefaultContentService) RemoveMedia(id string) (*models.Media, error) {
	return s.Repo.DeleteMedia(id)
}

func (s *DefaultContentService) AddMusic(albumID, userID, title, publicID, url string) (*models.MusicTrack, error) {
	if userID == "" {
		return nil, fmt.Errorf("music requires an owner")
	}
	t := &models.MusicTrack{
		ID:       uuid.NewString(),
		AlbumID:  albumID,
		UserID:   userID,
		Title:    title,
		PublicID: publicID,
		URL:      url,
	}
	if err := s.Repo.CreateMusic(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *DefaultContentService) ListMusic(userID string) ([]models.MusicTrack, error) {
	return s.Repo.ListMusicByUser(userID)
}

func (s *DefaultContentService) RemoveMusic(id string) (*models.MusicTrack, error) {
	return s.Repo.DeleteMusic(id)
}
