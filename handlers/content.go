package handlers

import (
	"net/http"

	"memorybook/services/content"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContentSvc is wired in main before the router starts.
var ContentSvc content.ContentService

// CreateLocationHandler pins a new location on the shared map.
func CreateLocationHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		Name string  `json:"name" binding:"required"`
		Lat  float64 `json:"lat"`
		Lng  float64 `json:"lng"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	loc, err := ContentSvc.CreateLocation(req.Name, req.Lat, req.Lng, c.GetString("userEmail"))
	if err != nil {
		logger.Error("Failed to create location", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create location"})
		return
	}
	c.JSON(http.StatusCreated, loc)
}

func ListLocationsHandler(c *gin.Context) {
	locs, err := ContentSvc.ListLocations()
	if err != nil {
		getLogger(c).Error("Failed to list locations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list locations"})
		return
	}
	c.JSON(http.StatusOK, locs)
}

func DeleteLocationHandler(c *gin.Context) {
	if err := ContentSvc.DeleteLocation(c.Param("id")); err != nil {
		getLogger(c).Error("Failed to delete location", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete location"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Location deleted"})
}

// CreateAlbumHandler adds an album under a location.
func CreateAlbumHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		LocationID string `json:"locationId" binding:"required"`
		Title      string `json:"title"`
		Date       string `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	album, err := ContentSvc.CreateAlbum(req.LocationID, req.Title, req.Date, c.GetString("userEmail"))
	if err != nil {
		logger.Error("Failed to create album", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create album"})
		return
	}
	c.JSON(http.StatusCreated, album)
}

func ListAlbumsHandler(c *gin.Context) {
	albums, err := ContentSvc.ListAlbums(c.Query("locationId"))
	if err != nil {
		getLogger(c).Error("Failed to list albums", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list albums"})
		return
	}
	c.JSON(http.StatusOK, albums)
}

func DeleteAlbumHandler(c *gin.Context) {
	if err := ContentSvc.DeleteAlbum(c.Param("id")); err != nil {
		getLogger(c).Error("Failed to delete album", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete album"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Album deleted"})
}

// AddMediaHandler records an uploaded photo or video under an album.
func AddMediaHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		AlbumID  string `json:"albumId" binding:"required"`
		Type     string `json:"type" binding:"required"`
		PublicID string `json:"publicId" binding:"required"`
		URL      string `json:"url"`
		Caption  string `json:"caption"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	m, err := ContentSvc.AddMedia(req.AlbumID, req.Type, req.PublicID, req.URL, req.Caption, c.GetString("userEmail"))
	if err != nil {
		logger.Error("Failed to add media", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, m)
}

func ListMediaHandler(c *gin.Context) {
	media, err := ContentSvc.ListMedia(c.Query("albumId"))
	if err != nil {
		getLogger(c).Error("Failed to list media", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list media"})
		return
	}
	c.JSON(http.StatusOK, media)
}

// DeleteMediaHandler removes the record and its blob.
func DeleteMediaHandler(c *gin.Context) {
	logger := getLogger(c)

	m, err := ContentSvc.RemoveMedia(c.Param("id"))
	if err != nil {
		logger.Error("Failed to delete media", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete media"})
		return
	}
	if m != nil && m.PublicID != "" && StorageSvc != nil {
		if err := StorageSvc.DeleteFile(c.Request.Context(), m.PublicID); err != nil {
			// The record is already gone; a stranded blob is logged, not fatal.
			logger.Warn("Failed to delete media blob", zap.String("publicID", m.PublicID), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Media deleted"})
}

// AddMusicHandler records an uploaded track for the signed-in member.
func AddMusicHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		AlbumID  string `json:"albumId"`
		Title    string `json:"title"`
		PublicID string `json:"publicId" binding:"required"`
		URL      string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	t, err := ContentSvc.AddMusic(req.AlbumID, c.GetString("userID"), req.Title, req.PublicID, req.URL)
	if err != nil {
		logger.Error("Failed to add music", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, t)
}

func ListMusicHandler(c *gin.Context) {
	tracks, err := ContentSvc.ListMusic(c.GetString("userID"))
	if err != nil {
		getLogger(c).Error("Failed to list music", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list music"})
		return
	}
	c.JSON(http.StatusOK, tracks)
}

func DeleteMusicHandler(c *gin.Context) {
	logger := getLogger(c)

	t, err := ContentSvc.RemoveMusic(c.Param("id"))
	if err != nil {
		logger.Error("Failed to delete music", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete music"})
		return
	}
	if t != nil && t.PublicID != "" && StorageSvc != nil {
		if err := StorageSvc.DeleteFile(c.Request.Context(), t.PublicID); err != nil {
			logger.Warn("Failed to delete music blob", zap.String("publicID", t.PublicID), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Track deleted"})
}
