package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"memorybook/services/storage"

	"github.com/gin-gonic/gin"
)

// StorageSvc is wired in main before the router starts.
var StorageSvc storage.StorageService

// allowedBuckets defines permitted buckets for file uploads.
var allowedBuckets = map[string]bool{
	"images": true,
	"videos": true,
	"music":  true,
}

// UploadFileHandler uploads a file into one of the allowed buckets and
// returns its permanent public ID plus a download URL.
func UploadFileHandler(c *gin.Context) {
	if StorageSvc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media storage unavailable"})
		return
	}

	bucket := c.Param("bucket")
	if !allowedBuckets[bucket] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bucket; allowed values are 'images', 'videos' and 'music'"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file not provided", "detail": err.Error()})
		return
	}

	tempDir := os.TempDir()
	tempFilePath := filepath.Join(tempDir, fileHeader.Filename)
	if err := c.SaveUploadedFile(fileHeader, tempFilePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file", "detail": err.Error()})
		return
	}
	defer os.Remove(tempFilePath)

	publicID, err := StorageSvc.UploadFile(c, tempFilePath, "memorybook/"+bucket)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload file", "detail": err.Error()})
		return
	}

	resourceType := "image"
	if bucket == "videos" || bucket == "music" {
		resourceType = "video"
	}
	downloadURL, err := StorageSvc.GetDownloadURL(c, resourceType, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to construct download URL", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"publicID":    publicID,
		"downloadURL": downloadURL,
	})
}

// GetSecureDownloadURLHandler generates a short-lived signed URL.
func GetSecureDownloadURLHandler(c *gin.Context) {
	if StorageSvc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media storage unavailable"})
		return
	}

	resourceType := c.Param("type")
	publicID := c.Query("publicId")
	if publicID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "publicId is required"})
		return
	}

	expiry := 15 * time.Minute
	if expStr := c.Query("expires"); expStr != "" {
		if exp, err := time.ParseDuration(expStr); err == nil {
			expiry = exp
		}
	}

	url, err := StorageSvc.GetSecureDownloadURL(c, resourceType, publicID, expiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate download URL", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadURL": url})
}
