package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Without a configured blob backend the storage endpoints stay
// registered but answer 503; they must never dereference the missing
// service.
func TestStorageEndpointsUnavailableWithoutBackend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	prev := StorageSvc
	StorageSvc = nil
	t.Cleanup(func() { StorageSvc = prev })

	r := gin.New()
	r.POST("/api/storage/upload/:bucket", UploadFileHandler)
	r.GET("/api/storage/download/:type", GetSecureDownloadURLHandler)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "photo.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/storage/upload/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "media storage unavailable")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/storage/download/image?publicId=x", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "media storage unavailable")
}
