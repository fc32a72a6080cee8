package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"memorybook/models"
	"memorybook/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type stubUserRepo struct {
	user *models.User
}

func (r *stubUserRepo) GetByID(id string) (*models.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, assert.AnError
}
func (r *stubUserRepo) GetByEmail(email string) (*models.User, error)              { return nil, nil }
func (r *stubUserRepo) Create(u *models.User) error                                { return nil }
func (r *stubUserRepo) UpdateSetDocument(id string, doc bson.M) error              { return nil }
func (r *stubUserRepo) UnsetFields(id string, fields ...string) error              { return nil }
func (r *stubUserRepo) AppendLoginHistory(id string, e models.LoginEntry) error    { return nil }
func (r *stubUserRepo) Delete(id string) error                                     { return nil }

func newGuardedRouter(repo *stubUserRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", SessionAuthMiddleware(repo), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.GetString("userID")})
	})
	return r
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func withMirrorClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	prev := utils.SessionCacheClient
	utils.SessionCacheClient = client
	t.Cleanup(func() {
		utils.SessionCacheClient = prev
		client.Close()
	})
	return client
}

func TestSessionAuthRejectsMissingOrGarbageToken(t *testing.T) {
	r := newGuardedRouter(&stubUserRepo{})

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "not-a-token").Code)
}

func TestSessionAuthMirrorBindsToIssuedToken(t *testing.T) {
	client := withMirrorClient(t)
	r := newGuardedRouter(&stubUserRepo{})

	issued, err := utils.GenerateToken("u1", "alice@example.com", time.Hour)
	require.NoError(t, err)
	// A second token for the same user, valid on its own but not the
	// one this session was opened with.
	stale, err := utils.GenerateToken("u1", "alice@example.com", 2*time.Hour)
	require.NoError(t, err)
	require.NotEqual(t, issued, stale)

	require.NoError(t, utils.SaveSessionMirror(client, utils.SessionMirror{
		UserID:    "u1",
		Email:     "alice@example.com",
		TokenHash: utils.HashToken(issued),
		ExpiresAt: time.Now().Add(time.Hour).UnixMilli(),
	}))

	assert.Equal(t, http.StatusOK, get(r, issued).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, stale).Code,
		"only the token that opened the session is admitted")
}

func TestSessionAuthMirrorWithoutHashAdmitsAnyValidToken(t *testing.T) {
	client := withMirrorClient(t)
	r := newGuardedRouter(&stubUserRepo{})

	token, err := utils.GenerateToken("u1", "alice@example.com", time.Hour)
	require.NoError(t, err)

	// Sessions adopted by reconciliation are mirrored without a token
	// hash; the gate then checks expiry alone.
	require.NoError(t, utils.SaveSessionMirror(client, utils.SessionMirror{
		UserID:    "u1",
		Email:     "alice@example.com",
		ExpiresAt: time.Now().Add(time.Hour).UnixMilli(),
	}))

	assert.Equal(t, http.StatusOK, get(r, token).Code)
}

func TestSessionAuthFallsBackToStoredExpiry(t *testing.T) {
	prev := utils.SessionCacheClient
	utils.SessionCacheClient = nil
	t.Cleanup(func() { utils.SessionCacheClient = prev })

	token, err := utils.GenerateToken("u1", "alice@example.com", time.Hour)
	require.NoError(t, err)

	live := time.Now().Add(30 * time.Minute).UnixMilli()
	r := newGuardedRouter(&stubUserRepo{user: &models.User{ID: "u1", SessionExpiry: &live}})
	assert.Equal(t, http.StatusOK, get(r, token).Code)

	expired := time.Now().Add(-time.Minute).UnixMilli()
	r = newGuardedRouter(&stubUserRepo{user: &models.User{ID: "u1", SessionExpiry: &expired}})
	assert.Equal(t, http.StatusUnauthorized, get(r, token).Code)

	r = newGuardedRouter(&stubUserRepo{user: &models.User{ID: "u1"}})
	assert.Equal(t, http.StatusUnauthorized, get(r, token).Code,
		"a signed-out record has no session to admit")
}
