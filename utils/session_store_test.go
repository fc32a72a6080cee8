package utils

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMirrorClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestSessionMirrorRoundTrip(t *testing.T) {
	_, client := newMirrorClient(t)

	mirror := SessionMirror{
		UserID:    "u1",
		Email:     "alice@example.com",
		ExpiresAt: time.Now().Add(time.Hour).UnixMilli(),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, SaveSessionMirror(client, mirror))

	got, err := GetSessionMirror(client, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, mirror.UserID, got.UserID)
	assert.Equal(t, mirror.Email, got.Email)
	assert.Equal(t, mirror.ExpiresAt, got.ExpiresAt)
}

func TestSessionMirrorMissingIsNil(t *testing.T) {
	_, client := newMirrorClient(t)

	got, err := GetSessionMirror(client, "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionMirrorRefusesExpired(t *testing.T) {
	_, client := newMirrorClient(t)

	mirror := SessionMirror{
		UserID:    "u1",
		Email:     "alice@example.com",
		ExpiresAt: time.Now().Add(-time.Minute).UnixMilli(),
	}
	err := SaveSessionMirror(client, mirror)
	require.Error(t, err)

	got, err := GetSessionMirror(client, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionMirrorExpiresWithSession(t *testing.T) {
	mr, client := newMirrorClient(t)

	mirror := SessionMirror{
		UserID:    "u1",
		Email:     "alice@example.com",
		ExpiresAt: time.Now().Add(30 * time.Second).UnixMilli(),
	}
	require.NoError(t, SaveSessionMirror(client, mirror))

	// Past the session expiry the key is gone on its own.
	mr.FastForward(31 * time.Second)

	got, err := GetSessionMirror(client, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteSessionMirror(t *testing.T) {
	_, client := newMirrorClient(t)

	mirror := SessionMirror{
		UserID:    "u1",
		Email:     "alice@example.com",
		ExpiresAt: time.Now().Add(time.Hour).UnixMilli(),
	}
	require.NoError(t, SaveSessionMirror(client, mirror))
	require.NoError(t, DeleteSessionMirror(client, "u1"))

	got, err := GetSessionMirror(client, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is not an error.
	assert.NoError(t, DeleteSessionMirror(client, "u1"))
}
