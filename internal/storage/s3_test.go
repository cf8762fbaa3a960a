package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dimitrije/capsule-api/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *S3Storage {
	t.Helper()
	s, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:      "http://localhost:9000",
		Region:        "us-east-1",
		Bucket:        "capsule-vault",
		AccessKey:     "minio",
		SecretKey:     "minio-secret",
		PresignExpiry: 5 * time.Minute,
	})
	require.NoError(t, err)
	return s
}

func TestPayloadKey(t *testing.T) {
	capsuleID := uuid.New()
	key := PayloadKey(capsuleID)

	assert.True(t, strings.HasPrefix(key, "capsules/"+capsuleID.String()+"/vault/"))
	assert.True(t, BelongsTo(key, capsuleID))
	assert.False(t, BelongsTo(key, uuid.New()))
	assert.NotEqual(t, key, PayloadKey(capsuleID))
}

func TestS3Storage_PresignPut(t *testing.T) {
	s := newTestStorage(t)
	key := PayloadKey(uuid.New())

	raw, err := s.PresignPut(context.Background(), key)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/capsule-vault/"+key, u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
}

func TestS3Storage_PresignGet(t *testing.T) {
	s := newTestStorage(t)
	key := PayloadKey(uuid.New())

	raw, err := s.PresignGet(context.Background(), key)
	require.NoError(t, err)
	assert.Contains(t, raw, "/capsule-vault/")
	assert.Contains(t, raw, "X-Amz-Signature=")
}

func TestNewS3Storage_DefaultExpiry(t *testing.T) {
	s, err := NewS3Storage(context.Background(), config.S3Config{
		Region:    "us-east-1",
		Bucket:    "b",
		AccessKey: "k",
		SecretKey: "s",
	})
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, s.Expiry())
}
