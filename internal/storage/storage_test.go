package storage

import (
	"context"
	"strings"
	"testing"

	"ironhouse/gym-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassImageKey(t *testing.T) {
	key, err := ClassImageKey("665f1c2b9d1e8a0012345678", "image/PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "classes/665f1c2b9d1e8a0012345678/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	other, err := ClassImageKey("665f1c2b9d1e8a0012345678", "image/png")
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestClassImageKey_RejectsNonImages(t *testing.T) {
	_, err := ClassImageKey("abc", "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedContentType)
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "", endpointURL("", true))
	assert.Equal(t, "https://minio:9000", endpointURL("minio:9000", true))
	assert.Equal(t, "http://minio:9000", endpointURL("minio:9000", false))
	assert.Equal(t, "http://localhost:9000", endpointURL("http://localhost:9000", true))
}

func TestS3Storage_PresignsLocally(t *testing.T) {
	fs, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		BucketName:      "gym",
	})
	require.NoError(t, err)

	url, err := fs.GeneratePresignedUploadURL(context.Background(), "classes/a/b.png", "image/png", 0)
	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost:9000/gym/classes/a/b.png")
	assert.Contains(t, url, "X-Amz-Signature=")

	url, err = fs.GeneratePresignedDownloadURL(context.Background(), "classes/a/b.png", 0)
	require.NoError(t, err)
	assert.Contains(t, url, "X-Amz-Expires=900")
}
