package miniostore

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzeefun/vzee/internal/model"
)

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError(minio.ErrorResponse{Code: "NoSuchKey"}), model.ErrObjectNotFound)
	assert.ErrorIs(t, mapError(minio.ErrorResponse{Code: "NoSuchBucket"}), model.ErrObjectNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, mapError(other))
}

// TestRoundTrip runs against a real endpoint when VZEE_TEST_MINIO_ENDPOINT is set
func TestRoundTrip(t *testing.T) {
	endpoint := os.Getenv("VZEE_TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("VZEE_TEST_MINIO_ENDPOINT not set")
	}

	ctx := context.Background()
	s, err := New(ctx, Config{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("VZEE_TEST_MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("VZEE_TEST_MINIO_SECRET_KEY"),
		Bucket:    "vzee-test",
	})
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "clips/roundtrip", strings.NewReader("abc"), 3, "audio/mpeg"))

	obj, err := s.Open(ctx, "clips/roundtrip")
	require.NoError(t, err)
	data, err := io.ReadAll(obj)
	_ = obj.Close()
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
	assert.Equal(t, "audio/mpeg", obj.ContentType)

	u, err := s.PresignGet(ctx, "clips/roundtrip", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u.String(), "clips/roundtrip")

	require.NoError(t, s.Delete(ctx, "clips/roundtrip"))
	_, err = s.Open(ctx, "clips/roundtrip")
	assert.ErrorIs(t, err, model.ErrObjectNotFound)
}
