package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzeefun/vzee/internal/model"
)

func TestPutOpenDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Put(ctx, "clips/a", strings.NewReader("abc"), 3, "audio/mpeg"))
	assert.Equal(t, 1, s.Len())

	obj, err := s.Open(ctx, "clips/a")
	require.NoError(t, err)
	defer obj.Close()

	data, err := io.ReadAll(obj)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
	assert.Equal(t, "audio/mpeg", obj.ContentType)
	assert.Equal(t, int64(3), obj.Size)

	require.NoError(t, s.Delete(ctx, "clips/a"))
	_, err = s.Open(ctx, "clips/a")
	assert.ErrorIs(t, err, model.ErrObjectNotFound)

	// Deleting again is fine
	assert.NoError(t, s.Delete(ctx, "clips/a"))
}

func TestPutReadsWholeBody(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(context.Background(), "clips/a", strings.NewReader("abcdef"), 3, "audio/mpeg"))

	obj, err := s.Open(context.Background(), "clips/a")
	require.NoError(t, err)
	assert.Equal(t, int64(6), obj.Size)
}
