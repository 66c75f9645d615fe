package images_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsnap/catalog-crawler/internal/images"
)

func TestNewLocalSink(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		sink, err := images.NewLocalSink(images.LocalConfig{BaseDir: t.TempDir()})
		require.NoError(t, err)
		assert.NotNil(t, sink)
	})

	t.Run("MissingBaseDir", func(t *testing.T) {
		_, err := images.NewLocalSink(images.LocalConfig{})
		assert.Error(t, err)
	})

	t.Run("CreatesMissingDirectory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "images")
		_, err := images.NewLocalSink(images.LocalConfig{BaseDir: dir})
		require.NoError(t, err)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestLocalSinkStore(t *testing.T) {
	dir := t.TempDir()
	sink, err := images.NewLocalSink(images.LocalConfig{BaseDir: dir})
	require.NoError(t, err)

	t.Run("WritesAndReturnsRef", func(t *testing.T) {
		ref, err := sink.Store(context.Background(), []byte("jpeg-bytes"), "abc123.jpg")
		require.NoError(t, err)
		assert.Equal(t, "file://"+filepath.Join(dir, "abc123.jpg"), ref)

		data, err := os.ReadFile(filepath.Join(dir, "abc123.jpg"))
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), data)
	})

	t.Run("ExistingObjectNotRewritten", func(t *testing.T) {
		path := filepath.Join(dir, "keep.jpg")
		require.NoError(t, os.WriteFile(path, []byte("original"), 0o600))

		ref, err := sink.Store(context.Background(), []byte("replacement"), "keep.jpg")
		require.NoError(t, err)
		assert.Equal(t, "file://"+path, ref)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("original"), data)
	})

	t.Run("EmptyName", func(t *testing.T) {
		_, err := sink.Store(context.Background(), []byte("x"), "")
		assert.Error(t, err)
	})

	t.Run("PathTraversal", func(t *testing.T) {
		_, err := sink.Store(context.Background(), []byte("x"), "../escape.jpg")
		assert.Error(t, err)
	})
}
