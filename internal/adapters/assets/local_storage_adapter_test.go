package assets_adapter

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"listing-service/internal/core/domain"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSaveBoundsLongEdge(t *testing.T) {
	dir := t.TempDir()
	adapter, err := NewLocalStorageAdapter(dir, "http://localhost:8080/assets/", 100)
	require.NoError(t, err)

	url, err := adapter.Save(context.Background(), "listings", domain.MediaFile{Name: "plan.png", Data: pngBytes(t, 400, 200)})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost:8080/assets/listings/"))
	require.True(t, strings.HasSuffix(url, ".png"))

	stored := filepath.Join(dir, "listings", filepath.Base(url))
	img, err := imaging.Open(stored)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestSaveKeepsSmallImagesAndUsesJPEGByDefault(t *testing.T) {
	dir := t.TempDir()
	adapter, err := NewLocalStorageAdapter(dir, "/assets", 0)
	require.NoError(t, err)

	url, err := adapter.Save(context.Background(), "avatars", domain.MediaFile{Name: "photo", Data: pngBytes(t, 40, 30)})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	img, err := imaging.Open(filepath.Join(dir, "avatars", filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
}

func TestSaveRejectsNonImages(t *testing.T) {
	dir := t.TempDir()
	adapter, err := NewLocalStorageAdapter(dir, "/assets", 0)
	require.NoError(t, err)

	_, err = adapter.Save(context.Background(), "listings", domain.MediaFile{Name: "notes.txt", Data: []byte("hello")})
	assert.True(t, errors.Is(err, domain.ErrUnsupportedMedia))

	entries, _ := os.ReadDir(filepath.Join(dir, "listings"))
	assert.Empty(t, entries)
}

func TestNewLocalStorageAdapterRequiresDir(t *testing.T) {
	_, err := NewLocalStorageAdapter("", "/assets", 0)
	assert.Error(t, err)
}
