package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLocalStoreSaveResizes(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/media/", 100)
	require.NoError(t, err)

	stored, err := store.Save("rooms/101", bytes.NewReader(pngBytes(t, 400, 200)))
	require.NoError(t, err)

	assert.Equal(t, 100, stored.Width)
	assert.Equal(t, 50, stored.Height)
	assert.True(t, strings.HasPrefix(stored.Key, "rooms101/"))
	assert.Equal(t, "/media/"+stored.Key, stored.URL)

	saved, err := imaging.Open(filepath.Join(dir, stored.Key))
	require.NoError(t, err)
	assert.Equal(t, 100, saved.Bounds().Dx())

	require.NoError(t, store.Delete(stored.Key))
	_, err = os.Stat(filepath.Join(dir, stored.Key))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Delete(stored.Key))
}

func TestLocalStoreKeepsSmallImages(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/media", 100)
	require.NoError(t, err)

	stored, err := store.Save("", bytes.NewReader(pngBytes(t, 40, 30)))
	require.NoError(t, err)
	assert.Equal(t, 40, stored.Width)
	assert.True(t, strings.HasPrefix(stored.Key, "misc/"))
}

func TestLocalStoreRejectsNonImage(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/media", 100)
	require.NoError(t, err)

	_, err = store.Save("rooms", strings.NewReader("definitely not a png"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}
