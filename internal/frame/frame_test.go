package frame

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, path string, width int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, 4))
	require.NoError(t, imaging.Save(img, path))
}

func TestDirectorySourceServesFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "b.png"), 20)
	writeImage(t, filepath.Join(dir, "a.png"), 10)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644))

	source, err := NewDirectorySource(dir, false)
	require.NoError(t, err)
	defer func() { assert.NoError(t, source.Release()) }()

	first, err := source.Frame()
	require.NoError(t, err)
	assert.Equal(t, 10, first.Bounds().Dx(), "files must be served in name order")

	second, err := source.Frame()
	require.NoError(t, err)
	assert.Equal(t, 20, second.Bounds().Dx())

	_, err = source.Frame()
	assert.ErrorIs(t, err, ErrNoFrame, "non-looping source runs dry")
}

func TestDirectorySourceLoops(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "only.png"), 10)

	source, err := NewDirectorySource(dir, true)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		img, err := source.Frame()
		require.NoError(t, err)
		assert.Equal(t, 10, img.Bounds().Dx())
	}
}

func TestDirectorySourceSkipsUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not an image"), 0o644))
	writeImage(t, filepath.Join(dir, "good.png"), 10)

	source, err := NewDirectorySource(dir, false)
	require.NoError(t, err)

	_, err = source.Frame()
	assert.ErrorIs(t, err, ErrNoFrame, "a corrupt file degrades to a skipped tick")

	img, err := source.Frame()
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
}

func TestDirectorySourceEmptyDir(t *testing.T) {
	_, err := NewDirectorySource(t.TempDir(), false)
	assert.Error(t, err)
}
