package scanner

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

func TestMain(m *testing.M) {
	zlog.Init()
	os.Exit(m.Run())
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestIsImagePath(t *testing.T) {
	require.True(t, IsImagePath("a.jpg"))
	require.True(t, IsImagePath("a.JPEG"))
	require.True(t, IsImagePath("dir/a.webp"))
	require.False(t, IsImagePath("a.txt"))
	require.False(t, IsImagePath("a"))
	require.False(t, IsImagePath("a.jpg.part"))
}

func TestScanNonRecursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.PNG"))
	touch(t, filepath.Join(dir, "a.jpg"))
	touch(t, filepath.Join(dir, "note.txt"))
	touch(t, filepath.Join(dir, "sub", "c.gif"))

	files, err := New(0).Scan(context.Background(), dir, false, nil)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.PNG"),
	}, files)
}

func TestScanRecursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.jpg"))
	touch(t, filepath.Join(dir, "sub", "c.gif"))
	touch(t, filepath.Join(dir, "sub", "deep", "d.webp"))
	touch(t, filepath.Join(dir, "sub", "readme.md"))

	files, err := New(0).Scan(context.Background(), dir, true, nil)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "sub", "c.gif"),
		filepath.Join(dir, "sub", "deep", "d.webp"),
	}, files)
}

func TestScanProgress(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"} {
		touch(t, filepath.Join(dir, name))
	}

	var counts []int
	_, err := New(2).Scan(context.Background(), dir, true, func(found int) {
		counts = append(counts, found)
	})
	require.NoError(t, err)
	require.Equal(t, []int{2, 4}, counts)
}

func TestScanNotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.jpg")
	touch(t, file)

	_, err := New(0).Scan(context.Background(), file, false, nil)
	require.Error(t, err)

	_, err = New(0).Scan(context.Background(), filepath.Join(dir, "missing"), false, nil)
	require.Error(t, err)
}

func TestScanCancelled(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.jpg"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(0).Scan(ctx, dir, true, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pic.png")

	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	fi, err := Probe(path)
	require.NoError(t, err)
	require.Equal(t, "pic.png", fi.Name)
	require.Equal(t, 3, fi.Width)
	require.Equal(t, 2, fi.Height)
	require.Equal(t, "png", fi.Format)
	require.Greater(t, fi.Size, int64(0))
}

func TestProbeNotAnImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fake.jpg")
	touch(t, path)

	fi, err := Probe(path)
	require.Error(t, err)
	// Name and size still come back so the preview can show the file.
	require.Equal(t, "fake.jpg", fi.Name)
	require.Equal(t, int64(1), fi.Size)
	require.False(t, fi.HasDimensions())
}

func TestScanDedupes(t *testing.T) {
	files := dedupeSorted([]string{"/p/b.jpg", "/p/a.jpg", "/p/a.jpg"})
	require.Equal(t, []string{"/p/a.jpg", "/p/b.jpg"}, files)
}
