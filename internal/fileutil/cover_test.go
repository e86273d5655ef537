package fileutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := range width {
		for y := range height {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestBuildCoverFilename(t *testing.T) {
	assert.Equal(t, "12-dune.jpg", BuildCoverFilename(12, "dune"))
	assert.Equal(t, "7.jpg", BuildCoverFilename(7, ""))
}

func TestDownloadCover_EmptyURL(t *testing.T) {
	result, err := DownloadCover(context.Background(), CoverDownloadOptions{OutputDir: t.TempDir(), Filename: "x.jpg"})
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestDownloadCover_ResizesLargeImages(t *testing.T) {
	payload := jpegBytes(t, 800, 1200)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	dir := t.TempDir()
	result, err := DownloadCover(context.Background(), CoverDownloadOptions{
		URL:       server.URL + "/cover.jpg",
		OutputDir: dir,
		Filename:  "1-big.jpg",
		MaxWidth:  200,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Downloaded)

	saved, err := imaging.Open(filepath.Join(dir, "1-big.jpg"))
	require.NoError(t, err)
	assert.Equal(t, 200, saved.Bounds().Dx())
	assert.Equal(t, 300, saved.Bounds().Dy())
}

func TestDownloadCover_SkipsExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected download")
	}))
	defer server.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2.jpg"), []byte("old"), 0o644))

	result, err := DownloadCover(context.Background(), CoverDownloadOptions{
		URL:       server.URL,
		OutputDir: dir,
		Filename:  "2.jpg",
	})
	require.NoError(t, err)
	assert.False(t, result.Downloaded)
}

func TestDownloadCover_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }},
		{"not an image", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("<html></html>")) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			_, err := DownloadCover(context.Background(), CoverDownloadOptions{
				URL:       server.URL,
				OutputDir: t.TempDir(),
				Filename:  "3.jpg",
			})
			require.Error(t, err)
		})
	}
}
