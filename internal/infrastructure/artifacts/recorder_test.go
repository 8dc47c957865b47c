package artifacts

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ui-operator/internal/domain/entity"
	"ui-operator/internal/infrastructure/browser/fake"
	"ui-operator/internal/infrastructure/logger"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widePage struct {
	*fake.Page
	width, height int
	err           error
}

func (p *widePage) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	if p.err != nil {
		return nil, p.err
	}
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	for x := 0; x < p.width; x += 16 {
		img.Set(x, 0, color.RGBA{G: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return &entity.Screenshot{Data: buf.Bytes(), Format: "png", Width: p.width, Height: p.height}, nil
}

func fixedRecorder(dir string) *Recorder {
	r := NewRecorder(dir, logger.NewNop())
	r.now = func() time.Time { return time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC) }
	return r
}

func TestRecorder_DownscalesWideScreenshots(t *testing.T) {
	dir := t.TempDir()
	page := &widePage{Page: fake.NewPage("https://manus.im/app"), width: 2048, height: 1000}

	path, err := fixedRecorder(dir).CaptureFailure(context.Background(), "run-1", page)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run-1-20261019T123000.jpg"), path)

	img, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, img.Bounds().Dx())
	assert.Equal(t, 500, img.Bounds().Dy())

	url, err := os.ReadFile(filepath.Join(dir, "run-1-20261019T123000.url.txt"))
	require.NoError(t, err)
	assert.Equal(t, "https://manus.im/app\n", string(url))
}

func TestRecorder_KeepsNarrowScreenshots(t *testing.T) {
	dir := t.TempDir()

	path, err := fixedRecorder(dir).CaptureFailure(context.Background(), "run-2", fake.NewPage("about:blank"))

	require.NoError(t, err)
	img, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
}

func TestRecorder_ScreenshotError(t *testing.T) {
	dir := t.TempDir()
	page := &widePage{Page: fake.NewPage(""), err: errors.New("target closed")}

	_, err := fixedRecorder(dir).CaptureFailure(context.Background(), "run-3", page)

	require.Error(t, err)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}
