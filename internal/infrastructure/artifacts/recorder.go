// Package artifacts stores diagnostics for failed runs. Nothing stored here is
// ever fed back to the planner.
package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"ui-operator/internal/application/port/output"

	"github.com/disintegration/imaging"
)

var _ output.ArtifactPort = (*Recorder)(nil)

const (
	maxWidth    = 1024
	jpegQuality = 75
)

type Recorder struct {
	dir    string
	now    func() time.Time
	logger output.LoggerPort
}

func NewRecorder(dir string, logger output.LoggerPort) *Recorder {
	return &Recorder{dir: dir, now: time.Now, logger: logger}
}

// CaptureFailure writes a JPEG of page, at most 1024 px wide, and a text file
// with its URL. It returns the image path.
func (r *Recorder) CaptureFailure(ctx context.Context, runID string, page output.PagePort) (string, error) {
	shot, err := page.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("capture screenshot: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(shot.Data))
	if err != nil {
		return "", fmt.Errorf("image decode failed: %w", err)
	}
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifacts dir: %w", err)
	}

	base := filepath.Join(r.dir, fmt.Sprintf("%s-%s", runID, r.now().UTC().Format("20060102T150405")))
	path := base + ".jpg"
	if err := imaging.Save(img, path, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("save screenshot: %w", err)
	}

	if err := os.WriteFile(base+".url.txt", []byte(page.CurrentURL()+"\n"), 0o644); err != nil {
		r.logger.Warn("Failed to write artifact URL", "error", err)
	}

	r.logger.Debug("Failure artifact written",
		"path", path,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy())
	return path, nil
}
