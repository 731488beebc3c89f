package assets_adapter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const DefaultMaxEdge = 2048

// LocalStorageAdapter decodes uploaded images, bounds their long edge and
// writes them below dir. Files are served by the REST server under baseURL.
type LocalStorageAdapter struct {
	dir     string
	baseURL string
	maxEdge int
}

func NewLocalStorageAdapter(dir, baseURL string, maxEdge int) (*LocalStorageAdapter, error) {
	if dir == "" {
		return nil, fmt.Errorf("asset directory cannot be empty")
	}
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory %s: %w", dir, err)
	}
	return &LocalStorageAdapter{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxEdge: maxEdge}, nil
}

func (a *LocalStorageAdapter) Save(ctx context.Context, folder string, file domain.MediaFile) (string, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{"component": "LocalStorageAdapter", "folder": folder})

	img, err := imaging.Decode(bytes.NewReader(file.Data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnsupportedMedia, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > a.maxEdge || bounds.Dy() > a.maxEdge {
		img = imaging.Fit(img, a.maxEdge, a.maxEdge, imaging.Lanczos)
		adapterLogger.Debug("Image downscaled", port.Fields{
			"from": fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()),
			"to":   fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()),
		})
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := ".jpg"
	if format, err := imaging.FormatFromFilename(file.Name); err == nil && format == imaging.PNG {
		ext = ".png"
	}
	name := uuid.NewString() + ext

	folderDir := filepath.Join(a.dir, folder)
	if err := os.MkdirAll(folderDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder %s: %w", folder, err)
	}
	if err := imaging.Save(img, filepath.Join(folderDir, name), imaging.JPEGQuality(85)); err != nil {
		adapterLogger.Error("Failed to write image", err, nil)
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	return a.baseURL + "/" + folder + "/" + name, nil
}
