package usecase

import (
	"context"
	"fmt"
	"regexp"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
)

const DefaultAssetFolder = "listings"

var folderRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,31}$`)

type UploadAssetUseCase struct {
	storage port.AssetStoragePort
}

func NewUploadAssetUseCase(storage port.AssetStoragePort) *UploadAssetUseCase {
	return &UploadAssetUseCase{storage: storage}
}

// Execute stores one image in the destination folder and returns its URL.
func (uc *UploadAssetUseCase) Execute(ctx context.Context, principal *domain.Principal, folder string, file domain.MediaFile) (string, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "UploadAsset", "file_name": file.Name})

	if principal == nil {
		return "", domain.ErrForbidden
	}
	if folder == "" {
		folder = DefaultAssetFolder
	}
	if !folderRe.MatchString(folder) {
		return "", fmt.Errorf("%w: invalid folder %q", domain.ErrUnsupportedMedia, folder)
	}
	if len(file.Data) == 0 {
		return "", fmt.Errorf("%w: empty file", domain.ErrUnsupportedMedia)
	}

	ucLogger.Info("Use case started", port.Fields{"folder": folder, "size_bytes": len(file.Data)})

	url, err := uc.storage.Save(ctx, folder, file)
	if err != nil {
		ucLogger.Error("Failed to store asset", err, nil)
		return "", err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"url": url})
	return url, nil
}
