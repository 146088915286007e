package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/port/storage"
	"go.uber.org/zap"
)

var (
	ErrInvalidSize      = errors.New("requested image size must be 100 or 500")
	ErrVariantNotReady  = errors.New("requested image size has not been processed")
	ErrMissingImageName = errors.New("image name is required")
)

// VariantSizes are the pixel-width buckets the resize pipeline produces.
var VariantSizes = []int{100, 500}

// StagedImageName derives the temp blob name for an upload. The name is a
// pure function of the listing-defining fields plus the original filename,
// so identical submissions collide on the same blob; last write wins. The
// extension is taken from the declared MIME subtype.
func StagedImageName(originalFilename, itemName, listingType, description, price, contentType string) string {
	raw := originalFilename + itemName + listingType + description + price
	sum := sha256.Sum256([]byte(raw))

	ext := contentType
	if idx := strings.Index(contentType, "/"); idx >= 0 {
		ext = contentType[idx+1:]
	}
	return hex.EncodeToString(sum[:]) + "." + ext
}

type ImageUseCase struct {
	images storage.ImageStore
	logger *zap.Logger
}

func NewImageUseCase(is storage.ImageStore, log *zap.Logger) *ImageUseCase {
	return &ImageUseCase{images: is, logger: log}
}

// StageUpload writes an uploaded image into temp/ under its content-derived
// name and returns that name.
func (uc *ImageUseCase) StageUpload(ctx context.Context, data []byte, originalFilename, contentType, itemName, listingType, description, price string) (string, error) {
	name := StagedImageName(originalFilename, itemName, listingType, description, price, contentType)
	if err := uc.images.Stage(ctx, name, contentType, data); err != nil {
		uc.logger.Error("Failed to stage uploaded image", zap.Error(err), zap.String("image_name", name))
		return "", fmt.Errorf("ImageUseCase.StageUpload: %w", err)
	}
	return name, nil
}

// GetVariant serves a processed rendition of a staged image. An unknown size
// fails validation before storage is consulted; a missing processed object
// means the resizer has not caught up yet, which callers cannot distinguish
// from "never will".
func (uc *ImageUseCase) GetVariant(ctx context.Context, imageName string, size int) (io.ReadCloser, string, error) {
	if imageName == "" {
		return nil, "", ErrMissingImageName
	}
	if !validVariantSize(size) {
		return nil, "", ErrInvalidSize
	}

	reader, contentType, err := uc.images.GetVariant(ctx, imageName, size)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, "", ErrVariantNotReady
		}
		uc.logger.Error("Failed to fetch image variant",
			zap.Error(err),
			zap.String("image_name", imageName),
			zap.Int("size", size),
		)
		return nil, "", fmt.Errorf("ImageUseCase.GetVariant: %w", err)
	}
	return reader, contentType, nil
}

func validVariantSize(size int) bool {
	for _, s := range VariantSizes {
		if s == size {
			return true
		}
	}
	return false
}
