// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/ericfisherdev/gyazobot/internal/domain/model"
	"github.com/ericfisherdev/gyazobot/internal/domain/port/driven"
)

// ImageService implements the bot's use cases: linking a Gyazo token and
// fetching, selecting, downloading and uploading images on the user's behalf.
// It holds every collaborator a command needs, so handlers carry no globals.
type ImageService struct {
	credentials driven.CredentialStore
	host        driven.ImageHost
	downloader  driven.ImageDownloader
	order       model.ListOrder
	intN        func(n int) int
}

// NewImageService creates a new ImageService with all required dependencies.
// order tells the service how the host sorts its image list; an empty value
// means model.ListOrderOldestFirst.
func NewImageService(
	credentials driven.CredentialStore,
	host driven.ImageHost,
	downloader driven.ImageDownloader,
	order model.ListOrder,
) *ImageService {
	if order == "" {
		order = model.ListOrderOldestFirst
	}
	return &ImageService{
		credentials: credentials,
		host:        host,
		downloader:  downloader,
		order:       order,
		intN:        rand.IntN,
	}
}

// Authenticate stores the user's access token, replacing any previous one.
func (s *ImageService) Authenticate(ctx context.Context, userID int64, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &model.ValidationError{Field: "access_token", Message: "must not be empty"}
	}

	if err := s.credentials.Set(ctx, userID, token); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

// RandomImage returns one image chosen uniformly from the user's whole account.
// Only the descriptor is returned; the binary is not downloaded.
func (s *ImageService) RandomImage(ctx context.Context, userID int64) (model.Image, error) {
	images, err := s.fetchAll(ctx, userID)
	if err != nil {
		return model.Image{}, err
	}
	if len(images) == 0 {
		return model.Image{}, model.ErrNoImages
	}

	return images[s.intN(len(images))], nil
}

// RecentImages returns the user's count most recent images. count is checked
// before any I/O. A single image is returned as an embed; several are
// downloaded concurrently and returned as files, dropping any that fail.
func (s *ImageService) RecentImages(ctx context.Context, userID int64, count int) (model.RecentImages, error) {
	if err := model.ValidateRecentCount(count); err != nil {
		return model.RecentImages{}, err
	}

	images, err := s.fetchAll(ctx, userID)
	if err != nil {
		return model.RecentImages{}, err
	}
	if len(images) == 0 {
		return model.RecentImages{}, model.ErrNoImages
	}

	selected := selectRecent(images, count, s.order)

	if count == 1 {
		embed := selected[0]
		return model.RecentImages{Embed: &embed}, nil
	}

	results := downloadAll(ctx, s.downloader, selected)
	files, failed := collectFiles(results)
	for _, r := range results {
		if !r.OK() {
			slog.Warn("image download dropped", "user_id", userID, "image_id", r.Image.ID, "error", r.Err)
		}
	}

	if len(files) == 0 {
		return model.RecentImages{Failed: failed}, model.ErrNoDownloads
	}
	return model.RecentImages{Files: files, Failed: failed}, nil
}

// UploadImage submits a new image to the user's account.
func (s *ImageService) UploadImage(ctx context.Context, userID int64, upload model.Upload) (model.UploadResult, error) {
	if len(upload.Data) == 0 {
		return model.UploadResult{}, &model.ValidationError{Field: "file", Message: "is empty"}
	}

	token, err := s.tokenFor(ctx, userID)
	if err != nil {
		return model.UploadResult{}, err
	}

	result, err := s.host.Upload(ctx, token, upload)
	if err != nil {
		return model.UploadResult{}, fmt.Errorf("upload image: %w", err)
	}
	return result, nil
}

// fetchAll loads the user's token and pages through their entire image list.
func (s *ImageService) fetchAll(ctx context.Context, userID int64) ([]model.Image, error) {
	token, err := s.tokenFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	images, err := s.host.FetchAllImages(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetch images: %w", err)
	}
	return images, nil
}

func (s *ImageService) tokenFor(ctx context.Context, userID int64) (string, error) {
	token, err := s.credentials.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	if token == "" {
		return "", model.ErrNotAuthenticated
	}
	return token, nil
}
