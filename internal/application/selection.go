package application

import (
	"context"
	"net/http"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/gyazobot/internal/domain/model"
	"github.com/ericfisherdev/gyazobot/internal/domain/port/driven"
)

// selectRecent returns the count most recent images in chronological order.
// With oldest-first listings that is the tail of the slice; with newest-first
// listings it is the head, reversed. Fewer than count images yields them all.
func selectRecent(images []model.Image, count int, order model.ListOrder) []model.Image {
	n := min(count, len(images))

	if order == model.ListOrderNewestFirst {
		out := slices.Clone(images[:n])
		slices.Reverse(out)
		return out
	}
	return slices.Clone(images[len(images)-n:])
}

// downloadAll fetches every image concurrently. Each download is independent:
// a failure is recorded in its own result and never cancels the others.
// Results are returned in the order of images.
func downloadAll(ctx context.Context, downloader driven.ImageDownloader, images []model.Image) []model.DownloadResult {
	results := make([]model.DownloadResult, len(images))

	var g errgroup.Group
	g.SetLimit(model.MaxRecentCount)
	for i, img := range images {
		g.Go(func() error {
			data, err := downloader.Download(ctx, img.URL)
			results[i] = model.DownloadResult{Image: img, Data: data, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// collectFiles keeps successful downloads as attachable files, preserving
// order, and counts the failures it excluded.
func collectFiles(results []model.DownloadResult) ([]model.ImageFile, int) {
	files := make([]model.ImageFile, 0, len(results))
	failed := 0

	for _, r := range results {
		if !r.OK() {
			failed++
			continue
		}
		files = append(files, model.ImageFile{
			Name:        r.Image.Filename(),
			ContentType: http.DetectContentType(r.Data),
			Data:        r.Data,
		})
	}
	return files, failed
}
