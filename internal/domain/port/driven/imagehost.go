package driven

import (
	"context"

	"github.com/ericfisherdev/gyazobot/internal/domain/model"
)

// ImageHost defines the driven port for the remote image-hosting API.
// Failures caused by the remote side are reported as *model.TransportError.
type ImageHost interface {
	// FetchAllImages pages through the user's image list until an empty page
	// is returned and yields every descriptor in page order.
	FetchAllImages(ctx context.Context, token string) ([]model.Image, error)

	// Upload submits a new image and returns the permalink reported by the host.
	Upload(ctx context.Context, token string, upload model.Upload) (model.UploadResult, error)
}

// ImageDownloader fetches raw image binaries by URL.
type ImageDownloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}
