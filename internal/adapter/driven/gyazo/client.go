// Package gyazo implements the ImageHost and ImageDownloader ports against the
// Gyazo REST API.
package gyazo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/gyazobot/internal/domain/model"
	"github.com/ericfisherdev/gyazobot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ImageHost = (*Client)(nil)

const (
	DefaultAPIURL    = "https://api.gyazo.com"
	DefaultUploadURL = "https://upload.gyazo.com"
	DefaultPerPage   = 100
)

// Client implements the driven.ImageHost port. It holds no credentials; every
// call is made on behalf of the user whose token is passed in.
type Client struct {
	httpClient *http.Client
	apiURL     *url.URL
	uploadURL  *url.URL
	perPage    int
	maxPages   int // 0 means no cap.
}

// NewClient creates a Gyazo API client. A zero timeout leaves requests bounded
// only by their context.
func NewClient(apiURL, uploadURL string, timeout time.Duration) (*Client, error) {
	return NewClientWithHTTPClient(&http.Client{Timeout: timeout}, apiURL, uploadURL)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URLs.
// Tests use it to point both endpoints at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, apiURL, uploadURL string) (*Client, error) {
	api, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("parsing api URL: %w", err)
	}
	upload, err := url.Parse(uploadURL)
	if err != nil {
		return nil, fmt.Errorf("parsing upload URL: %w", err)
	}

	return &Client{
		httpClient: httpClient,
		apiURL:     api,
		uploadURL:  upload,
		perPage:    DefaultPerPage,
	}, nil
}

// WithPaging returns a copy of the client using the given page size and page
// cap. Non-positive perPage keeps the default; maxPages <= 0 disables the cap.
func (c *Client) WithPaging(perPage, maxPages int) *Client {
	clone := *c
	if perPage > 0 {
		clone.perPage = perPage
	}
	clone.maxPages = max(maxPages, 0)
	return &clone
}

// imageJSON is the subset of a Gyazo image object the bot reads.
type imageJSON struct {
	ImageID      string `json:"image_id"`
	ID           string `json:"id"`
	URL          string `json:"url"`
	PermalinkURL string `json:"permalink_url"`
	ThumbURL     string `json:"thumb_url"`
	Type         string `json:"type"`
	CreatedAt    string `json:"created_at"`
}

type uploadResponse struct {
	PermalinkURL string `json:"permalink_url"`
}

// FetchAllImages retrieves every image in the account behind token. Gyazo does
// not report a total, so pages are requested until one comes back empty. A
// failed page aborts the whole fetch; no partial result is returned.
func (c *Client) FetchAllImages(ctx context.Context, token string) ([]model.Image, error) {
	all := []model.Image{}

	for page := 1; ; page++ {
		if c.maxPages > 0 && page > c.maxPages {
			slog.Warn("gyazo image list truncated",
				"max_pages", c.maxPages,
				"fetched", len(all),
			)
			break
		}

		images, err := c.listImages(ctx, token, page)
		if err != nil {
			return nil, fmt.Errorf("listing images (page %d): %w", page, err)
		}

		slog.Debug("gyazo api call",
			"endpoint", "images",
			"page", page,
			"per_page", c.perPage,
			"count", len(images),
		)

		if len(images) == 0 {
			break
		}
		all = append(all, images...)
	}

	return all, nil
}

func (c *Client) listImages(ctx context.Context, token string, page int) ([]model.Image, error) {
	endpoint := c.apiURL.JoinPath("api", "images")
	q := endpoint.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(c.perPage))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &model.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, newStatusError(resp)
	}

	var raw []imageJSON
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode image list: %w", err)
	}

	images := make([]model.Image, 0, len(raw))
	for _, img := range raw {
		images = append(images, mapImage(img))
	}
	return images, nil
}

// Upload posts the image as multipart form data. A missing permalink_url in
// the response is not an error; the result simply carries an empty link.
func (c *Client) Upload(ctx context.Context, token string, upload model.Upload) (model.UploadResult, error) {
	body, contentType, err := encodeUpload(token, upload)
	if err != nil {
		return model.UploadResult{}, fmt.Errorf("encode upload: %w", err)
	}

	endpoint := c.uploadURL.JoinPath("api", "upload")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
	if err != nil {
		return model.UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.UploadResult{}, &model.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return model.UploadResult{}, newStatusError(resp)
	}

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return model.UploadResult{}, fmt.Errorf("decode upload response: %w", err)
	}

	slog.Debug("gyazo api call",
		"endpoint", "upload",
		"filename", upload.Filename,
		"bytes", len(upload.Data),
		"has_permalink", decoded.PermalinkURL != "",
	)

	return model.UploadResult{PermalinkURL: decoded.PermalinkURL}, nil
}

func encodeUpload(token string, upload model.Upload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("access_token", token); err != nil {
		return nil, "", err
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	filename := upload.Filename
	if filename == "" {
		filename = "upload"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="imagedata"; filename="%s"`, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// mapImage converts a Gyazo image object to a domain Image. Gyazo names the
// identifier image_id; id is accepted for compatibility with older payloads.
func mapImage(img imageJSON) model.Image {
	id := img.ImageID
	if id == "" {
		id = img.ID
	}

	return model.Image{
		ID:           id,
		URL:          img.URL,
		PermalinkURL: img.PermalinkURL,
		ThumbURL:     img.ThumbURL,
		Type:         img.Type,
		CreatedAt:    parseCreatedAt(img.CreatedAt),
	}
}

// createdAtLayouts lists the timestamp formats Gyazo has been seen to emit.
var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05Z07:00",
}

func parseCreatedAt(s string) time.Time {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
