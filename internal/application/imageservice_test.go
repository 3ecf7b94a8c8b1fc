package application_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/gyazobot/internal/application"
	"github.com/ericfisherdev/gyazobot/internal/domain/model"
)

// --- Mock implementations ---

type mockCredentialStore struct {
	mu     sync.Mutex
	tokens map[int64]string
	getErr error
	setErr error
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{tokens: make(map[int64]string)}
}

func (m *mockCredentialStore) Set(_ context.Context, userID int64, token string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userID] = token
	return nil
}

func (m *mockCredentialStore) Get(_ context.Context, userID int64) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[userID], nil
}

type mockImageHost struct {
	images     []model.Image
	fetchErr   error
	fetchCalls atomic.Int32
	fetchToken string

	uploadResult model.UploadResult
	uploadErr    error
	uploaded     *model.Upload
}

func (m *mockImageHost) FetchAllImages(_ context.Context, token string) ([]model.Image, error) {
	m.fetchCalls.Add(1)
	m.fetchToken = token
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.images, nil
}

func (m *mockImageHost) Upload(_ context.Context, _ string, upload model.Upload) (model.UploadResult, error) {
	m.uploaded = &upload
	return m.uploadResult, m.uploadErr
}

type mockDownloader struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (m *mockDownloader) Download(_ context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	m.mu.Unlock()

	if m.fail[url] {
		return nil, &model.TransportError{StatusCode: 404, Body: "not found"}
	}
	return []byte("\x89PNG\r\n\x1a\n" + url), nil
}

// --- helpers ---

func ascendingImages(n int) []model.Image {
	images := make([]model.Image, n)
	for i := range images {
		id := fmt.Sprintf("img%02d", i)
		images[i] = model.Image{ID: id, URL: "https://i.gyazo.com/" + id + ".png"}
	}
	return images
}

func imageIDs(images []model.Image) []string {
	ids := make([]string, len(images))
	for i, img := range images {
		ids[i] = img.ID
	}
	return ids
}

func fileNames(files []model.ImageFile) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

type fixture struct {
	store      *mockCredentialStore
	host       *mockImageHost
	downloader *mockDownloader
	svc        *application.ImageService
}

func newFixture(images []model.Image, order model.ListOrder) *fixture {
	f := &fixture{
		store:      newMockCredentialStore(),
		host:       &mockImageHost{images: images},
		downloader: &mockDownloader{fail: map[string]bool{}},
	}
	f.store.tokens[1] = "token-1"
	f.svc = application.NewImageService(f.store, f.host, f.downloader, order)
	return f
}

// --- Authenticate ---

func TestAuthenticate_TrimsAndStores(t *testing.T) {
	f := newFixture(nil, "")

	require.NoError(t, f.svc.Authenticate(context.Background(), 7, "  abc123 \n"))

	assert.Equal(t, "abc123", f.store.tokens[7])
}

func TestAuthenticate_Overwrites(t *testing.T) {
	f := newFixture(nil, "")
	ctx := context.Background()

	require.NoError(t, f.svc.Authenticate(ctx, 7, "first"))
	require.NoError(t, f.svc.Authenticate(ctx, 7, "second"))

	assert.Equal(t, "second", f.store.tokens[7])
}

func TestAuthenticate_RejectsBlankToken(t *testing.T) {
	f := newFixture(nil, "")

	err := f.svc.Authenticate(context.Background(), 7, "   ")

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "access_token", validationErr.Field)
	assert.NotContains(t, f.store.tokens, int64(7))
}

func TestAuthenticate_StorageError(t *testing.T) {
	f := newFixture(nil, "")
	f.store.setErr = errors.New("disk I/O error")

	err := f.svc.Authenticate(context.Background(), 7, "tok")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "store credential")
	assert.Contains(t, err.Error(), "disk I/O error")
}

// --- RandomImage ---

func TestRandomImage_SingleElement(t *testing.T) {
	only := model.Image{ID: "one", URL: "https://i.gyazo.com/one.png"}
	f := newFixture([]model.Image{only}, "")

	for range 20 {
		img, err := f.svc.RandomImage(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "https://i.gyazo.com/one.png", img.URL)
	}
}

func TestRandomImage_UsesRandomIndex(t *testing.T) {
	f := newFixture(ascendingImages(10), "")
	f.svc.SetIntN(func(n int) int {
		assert.Equal(t, 10, n)
		return 7
	})

	img, err := f.svc.RandomImage(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "img07", img.ID)
	assert.Equal(t, "token-1", f.host.fetchToken)
	assert.Empty(t, f.downloader.calls, "random mode never downloads")
}

func TestRandomImage_NoImages(t *testing.T) {
	f := newFixture([]model.Image{}, "")

	_, err := f.svc.RandomImage(context.Background(), 1)

	assert.ErrorIs(t, err, model.ErrNoImages)
	assert.ErrorIs(t, err, model.ErrEmptyResult)
}

func TestRandomImage_NotAuthenticated(t *testing.T) {
	f := newFixture(ascendingImages(3), "")

	_, err := f.svc.RandomImage(context.Background(), 999)

	assert.ErrorIs(t, err, model.ErrNotAuthenticated)
	assert.Equal(t, int32(0), f.host.fetchCalls.Load())
}

func TestRandomImage_TransportError(t *testing.T) {
	f := newFixture(nil, "")
	f.host.fetchErr = &model.TransportError{StatusCode: 401, Body: "unauthorized"}

	_, err := f.svc.RandomImage(context.Background(), 1)

	var transportErr *model.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 401, transportErr.StatusCode)
}

// --- RecentImages ---

func TestRecentImages_RejectsOutOfRangeBeforeNetwork(t *testing.T) {
	for _, count := range []int{-1, 0, 11, 100} {
		t.Run(fmt.Sprint(count), func(t *testing.T) {
			f := newFixture(ascendingImages(20), "")
			f.store.getErr = errors.New("must not be called")

			_, err := f.svc.RecentImages(context.Background(), 1, count)

			var validationErr *model.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, "count", validationErr.Field)
			assert.Equal(t, int32(0), f.host.fetchCalls.Load())
			assert.Empty(t, f.downloader.calls)
		})
	}
}

func TestRecentImages_LastFiveInOrder(t *testing.T) {
	f := newFixture(ascendingImages(20), model.ListOrderOldestFirst)

	got, err := f.svc.RecentImages(context.Background(), 1, 5)

	require.NoError(t, err)
	assert.Nil(t, got.Embed)
	assert.Equal(t, 0, got.Failed)
	assert.Equal(t, []string{
		"gyazo_image_img15.png",
		"gyazo_image_img16.png",
		"gyazo_image_img17.png",
		"gyazo_image_img18.png",
		"gyazo_image_img19.png",
	}, fileNames(got.Files))
	assert.Len(t, f.downloader.calls, 5)
	for _, file := range got.Files {
		assert.Equal(t, "image/png", file.ContentType)
	}
}

func TestRecentImages_NewestFirstListing(t *testing.T) {
	// Host lists img19 first; the most recent five are img19..img15.
	images := ascendingImages(20)
	newestFirst := make([]model.Image, len(images))
	for i := range images {
		newestFirst[i] = images[len(images)-1-i]
	}
	f := newFixture(newestFirst, model.ListOrderNewestFirst)

	got, err := f.svc.RecentImages(context.Background(), 1, 5)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"gyazo_image_img15.png",
		"gyazo_image_img16.png",
		"gyazo_image_img17.png",
		"gyazo_image_img18.png",
		"gyazo_image_img19.png",
	}, fileNames(got.Files))
}

func TestRecentImages_SingleReturnsEmbedWithoutDownload(t *testing.T) {
	f := newFixture(ascendingImages(4), "")

	got, err := f.svc.RecentImages(context.Background(), 1, 1)

	require.NoError(t, err)
	require.NotNil(t, got.Embed)
	assert.Equal(t, "img03", got.Embed.ID)
	assert.Empty(t, got.Files)
	assert.Empty(t, f.downloader.calls)
}

func TestRecentImages_FewerImagesThanRequested(t *testing.T) {
	f := newFixture(ascendingImages(2), "")

	got, err := f.svc.RecentImages(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Equal(t, []string{"gyazo_image_img00.png", "gyazo_image_img01.png"}, fileNames(got.Files))
}

func TestRecentImages_PartialDownloadFailure(t *testing.T) {
	images := ascendingImages(3)
	f := newFixture(images, "")
	f.downloader.fail[images[1].URL] = true

	got, err := f.svc.RecentImages(context.Background(), 1, 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"gyazo_image_img00.png", "gyazo_image_img02.png"}, fileNames(got.Files))
	assert.Equal(t, 1, got.Failed)
}

func TestRecentImages_AllDownloadsFail(t *testing.T) {
	images := ascendingImages(3)
	f := newFixture(images, "")
	for _, img := range images {
		f.downloader.fail[img.URL] = true
	}

	got, err := f.svc.RecentImages(context.Background(), 1, 3)

	assert.ErrorIs(t, err, model.ErrNoDownloads)
	assert.ErrorIs(t, err, model.ErrEmptyResult)
	assert.Empty(t, got.Files)
	assert.Equal(t, 3, got.Failed)
}

func TestRecentImages_NoImages(t *testing.T) {
	f := newFixture(nil, "")

	_, err := f.svc.RecentImages(context.Background(), 1, 3)

	assert.ErrorIs(t, err, model.ErrNoImages)
}

func TestRecentImages_NotAuthenticated(t *testing.T) {
	f := newFixture(ascendingImages(3), "")

	_, err := f.svc.RecentImages(context.Background(), 2, 3)

	assert.ErrorIs(t, err, model.ErrNotAuthenticated)
}

func TestRecentImages_CredentialLookupError(t *testing.T) {
	f := newFixture(ascendingImages(3), "")
	f.store.getErr = errors.New("database is locked")

	_, err := f.svc.RecentImages(context.Background(), 1, 3)

	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrNotAuthenticated)
	assert.Contains(t, err.Error(), "load credential")
}

// --- UploadImage ---

func TestUploadImage_ReturnsPermalink(t *testing.T) {
	f := newFixture(nil, "")
	f.host.uploadResult = model.UploadResult{PermalinkURL: "https://x/y"}

	result, err := f.svc.UploadImage(context.Background(), 1, model.Upload{
		Filename:    "shot.png",
		ContentType: "image/png",
		Data:        []byte("png"),
	})

	require.NoError(t, err)
	assert.Equal(t, "https://x/y", result.PermalinkURL)
	require.NotNil(t, f.host.uploaded)
	assert.Equal(t, "shot.png", f.host.uploaded.Filename)
}

func TestUploadImage_NotAuthenticated(t *testing.T) {
	f := newFixture(nil, "")

	_, err := f.svc.UploadImage(context.Background(), 5, model.Upload{Filename: "a.png", Data: []byte("x")})

	assert.ErrorIs(t, err, model.ErrNotAuthenticated)
	assert.Nil(t, f.host.uploaded)
}

func TestUploadImage_EmptyPayload(t *testing.T) {
	f := newFixture(nil, "")

	_, err := f.svc.UploadImage(context.Background(), 1, model.Upload{Filename: "a.png"})

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "file", validationErr.Field)
}

func TestUploadImage_TransportError(t *testing.T) {
	f := newFixture(nil, "")
	f.host.uploadErr = &model.TransportError{StatusCode: 500, Body: "oops"}

	_, err := f.svc.UploadImage(context.Background(), 1, model.Upload{Filename: "a.png", Data: []byte("x")})

	var transportErr *model.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 500, transportErr.StatusCode)
}
