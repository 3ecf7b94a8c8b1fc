package gyazo_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gyazoAdapter "github.com/ericfisherdev/gyazobot/internal/adapter/driven/gyazo"
	"github.com/ericfisherdev/gyazobot/internal/domain/model"
)

func imageServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Header().Set("Cache-Control", "public, max-age=3600")
			_, _ = io.WriteString(w, "png-bytes")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDownload_Success(t *testing.T) {
	var hits atomic.Int32
	server := imageServer(t, &hits)
	d := gyazoAdapter.NewDownloaderWithHTTPClient(server.Client())

	data, err := d.Download(context.Background(), server.URL+"/ok.png")

	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestDownload_NotFound(t *testing.T) {
	var hits atomic.Int32
	server := imageServer(t, &hits)
	d := gyazoAdapter.NewDownloaderWithHTTPClient(server.Client())

	data, err := d.Download(context.Background(), server.URL+"/missing.png")

	assert.Nil(t, data)
	var transportErr *model.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusNotFound, transportErr.StatusCode)
}

func TestDownload_CachesImmutableImages(t *testing.T) {
	var hits atomic.Int32
	server := imageServer(t, &hits)
	d := gyazoAdapter.NewDownloader(0, 1<<20)

	for range 3 {
		data, err := d.Download(context.Background(), server.URL+"/ok.png")
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), data)
	}

	assert.Equal(t, int32(1), hits.Load())
}

func TestDownload_CacheDisabled(t *testing.T) {
	var hits atomic.Int32
	server := imageServer(t, &hits)
	d := gyazoAdapter.NewDownloader(0, 0)

	for range 2 {
		_, err := d.Download(context.Background(), server.URL+"/ok.png")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(2), hits.Load())
}
