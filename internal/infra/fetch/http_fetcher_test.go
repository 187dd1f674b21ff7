package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	var gotUA, gotPragma string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotPragma = r.Header.Get("Pragma")
		_, _ = w.Write([]byte("fake-png-bytes"))
	}))
	defer srv.Close()

	// 親ディレクトリが無い dest を渡して自動作成されることも同時に確認する
	dest := filepath.Join(t.TempDir(), "staging", "folder-1image.png")

	f := NewHTTPFetcher()
	err := f.Fetch(context.Background(), srv.URL+"/image.png", dest)
	require.NoError(t, err)

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "fake-png-bytes", string(raw))

	assert.Equal(t, fetchUserAgent, gotUA)
	assert.Equal(t, "no-cache", gotPragma)
}

func TestHTTPFetcher_Fetch_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "image.png")

	f := NewHTTPFetcher()
	err := f.Fetch(context.Background(), srv.URL, dest)
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.Status)

	// 非 2xx ではローカルファイルを作らない
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestHTTPFetcher_Fetch_Timeout(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	f := NewHTTPFetcher()
	err := f.Fetch(ctx, srv.URL, filepath.Join(t.TempDir(), "image.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)

	select {
	case <-started:
	default:
		t.Fatal("server was never reached")
	}
}

func TestHTTPFetcher_Fetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // 接続先を先に落としておく

	f := NewHTTPFetcher()
	err := f.Fetch(context.Background(), url, filepath.Join(t.TempDir(), "image.png"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestHTTPFetcher_Fetch_InvalidURL(t *testing.T) {
	f := NewHTTPFetcher()
	err := f.Fetch(context.Background(), "http://[::bad", filepath.Join(t.TempDir(), "image.png"))
	require.Error(t, err)
}
