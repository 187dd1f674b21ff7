// internal/infra/fetch/http_fetcher.go
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// FetchTimeout caps the whole asset download, connection included.
// 後段のオンチェーン処理と違い、ここは安価に失敗できる唯一の箇所なので短め。
const FetchTimeout = 10 * time.Second

// 一部の画像ホストは UA なしのリクエストを拒否するため、ブラウザ相当を名乗る。
const fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/94.0.4606.81 Safari/537.36"

var (
	// ErrTimeout is returned when the remote does not answer within FetchTimeout.
	ErrTimeout = errors.New("fetch: request timed out")
)

// HTTPStatusError is returned for any non-2xx response.
type HTTPStatusError struct {
	Status int
}

func (e *HTTPStatusError) Error() string {
	return "fetch: unexpected status " + strconv.Itoa(e.Status)
}

// HTTPFetcher streams a remote asset to a local staging file.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: FetchTimeout,
		},
	}
}

// Fetch downloads sourceURL into destPath, creating the parent directory if
// absent. The local file is created/overwritten; it is NOT deleted on
// failure — cleanup is the caller's responsibility.
func (f *HTTPFetcher) Fetch(ctx context.Context, sourceURL, destPath string) error {
	if f == nil || f.client == nil {
		return errors.New("fetch: fetcher is not initialized")
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("fetch: create staging dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return fmt.Errorf("fetch: create request: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			log.Printf("[fetch] timeout url=%s after=%s", sourceURL, FetchTimeout)
			return ErrTimeout
		}
		return fmt.Errorf("fetch: transport: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[fetch] unexpected status url=%s status=%d", sourceURL, resp.StatusCode)
		return &HTTPStatusError{Status: resp.StatusCode}
	}

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("fetch: create staging file: %w", err)
	}

	written, err := io.Copy(file, resp.Body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if isTimeout(err) {
			return ErrTimeout
		}
		return fmt.Errorf("fetch: stream body: %w", err)
	}

	log.Printf("[fetch] done url=%s dest=%s bytes=%d", sourceURL, destPath, written)
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return true
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return false
}
