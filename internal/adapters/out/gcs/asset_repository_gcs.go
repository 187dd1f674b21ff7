// internal/adapters/out/gcs/asset_repository_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"path"
	"strings"

	"cloud.google.com/go/storage"

	assetdom "tokenforge/internal/domain/asset"
)

// AssetRepositoryGCS
//   - 発行アセット（画像・metadata.json）の実体を GCS に保存するアダプタ。
//   - application/issuance.ObjectStore を満たします。
//   - オブジェクトは全て public-read で公開される前提（公開 URL を返す）。
type AssetRepositoryGCS struct {
	Client *storage.Client
	Bucket string
}

const defaultContentType = "application/octet-stream"

func NewAssetRepositoryGCS(client *storage.Client, bucket string) *AssetRepositoryGCS {
	return &AssetRepositoryGCS{
		Client: client,
		Bucket: strings.TrimSpace(bucket),
	}
}

// Put streams size bytes from body into objectPath and returns the published
// asset. Content type is inferred from the object path's extension; content
// length is enforced explicitly against the declared size.
func (r *AssetRepositoryGCS) Put(
	ctx context.Context,
	objectPath string,
	size int64,
	body io.Reader,
) (*assetdom.PublishedAsset, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("AssetRepositoryGCS: nil storage client")
	}

	bucket := strings.TrimSpace(r.Bucket)
	if bucket == "" {
		return nil, errors.New("AssetRepositoryGCS: bucket is empty (set GCS_BUCKET)")
	}

	objectPath = strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	if objectPath == "" {
		return nil, errors.New("AssetRepositoryGCS: objectPath is empty")
	}

	contentType := ContentTypeForPath(objectPath)

	w := r.Client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	w.PredefinedACL = "publicRead"
	w.ContentType = contentType

	written, err := io.Copy(w, body)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("AssetRepositoryGCS.Put %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("AssetRepositoryGCS.Put %s: close: %w", objectPath, err)
	}
	if size > 0 && written != size {
		return nil, fmt.Errorf("AssetRepositoryGCS.Put %s: wrote %d bytes, want %d", objectPath, written, size)
	}

	log.Printf("[gcs] uploaded object=%s contentType=%s size=%d", objectPath, contentType, written)
	return &assetdom.PublishedAsset{
		PublicURL:   PublicURL(bucket, objectPath),
		ObjectPath:  objectPath,
		ContentType: contentType,
		Size:        written,
	}, nil
}

// PublicURL builds the public GCS URL for an object.
func PublicURL(bucket, objectPath string) string {
	obj := strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", strings.TrimSpace(bucket), obj)
}

// ContentTypeForPath infers a content type from the path's extension,
// falling back to a generic binary type.
func ContentTypeForPath(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return defaultContentType
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	// mime DB は環境依存なので、よく使う拡張子は自前で補完する
	switch ext {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".json":
		return "application/json"
	default:
		return defaultContentType
	}
}
