// internal/application/issuance/asset_pipeline.go
package issuance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	assetdom "tokenforge/internal/domain/asset"
)

// ErrAssetPublish collapses every pipeline failure (fetch or publish) into a
// single outcome for the caller. The pipeline does not retry.
var ErrAssetPublish = errors.New("issuance: asset publish failed")

// AssetPipeline turns a remote image reference into a published public asset:
// fetch into the local staging area, then hand off to the staged publisher.
type AssetPipeline struct {
	fetcher     AssetFetcher
	publisher   *StagedPublisher
	stagingRoot string
}

func NewAssetPipeline(fetcher AssetFetcher, publisher *StagedPublisher, stagingRoot string) *AssetPipeline {
	return &AssetPipeline{
		fetcher:     fetcher,
		publisher:   publisher,
		stagingRoot: strings.TrimSpace(stagingRoot),
	}
}

// PublishRemote fetches sourceURL and publishes it under
// "{folderKey}/{relativePath}".
//
// On fetch failure nothing is published (no partial object-store state) and
// the staged partial, if any, is removed. Either stage failing collapses to
// ErrAssetPublish.
func (p *AssetPipeline) PublishRemote(ctx context.Context, sourceURL, relativePath, folderKey string) (*assetdom.PublishedAsset, error) {
	if p == nil || p.fetcher == nil || p.publisher == nil {
		return nil, fmt.Errorf("%w: pipeline is not initialized", ErrAssetPublish)
	}

	relativePath = strings.TrimLeft(strings.TrimSpace(relativePath), "/")
	folderKey = strings.Trim(strings.TrimSpace(folderKey), "/")
	if relativePath == "" || folderKey == "" {
		return nil, fmt.Errorf("%w: relativePath/folderKey is empty", ErrAssetPublish)
	}

	// ステージングはリクエスト毎の folderKey で名前空間を分ける
	// （ローカルは "{folderKey}{relativePath}"、バケット側は "{folderKey}/{relativePath}"）
	stagedPath := filepath.Join(p.stagingRoot, folderKey+relativePath)

	if err := p.fetcher.Fetch(ctx, sourceURL, stagedPath); err != nil {
		// 取得失敗時に書きかけのファイルが残っていれば片付ける
		if rmErr := os.Remove(stagedPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("[asset_pipeline] WARN: remove partial staged file failed path=%s err=%v", stagedPath, rmErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrAssetPublish, err)
	}

	objectPath := folderKey + "/" + relativePath
	published, err := p.publisher.Publish(ctx, stagedPath, objectPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetPublish, err)
	}
	if published == nil {
		// zero-byte skip: アップロードは行われていないので成果物なし
		return nil, fmt.Errorf("%w: fetched file was empty, nothing published", ErrAssetPublish)
	}

	log.Printf("[asset_pipeline] published object=%s url=%s size=%d", published.ObjectPath, published.PublicURL, published.Size)
	return published, nil
}
