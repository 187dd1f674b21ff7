// internal/application/issuance/metadata_publisher.go
package issuance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	assetdom "tokenforge/internal/domain/asset"
)

// metadataObjectName is the fixed object name within a request's folder.
const metadataObjectName = "metadata.json"

// MetadataPublisher serializes the token metadata document and publishes it
// through the staged publisher.
type MetadataPublisher struct {
	publisher   *StagedPublisher
	stagingRoot string
}

func NewMetadataPublisher(publisher *StagedPublisher, stagingRoot string) *MetadataPublisher {
	return &MetadataPublisher{
		publisher:   publisher,
		stagingRoot: strings.TrimSpace(stagingRoot),
	}
}

// Publish writes doc as canonical JSON to "{stagingRoot}/{folderKey}.json",
// then publishes it under "{folderKey}/metadata.json".
//
// Returns the published URL. An empty URL with nil error means the publish
// was skipped (soft failure) — callers must check, not assume.
func (m *MetadataPublisher) Publish(ctx context.Context, doc assetdom.TokenMetadataDocument, folderKey string) (string, error) {
	if m == nil || m.publisher == nil {
		return "", errors.New("issuance: metadata publisher is not initialized")
	}

	folderKey = strings.Trim(strings.TrimSpace(folderKey), "/")
	if folderKey == "" {
		return "", errors.New("issuance: folderKey is empty")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("issuance: marshal metadata: %w", err)
	}

	if err := os.MkdirAll(m.stagingRoot, 0o755); err != nil {
		return "", fmt.Errorf("issuance: create staging dir: %w", err)
	}

	stagedPath := filepath.Join(m.stagingRoot, folderKey+".json")
	if err := os.WriteFile(stagedPath, raw, 0o644); err != nil {
		return "", fmt.Errorf("issuance: write staged metadata: %w", err)
	}

	published, err := m.publisher.Publish(ctx, stagedPath, folderKey+"/"+metadataObjectName)
	if err != nil {
		return "", err
	}
	if published == nil {
		// 上流が空ドキュメントを握り潰したケース。エラーではなく URL なしで返す。
		log.Printf("[metadata] WARN: metadata publish yielded no location folder=%s", folderKey)
		return "", nil
	}

	log.Printf("[metadata] published url=%s size=%d", published.PublicURL, published.Size)
	return published.PublicURL, nil
}
