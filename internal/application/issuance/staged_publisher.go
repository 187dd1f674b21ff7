// internal/application/issuance/staged_publisher.go
package issuance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	assetdom "tokenforge/internal/domain/asset"
)

// PublishError surfaces the underlying storage failure after local cleanup
// has already run.
type PublishError struct {
	ObjectPath string
	Cause      error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.ObjectPath, e.Cause)
}

func (e *PublishError) Unwrap() error { return e.Cause }

// StagedPublisher uploads a staged local file to the object store.
//
// Invariant: the staged file is removed exactly once per publish attempt,
// on success AND on failure. No staged file outlives one attempt.
type StagedPublisher struct {
	store ObjectStore
}

func NewStagedPublisher(store ObjectStore) *StagedPublisher {
	return &StagedPublisher{store: store}
}

// Publish uploads localPath under objectPath.
//
// Zero-length staged files are silently skipped: the file is still removed,
// no object is created, and (nil, nil) is returned. Callers must treat a nil
// asset as "nothing published", not as success.
func (p *StagedPublisher) Publish(ctx context.Context, localPath, objectPath string) (*assetdom.PublishedAsset, error) {
	if p == nil || p.store == nil {
		return nil, errors.New("issuance: staged publisher is not initialized")
	}

	// 成否に関わらずステージングファイルはここで一度だけ削除する
	defer removeStaged(localPath)

	st, err := os.Stat(localPath)
	if err != nil {
		return nil, &PublishError{ObjectPath: objectPath, Cause: fmt.Errorf("stat staged file: %w", err)}
	}
	if st.Size() == 0 {
		log.Printf("[publisher] skip empty staged file path=%s object=%s", localPath, objectPath)
		return nil, nil
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, &PublishError{ObjectPath: objectPath, Cause: fmt.Errorf("open staged file: %w", err)}
	}
	defer f.Close()

	published, err := p.store.Put(ctx, objectPath, st.Size(), f)
	if err != nil {
		return nil, &PublishError{ObjectPath: objectPath, Cause: err}
	}
	return published, nil
}

func removeStaged(localPath string) {
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		log.Printf("[publisher] WARN: remove staged file failed path=%s err=%v", localPath, err)
	}
}
