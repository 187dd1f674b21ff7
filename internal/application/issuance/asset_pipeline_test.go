package issuance

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetPipeline_PublishRemote_Success(t *testing.T) {
	root := t.TempDir()
	store := &fakeStore{}
	fetcher := &fakeFetcher{payload: []byte("png")}
	pipeline := NewAssetPipeline(fetcher, NewStagedPublisher(store), root)

	asset, err := pipeline.PublishRemote(context.Background(), "https://example.com/a.png", "image.png", "folder-1")
	require.NoError(t, err)
	require.NotNil(t, asset)

	// バケット側はスラッシュ区切り、ローカル側は folderKey を前置した連結名
	assert.Equal(t, []string{"folder-1/image.png"}, store.paths())
	_, statErr := os.Stat(filepath.Join(root, "folder-1image.png"))
	assert.True(t, os.IsNotExist(statErr), "staged file must be cleaned up")
}

func TestAssetPipeline_PublishRemote_FetchFailurePublishesNothing(t *testing.T) {
	root := t.TempDir()
	store := &fakeStore{}
	cause := errors.New("connect refused")
	pipeline := NewAssetPipeline(&fakeFetcher{err: cause}, NewStagedPublisher(store), root)

	asset, err := pipeline.PublishRemote(context.Background(), "https://example.com/a.png", "image.png", "folder-1")
	require.Error(t, err)
	assert.Nil(t, asset)
	assert.ErrorIs(t, err, ErrAssetPublish)
	assert.ErrorIs(t, err, cause)

	assert.Empty(t, store.paths(), "fetch failure must not create any object")
}

func TestAssetPipeline_PublishRemote_EmptyFetchIsError(t *testing.T) {
	pipeline := NewAssetPipeline(&fakeFetcher{payload: nil}, NewStagedPublisher(&fakeStore{}), t.TempDir())

	asset, err := pipeline.PublishRemote(context.Background(), "https://example.com/a.png", "image.png", "folder-1")
	require.Error(t, err)
	assert.Nil(t, asset)
	assert.ErrorIs(t, err, ErrAssetPublish)
}

func TestAssetPipeline_PublishRemote_RejectsEmptyKeys(t *testing.T) {
	pipeline := NewAssetPipeline(&fakeFetcher{}, NewStagedPublisher(&fakeStore{}), t.TempDir())

	_, err := pipeline.PublishRemote(context.Background(), "https://example.com/a.png", "image.png", "  ")
	assert.ErrorIs(t, err, ErrAssetPublish)

	_, err = pipeline.PublishRemote(context.Background(), "https://example.com/a.png", "", "folder-1")
	assert.ErrorIs(t, err, ErrAssetPublish)
}
