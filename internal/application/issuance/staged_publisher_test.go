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

func stageFile(t *testing.T, payload []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "staged.bin")
	require.NoError(t, os.WriteFile(p, payload, 0o644))
	return p
}

func TestStagedPublisher_Publish_Success(t *testing.T) {
	store := &fakeStore{}
	pub := NewStagedPublisher(store)
	staged := stageFile(t, []byte("image-bytes"))

	asset, err := pub.Publish(context.Background(), staged, "folder-1/image.png")
	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.Equal(t, "folder-1/image.png", asset.ObjectPath)
	assert.Equal(t, int64(len("image-bytes")), asset.Size)

	// 成功時もステージングファイルは消える
	_, statErr := os.Stat(staged)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStagedPublisher_Publish_ZeroByteSkipped(t *testing.T) {
	store := &fakeStore{}
	pub := NewStagedPublisher(store)
	staged := stageFile(t, nil)

	asset, err := pub.Publish(context.Background(), staged, "folder-1/image.png")
	require.NoError(t, err)
	assert.Nil(t, asset)

	// オブジェクトは作られず、ファイルは削除される
	assert.Empty(t, store.paths())
	_, statErr := os.Stat(staged)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStagedPublisher_Publish_StoreFailureStillCleansUp(t *testing.T) {
	cause := errors.New("bucket unavailable")
	store := &fakeStore{err: cause}
	pub := NewStagedPublisher(store)
	staged := stageFile(t, []byte("image-bytes"))

	asset, err := pub.Publish(context.Background(), staged, "folder-1/image.png")
	require.Error(t, err)
	assert.Nil(t, asset)

	var pubErr *PublishError
	require.True(t, errors.As(err, &pubErr))
	assert.Equal(t, "folder-1/image.png", pubErr.ObjectPath)
	assert.ErrorIs(t, err, cause)

	// 失敗してもステージングファイルは残さない
	_, statErr := os.Stat(staged)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStagedPublisher_Publish_MissingFile(t *testing.T) {
	pub := NewStagedPublisher(&fakeStore{})

	asset, err := pub.Publish(context.Background(), filepath.Join(t.TempDir(), "absent.bin"), "folder-1/image.png")
	require.Error(t, err)
	assert.Nil(t, asset)

	var pubErr *PublishError
	assert.True(t, errors.As(err, &pubErr))
}
