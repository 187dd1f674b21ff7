package issuance

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	assetdom "tokenforge/internal/domain/asset"
)

func TestMetadataPublisher_Publish(t *testing.T) {
	store := &fakeStore{}
	pub := NewMetadataPublisher(NewStagedPublisher(store), t.TempDir())

	doc := assetdom.TokenMetadataDocument{
		Name:        "Narra Coin",
		Symbol:      "NRC",
		Image:       "https://storage.example.com/bucket/folder-1/image.png",
		Description: "community token",
		Decimals:    9,
	}

	url, err := pub.Publish(context.Background(), doc, "folder-1")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/bucket/folder-1/metadata.json", url)

	require.Len(t, store.objects, 1)
	assert.Equal(t, "folder-1/metadata.json", store.objects[0].Path)

	var got assetdom.TokenMetadataDocument
	require.NoError(t, json.Unmarshal(store.objects[0].Body, &got))
	assert.Equal(t, doc, got)
}

func TestMetadataPublisher_Publish_EmptyFolderKey(t *testing.T) {
	pub := NewMetadataPublisher(NewStagedPublisher(&fakeStore{}), t.TempDir())

	_, err := pub.Publish(context.Background(), assetdom.TokenMetadataDocument{Name: "x"}, "   ")
	require.Error(t, err)
}
