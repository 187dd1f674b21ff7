package gcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTypeForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"folder-1/image.png", "image/png"},
		{"folder-1/photo.JPG", "image/jpeg"},
		{"folder-1/anim.webp", "image/webp"},
		{"folder-1/metadata.json", "application/json"},
		{"folder-1/blob", "application/octet-stream"},
		{"folder-1/archive.unknownext", "application/octet-stream"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ContentTypeForPath(tt.path), tt.path)
	}
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t,
		"https://storage.googleapis.com/my-bucket/folder-1/image.png",
		PublicURL("my-bucket", "/folder-1/image.png"),
	)
}
