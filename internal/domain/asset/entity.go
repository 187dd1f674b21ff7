// internal/domain/asset/entity.go
package asset

// PublishedAsset is the immutable outcome of one successful publish to
// durable object storage.
type PublishedAsset struct {
	// PublicURL is the storage-assigned public location of the object.
	PublicURL string
	// ObjectPath is the key within the bucket, e.g. "{folderKey}/icon.png".
	ObjectPath string
	// ContentType was inferred from the object path's extension.
	ContentType string
	// Size is the byte size the object was uploaded with.
	Size int64
}

// TokenMetadataDocument is the publicly fetchable metadata JSON published
// next to the asset. Its URL is what ends up in the on-chain record.
//
// Schema (fixed): { name, symbol, image, description, decimals }
type TokenMetadataDocument struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Decimals    uint8  `json:"decimals"`
}
