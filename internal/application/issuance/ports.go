// internal/application/issuance/ports.go
package issuance

import (
	"context"
	"io"

	assetdom "tokenforge/internal/domain/asset"
	issdom "tokenforge/internal/domain/issuance"
)

// AssetFetcher downloads a remote asset into a local staging file.
// 実装: infra/fetch.HTTPFetcher
type AssetFetcher interface {
	Fetch(ctx context.Context, sourceURL, destPath string) error
}

// ObjectStore streams bytes into durable public storage under objectPath.
// The returned asset carries the storage-assigned public URL and the content
// type the store inferred from the object path.
// 実装: adapters/out/gcs.AssetRepositoryGCS
type ObjectStore interface {
	Put(ctx context.Context, objectPath string, size int64, body io.Reader) (*assetdom.PublishedAsset, error)
}

// SecretDecoder turns a caller-supplied encoded secret into a usable signing
// identity for one run.
// 実装: infra/solana.KeyManager
type SecretDecoder interface {
	Decode(secret string) (issdom.SigningIdentity, error)
}

// TokenMinter performs the ordered on-chain operations. Every call waits for
// "confirmed" commitment before returning; a returned signature therefore
// refers to irreversible state.
// 実装: infra/solana.Minter
type TokenMinter interface {
	// CreateMint creates a new token mint with the given precision.
	// Mint authority = signer, freeze authority = none.
	CreateMint(ctx context.Context, signer issdom.SigningIdentity, decimals uint8) (mintAddr, sig string, err error)

	// GetOrCreateHoldingAccount derives the signer's associated token account
	// for the mint and creates it when absent. Idempotent per (owner, mint).
	GetOrCreateHoldingAccount(ctx context.Context, signer issdom.SigningIdentity, mintAddr string) (holdingAddr string, created bool, sig string, err error)

	// MintSupply mints amount base units into holdingAddr. NOT idempotent.
	MintSupply(ctx context.Context, signer issdom.SigningIdentity, mintAddr, holdingAddr string, amount uint64) (sig string, err error)

	// CreateMetadata creates the program-derived on-chain metadata record
	// for the mint, pointing at metadataURL.
	CreateMetadata(ctx context.Context, signer issdom.SigningIdentity, mintAddr, name, symbol, metadataURL string) (metadataAddr, sig string, err error)

	// RevokeMintAuthority sets the mint's minting authority to none.
	// Irreversible once confirmed.
	RevokeMintAuthority(ctx context.Context, signer issdom.SigningIdentity, mintAddr string) (sig string, err error)
}
