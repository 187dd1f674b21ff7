// internal/infra/solana/key_manager.go
package solana

import (
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"

	issdom "tokenforge/internal/domain/issuance"
)

// ed25519 keypair = seed(32) + public key(32)
const keypairLength = 64

// KeyManager decodes caller-supplied base-58 signer secrets into signing
// identities. Optionally carries a service-held fallback signer (loaded from
// Secret Manager) used when a request brings no secret of its own.
type KeyManager struct {
	fallback *issdom.SigningIdentity
}

func NewKeyManager(fallback *issdom.SigningIdentity) *KeyManager {
	return &KeyManager{fallback: fallback}
}

// Decode は base-58 の秘密鍵文字列を検証付きで復号します。
// 失敗は全て issuance.ErrInvalidSecretEncoding に包んで返します。
func (m *KeyManager) Decode(secret string) (issdom.SigningIdentity, error) {
	s := strings.TrimSpace(secret)
	if s == "" {
		if m != nil && m.fallback != nil {
			return *m.fallback, nil
		}
		return issdom.SigningIdentity{}, fmt.Errorf("%w: secret is empty and no service signer is configured", issdom.ErrInvalidSecretEncoding)
	}

	raw, err := base58.Decode(s)
	if err != nil {
		return issdom.SigningIdentity{}, fmt.Errorf("%w: %v", issdom.ErrInvalidSecretEncoding, err)
	}
	if len(raw) != keypairLength {
		return issdom.SigningIdentity{}, fmt.Errorf("%w: got %d bytes, want %d", issdom.ErrInvalidSecretEncoding, len(raw), keypairLength)
	}

	acc, err := types.AccountFromBytes(raw)
	if err != nil {
		return issdom.SigningIdentity{}, fmt.Errorf("%w: %v", issdom.ErrInvalidSecretEncoding, err)
	}

	return issdom.SigningIdentity{
		PrivateKey: raw,
		Address:    acc.PublicKey.ToBase58(),
	}, nil
}

// PublicAddress derives the base-58 public address for a secret.
// 空文字はエラーではなく空文字を返す（明示的な no-op ポリシー）。
func (m *KeyManager) PublicAddress(secret string) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", nil
	}
	id, err := m.Decode(secret)
	if err != nil {
		return "", err
	}
	return id.Address, nil
}
