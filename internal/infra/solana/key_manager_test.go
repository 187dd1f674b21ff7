package solana

import (
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	issdom "tokenforge/internal/domain/issuance"
)

func TestKeyManager_Decode_Valid(t *testing.T) {
	acc := types.NewAccount()
	secret := base58.Encode(acc.PrivateKey)

	m := NewKeyManager(nil)
	id, err := m.Decode(secret)
	require.NoError(t, err)
	assert.Equal(t, acc.PublicKey.ToBase58(), id.Address)
	assert.Len(t, id.PrivateKey, keypairLength)
}

func TestKeyManager_Decode_MalformedBase58(t *testing.T) {
	m := NewKeyManager(nil)
	_, err := m.Decode("not-base58-0OIl!!")
	assert.ErrorIs(t, err, issdom.ErrInvalidSecretEncoding)
}

func TestKeyManager_Decode_WrongLength(t *testing.T) {
	m := NewKeyManager(nil)
	// 正しい base58 だが 64 バイトではない
	short := base58.Encode([]byte("only-ten-b"))
	_, err := m.Decode(short)
	assert.ErrorIs(t, err, issdom.ErrInvalidSecretEncoding)
}

func TestKeyManager_Decode_EmptyWithoutFallback(t *testing.T) {
	m := NewKeyManager(nil)
	_, err := m.Decode("   ")
	assert.ErrorIs(t, err, issdom.ErrInvalidSecretEncoding)
}

func TestKeyManager_Decode_EmptyUsesFallback(t *testing.T) {
	acc := types.NewAccount()
	fallback := issdom.SigningIdentity{
		PrivateKey: acc.PrivateKey,
		Address:    acc.PublicKey.ToBase58(),
	}

	m := NewKeyManager(&fallback)
	id, err := m.Decode("")
	require.NoError(t, err)
	assert.Equal(t, fallback.Address, id.Address)
}

func TestKeyManager_PublicAddress(t *testing.T) {
	acc := types.NewAccount()
	m := NewKeyManager(nil)

	addr, err := m.PublicAddress(base58.Encode(acc.PrivateKey))
	require.NoError(t, err)
	assert.Equal(t, acc.PublicKey.ToBase58(), addr)

	// 空の secret は no-op（フォールバックすら引かない）
	addr, err = m.PublicAddress("")
	require.NoError(t, err)
	assert.Empty(t, addr)

	_, err = m.PublicAddress("!!bad!!")
	assert.ErrorIs(t, err, issdom.ErrInvalidSecretEncoding)
}
