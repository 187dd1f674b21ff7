// internal/infra/solana/minter.go
package solana

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"

	issdom "tokenforge/internal/domain/issuance"
)

var (
	ErrMinterNotConfigured = errors.New("minter: not configured")
	ErrMintAddressEmpty    = errors.New("minter: mintAddress is empty")

	// ErrInsufficientFunds is the dominant real-world failure: the signer
	// cannot pay rent/fees. Surfaced so callers can hint at funding.
	ErrInsufficientFunds = errors.New("minter: insufficient funds for transaction")
)

const (
	defaultConfirmTimeout = 90 * time.Second
	defaultPollInterval   = 2 * time.Second
)

// Minter executes the on-chain half of an issuance with the request's own
// signer. Every submission is polled until "confirmed" commitment — a
// returned signature refers to state that cannot be rolled back.
type Minter struct {
	RPC *client.Client

	ConfirmTimeout time.Duration
	PollInterval   time.Duration
}

// NewMinter constructs the minter.
// RPC URL resolves from SOLANA_RPC_URL if rpcURL is empty, then devnet.
func NewMinter(rpcURL string) *Minter {
	u := strings.TrimSpace(rpcURL)
	if u == "" {
		u = strings.TrimSpace(os.Getenv("SOLANA_RPC_URL"))
	}
	if u == "" {
		u = rpc.DevnetRPCEndpoint
	}
	return &Minter{
		RPC:            client.NewClient(u),
		ConfirmTimeout: defaultConfirmTimeout,
		PollInterval:   defaultPollInterval,
	}
}

// CreateMint creates and initializes a new token mint.
// Mint authority = signer, freeze authority = none.
func (m *Minter) CreateMint(ctx context.Context, signer issdom.SigningIdentity, decimals uint8) (string, string, error) {
	if m == nil || m.RPC == nil {
		return "", "", ErrMinterNotConfigured
	}

	feePayer, err := signerAccount(signer)
	if err != nil {
		return "", "", err
	}

	mint := types.NewAccount()

	rent, err := m.RPC.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return "", "", fmt.Errorf("minter: GetMinimumBalanceForRentExemption: %w", err)
	}

	recent, err := m.RPC.GetLatestBlockhash(ctx)
	if err != nil {
		return "", "", fmt.Errorf("minter: GetLatestBlockhash: %w", err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{feePayer, mint},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        feePayer.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions: []types.Instruction{
				system.CreateAccount(system.CreateAccountParam{
					From:     feePayer.PublicKey,
					New:      mint.PublicKey,
					Owner:    common.TokenProgramID,
					Lamports: rent,
					Space:    token.MintAccountSize,
				}),
				token.InitializeMint(token.InitializeMintParam{
					Decimals: decimals,
					Mint:     mint.PublicKey,
					MintAuth: feePayer.PublicKey,
					// freeze authority は設定しない
					FreezeAuth: nil,
				}),
			},
		}),
	})
	if err != nil {
		return "", "", fmt.Errorf("minter: NewTransaction: %w", err)
	}

	sig, err := m.sendAndConfirm(ctx, tx)
	if err != nil {
		if sig == "" {
			return "", "", err
		}
		// 送信は済んでいる。confirm 待ちに失敗しても後から confirmed に
		// なり得るので、生成済みのアドレスと署名は捨てずに返す。
		return mint.PublicKey.ToBase58(), sig, err
	}

	log.Printf("[minter] mint created mint=%s decimals=%d tx=%s", maskShort(mint.PublicKey.ToBase58()), decimals, maskShort(sig))
	return mint.PublicKey.ToBase58(), sig, nil
}

// GetOrCreateHoldingAccount derives the signer's associated token account for
// the mint and creates it when absent. Existing accounts are reused as-is.
func (m *Minter) GetOrCreateHoldingAccount(ctx context.Context, signer issdom.SigningIdentity, mintAddr string) (string, bool, string, error) {
	if m == nil || m.RPC == nil {
		return "", false, "", ErrMinterNotConfigured
	}
	if strings.TrimSpace(mintAddr) == "" {
		return "", false, "", ErrMintAddressEmpty
	}

	owner, err := signerAccount(signer)
	if err != nil {
		return "", false, "", err
	}

	mint := common.PublicKeyFromString(mintAddr)
	ata, _, err := common.FindAssociatedTokenAddress(owner.PublicKey, mint)
	if err != nil {
		return "", false, "", fmt.Errorf("minter: FindAssociatedTokenAddress: %w", err)
	}

	exists, err := m.accountExists(ctx, ata.ToBase58())
	if err != nil {
		return "", false, "", fmt.Errorf("minter: check holding account: %w", err)
	}
	if exists {
		log.Printf("[minter] holding account exists ata=%s mint=%s", maskShort(ata.ToBase58()), maskShort(mintAddr))
		return ata.ToBase58(), false, "", nil
	}

	recent, err := m.RPC.GetLatestBlockhash(ctx)
	if err != nil {
		return "", false, "", fmt.Errorf("minter: GetLatestBlockhash: %w", err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{owner},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        owner.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions: []types.Instruction{
				associated_token_account.CreateAssociatedTokenAccount(
					associated_token_account.CreateAssociatedTokenAccountParam{
						Funder:                 owner.PublicKey,
						Owner:                  owner.PublicKey,
						Mint:                   mint,
						AssociatedTokenAccount: ata,
					},
				),
			},
		}),
	})
	if err != nil {
		return "", false, "", fmt.Errorf("minter: NewTransaction: %w", err)
	}

	sig, err := m.sendAndConfirm(ctx, tx)
	if err != nil {
		if sig == "" {
			return "", false, "", err
		}
		// ATA アドレスは決定的なので、confirm 待ち失敗でも返しておく
		return ata.ToBase58(), false, sig, err
	}

	log.Printf("[minter] holding account created ata=%s mint=%s tx=%s", maskShort(ata.ToBase58()), maskShort(mintAddr), maskShort(sig))
	return ata.ToBase58(), true, sig, nil
}

// MintSupply mints amount base units into holdingAddr. Not idempotent.
func (m *Minter) MintSupply(ctx context.Context, signer issdom.SigningIdentity, mintAddr, holdingAddr string, amount uint64) (string, error) {
	if m == nil || m.RPC == nil {
		return "", ErrMinterNotConfigured
	}
	if strings.TrimSpace(mintAddr) == "" {
		return "", ErrMintAddressEmpty
	}

	owner, err := signerAccount(signer)
	if err != nil {
		return "", err
	}

	recent, err := m.RPC.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("minter: GetLatestBlockhash: %w", err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{owner},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        owner.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions: []types.Instruction{
				token.MintTo(token.MintToParam{
					Mint:   common.PublicKeyFromString(mintAddr),
					To:     common.PublicKeyFromString(holdingAddr),
					Auth:   owner.PublicKey,
					Amount: amount,
				}),
			},
		}),
	})
	if err != nil {
		return "", fmt.Errorf("minter: NewTransaction: %w", err)
	}

	sig, err := m.sendAndConfirm(ctx, tx)
	if err != nil {
		return sig, err
	}

	log.Printf("[minter] supply minted mint=%s to=%s amount=%d tx=%s", maskShort(mintAddr), maskShort(holdingAddr), amount, maskShort(sig))
	return sig, nil
}

// CreateMetadata creates the Metaplex metadata record for the mint at its
// program-derived address.
// レコード内容: uri=metadataURL, sellerFee=0, creators/collection/uses なし, mutable。
func (m *Minter) CreateMetadata(ctx context.Context, signer issdom.SigningIdentity, mintAddr, name, symbol, metadataURL string) (string, string, error) {
	if m == nil || m.RPC == nil {
		return "", "", ErrMinterNotConfigured
	}
	if strings.TrimSpace(mintAddr) == "" {
		return "", "", ErrMintAddressEmpty
	}

	owner, err := signerAccount(signer)
	if err != nil {
		return "", "", err
	}

	mint := common.PublicKeyFromString(mintAddr)

	metadataPubkey, err := token_metadata.GetTokenMetaPubkey(mint)
	if err != nil {
		return "", "", fmt.Errorf("minter: GetTokenMetaPubkey: %w", err)
	}

	recent, err := m.RPC.GetLatestBlockhash(ctx)
	if err != nil {
		return "", "", fmt.Errorf("minter: GetLatestBlockhash: %w", err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{owner},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        owner.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions: []types.Instruction{
				token_metadata.CreateMetadataAccountV3(
					token_metadata.CreateMetadataAccountV3Param{
						Metadata:                metadataPubkey,
						Mint:                    mint,
						MintAuthority:           owner.PublicKey,
						UpdateAuthority:         owner.PublicKey,
						Payer:                   owner.PublicKey,
						UpdateAuthorityIsSigner: true,
						IsMutable:               true,
						Data: token_metadata.DataV2{
							Name:                 name,
							Symbol:               symbol,
							Uri:                  metadataURL,
							SellerFeeBasisPoints: 0,
							Creators:             nil,
							Collection:           nil,
							Uses:                 nil,
						},
						CollectionDetails: nil,
					},
				),
			},
		}),
	})
	if err != nil {
		return "", "", fmt.Errorf("minter: NewTransaction: %w", err)
	}

	sig, err := m.sendAndConfirm(ctx, tx)
	if err != nil {
		if sig == "" {
			return "", "", err
		}
		// metadata PDA も mint から決定的に導出されるので返しておく
		return metadataPubkey.ToBase58(), sig, err
	}

	log.Printf("[minter] metadata created metadata=%s mint=%s tx=%s", maskShort(metadataPubkey.ToBase58()), maskShort(mintAddr), maskShort(sig))
	return metadataPubkey.ToBase58(), sig, nil
}

// RevokeMintAuthority sets the mint's minting authority to none.
// confirmed された時点で取り消し不能になる。
func (m *Minter) RevokeMintAuthority(ctx context.Context, signer issdom.SigningIdentity, mintAddr string) (string, error) {
	if m == nil || m.RPC == nil {
		return "", ErrMinterNotConfigured
	}
	if strings.TrimSpace(mintAddr) == "" {
		return "", ErrMintAddressEmpty
	}

	owner, err := signerAccount(signer)
	if err != nil {
		return "", err
	}

	recent, err := m.RPC.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("minter: GetLatestBlockhash: %w", err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{owner},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        owner.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions: []types.Instruction{
				token.SetAuthority(token.SetAuthorityParam{
					Account:  common.PublicKeyFromString(mintAddr),
					NewAuth:  nil, // authority を恒久的に外す
					AuthType: token.AuthorityTypeMintTokens,
					Auth:     owner.PublicKey,
					Signers:  []common.PublicKey{},
				}),
			},
		}),
	})
	if err != nil {
		return "", fmt.Errorf("minter: NewTransaction: %w", err)
	}

	sig, err := m.sendAndConfirm(ctx, tx)
	if err != nil {
		return sig, err
	}

	log.Printf("[minter] mint authority revoked mint=%s tx=%s", maskShort(mintAddr), maskShort(sig))
	return sig, nil
}

// sendAndConfirm submits the transaction and polls until the cluster reports
// at least "confirmed" commitment for its signature.
func (m *Minter) sendAndConfirm(ctx context.Context, tx types.Transaction) (string, error) {
	sig, err := m.RPC.SendTransaction(ctx, tx)
	if err != nil {
		if isInsufficientFunds(err) {
			return "", fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
		}
		return "", fmt.Errorf("minter: SendTransaction: %w", err)
	}

	if err := m.waitConfirmed(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

func (m *Minter) waitConfirmed(ctx context.Context, sig string) error {
	confirmTimeout := m.ConfirmTimeout
	if confirmTimeout <= 0 {
		confirmTimeout = defaultConfirmTimeout
	}
	pollInterval := m.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	deadline := time.Now().Add(confirmTimeout)
	for {
		status, err := m.RPC.GetSignatureStatus(ctx, sig)
		if err != nil {
			log.Printf("[minter] WARN: GetSignatureStatus tx=%s err=%v", maskShort(sig), err)
		} else if status != nil {
			if status.Err != nil {
				return fmt.Errorf("minter: transaction %s failed on chain: %v", sig, status.Err)
			}
			if status.ConfirmationStatus != nil {
				switch *status.ConfirmationStatus {
				case rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
					return nil
				}
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("minter: transaction %s not confirmed within %s", sig, confirmTimeout)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("minter: confirm wait canceled for %s: %w", sig, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

func (m *Minter) accountExists(ctx context.Context, address string) (bool, error) {
	addr := strings.TrimSpace(address)
	if addr == "" {
		return false, nil
	}

	_, err := m.RPC.GetAccountInfo(ctx, addr)
	if err == nil {
		return true, nil
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "not found") ||
		strings.Contains(msg, "could not find account") ||
		strings.Contains(msg, "invalid param") ||
		strings.Contains(msg, "account does not exist") {
		return false, nil
	}
	return false, err
}

func signerAccount(signer issdom.SigningIdentity) (types.Account, error) {
	if len(signer.PrivateKey) != keypairLength {
		return types.Account{}, fmt.Errorf("minter: invalid signer key length: got %d, want %d", len(signer.PrivateKey), keypairLength)
	}
	acc, err := types.AccountFromBytes(signer.PrivateKey)
	if err != nil {
		return types.Account{}, fmt.Errorf("minter: AccountFromBytes: %w", err)
	}
	return acc, nil
}

func isInsufficientFunds(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "insufficient funds") ||
		strings.Contains(msg, "insufficient lamports") ||
		strings.Contains(msg, "attempt to debit an account")
}

func maskShort(s string) string {
	t := strings.TrimSpace(s)
	if len(t) <= 10 {
		return t
	}
	return t[:4] + "***" + t[len(t)-4:]
}
