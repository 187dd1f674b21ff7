// internal/domain/issuance/entity.go
package issuance

import (
	"errors"
	"strings"
	"time"
)

// Step is the orchestration state an issuance request is currently in.
// Steps advance strictly in the order listed below; there is no branching back.
type Step string

const (
	StepIdle                      Step = "idle"
	StepPublishingAsset           Step = "publishing_asset"
	StepPublishingMetadata        Step = "publishing_metadata"
	StepCreatingMint              Step = "creating_mint"
	StepCreatingHoldingAccount    Step = "creating_holding_account"
	StepMintingSupply             Step = "minting_supply"
	StepPublishingOnChainMetadata Step = "publishing_onchain_metadata"
	StepRevokingAuthority         Step = "revoking_authority"
	StepComplete                  Step = "complete"
	StepFailed                    Step = "failed"
)

func IsValidStep(s Step) bool {
	switch s {
	case StepIdle, StepPublishingAsset, StepPublishingMetadata,
		StepCreatingMint, StepCreatingHoldingAccount, StepMintingSupply,
		StepPublishingOnChainMetadata, StepRevokingAuthority,
		StepComplete, StepFailed:
		return true
	default:
		return false
	}
}

var (
	ErrOriginatorRequired = errors.New("issuance: originator is required")
	ErrNameRequired       = errors.New("issuance: token name is required")
	ErrSymbolRequired     = errors.New("issuance: token symbol is required")
	ErrImageURLRequired   = errors.New("issuance: image source url is required")
	ErrSupplyRequired     = errors.New("issuance: initial supply is required")
	ErrSupplyInvalid      = errors.New("issuance: initial supply is not a valid amount")
	ErrFolderKeyRequired  = errors.New("issuance: staging folder key is required")

	// ErrInvalidSecretEncoding is returned when a signer secret cannot be
	// decoded as a base-58 ed25519 keypair of the expected length.
	ErrInvalidSecretEncoding = errors.New("issuance: invalid signer secret encoding")

	ErrNotFound = errors.New("issuance: not found")
)

// Request はフロントエンド（会話側）で収集済みの発行パラメータ一式です。
// オーケストレーターに渡された後は不変として扱います。
type Request struct {
	// Originator is the opaque channel the requesting user is reachable at
	// (chat id, mail address, ...). Status messages are emitted to it.
	Originator string

	Name        string
	Symbol      string
	ImageURL    string
	Description string

	// Decimals is collected from the user. Whether it is applied to the
	// on-chain mint precision depends on configuration; see
	// application/issuance.Usecase.
	Decimals uint8

	// InitialSupply is a whole-token amount as a decimal string. It is scaled
	// to base units by the orchestrator.
	InitialSupply string

	// SignerSecret is the base-58 encoded ed25519 keypair that pays fees and
	// holds every authority for this run. Never persisted.
	SignerSecret string

	// RevokeMintAuthority permanently disables further minting once the
	// initial supply has been minted. Irreversible.
	RevokeMintAuthority bool

	// FolderKey namespaces this request's staging files and storage objects.
	FolderKey string
}

// Validate checks the fields the orchestrator itself depends on.
// SignerSecret is deliberately not checked here; decoding it is the
// key manager's job and has its own error.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Originator) == "" {
		return ErrOriginatorRequired
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(r.Symbol) == "" {
		return ErrSymbolRequired
	}
	if strings.TrimSpace(r.ImageURL) == "" {
		return ErrImageURLRequired
	}
	if strings.TrimSpace(r.InitialSupply) == "" {
		return ErrSupplyRequired
	}
	if strings.TrimSpace(r.FolderKey) == "" {
		return ErrFolderKeyRequired
	}
	return nil
}

// SigningIdentity is a decoded keypair. Lifetime = one request's processing;
// it is never persisted or pooled.
type SigningIdentity struct {
	// PrivateKey is the raw 64-byte ed25519 keypair (seed + public key).
	PrivateKey []byte
	// Address is the base-58 public address derived from the keypair.
	Address string
}

// MintResult is the append-only record of the on-chain steps that completed.
// It exists for reporting; confirmed steps cannot be rolled back.
type MintResult struct {
	MintAddress           string
	HoldingAccountAddress string
	MetadataAddress       string
	MetadataURL           string
	ImageURL              string

	CreateMintSignature   string
	MintSupplySignature   string
	MetadataSignature     string
	RevokeSignature       string
	HoldingAccountCreated bool
}

// StepFailure wraps the first error encountered together with the step the
// orchestration was in. Terminal for the request; nothing is retried or
// compensated.
type StepFailure struct {
	Step  Step
	Cause error
}

func (f *StepFailure) Error() string {
	return "issuance failed at " + string(f.Step) + ": " + f.Cause.Error()
}

func (f *StepFailure) Unwrap() error { return f.Cause }

// Record is the ledger view of one issuance request: accepted parameters
// (minus the signer secret) plus progress and outcome. Callers that want to
// retry safely consult this record first — mint creation and supply minting
// are NOT idempotent.
type Record struct {
	ID         string // = FolderKey
	Originator string

	Name        string
	Symbol      string
	Description string
	Decimals    uint8
	Supply      string

	Step   Step
	Result *MintResult
	Error  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecord builds the initial ledger record for an accepted request.
func NewRecord(req Request, now time.Time) Record {
	return Record{
		ID:          strings.TrimSpace(req.FolderKey),
		Originator:  strings.TrimSpace(req.Originator),
		Name:        strings.TrimSpace(req.Name),
		Symbol:      strings.TrimSpace(req.Symbol),
		Description: req.Description,
		Decimals:    req.Decimals,
		Supply:      strings.TrimSpace(req.InitialSupply),
		Step:        StepIdle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
