// internal/application/issuance/usecase.go
package issuance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"path"
	"strings"
	"time"

	assetdom "tokenforge/internal/domain/asset"
	issdom "tokenforge/internal/domain/issuance"
)

// fixedMintDecimals is the mint precision the original flow always used,
// regardless of the request's own decimals field. The request value is only
// applied when UseRequestDecimals is set; see DESIGN.md.
const fixedMintDecimals = uint8(9)

// Usecase is the mint orchestrator: one sequential state machine per
// issuance request. No retries, no compensating transactions — every step
// failure is terminal for the request and is reported to the originator.
type Usecase struct {
	pipeline *AssetPipeline
	metadata *MetadataPublisher
	secrets  SecretDecoder
	minter   TokenMinter
	notifier issdom.NotifierPort
	ledger   issdom.RepositoryPort // optional; nil disables the ledger

	useRequestDecimals bool
}

// UsecaseParams bundles the orchestrator's collaborators.
type UsecaseParams struct {
	Pipeline *AssetPipeline
	Metadata *MetadataPublisher
	Secrets  SecretDecoder
	Minter   TokenMinter
	Notifier issdom.NotifierPort
	Ledger   issdom.RepositoryPort

	UseRequestDecimals bool
}

func NewUsecase(p UsecaseParams) *Usecase {
	return &Usecase{
		pipeline:           p.Pipeline,
		metadata:           p.Metadata,
		secrets:            p.Secrets,
		minter:             p.Minter,
		notifier:           p.Notifier,
		ledger:             p.Ledger,
		useRequestDecimals: p.UseRequestDecimals,
	}
}

// ValidateRequest checks, without side effects, that Run would accept req.
// 202 を返す前の HTTP 境界での事前検証用。ここを通ったリクエストが
// 供給量起因で即死することはない。
func (u *Usecase) ValidateRequest(req issdom.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := scaleSupply(req.InitialSupply, u.effectiveDecimals(req))
	return err
}

func (u *Usecase) effectiveDecimals(req issdom.Request) uint8 {
	if u != nil && u.useRequestDecimals {
		return req.Decimals
	}
	return fixedMintDecimals
}

// Run drives one request from Idle to Complete (or Failed).
//
// The returned MintResult is the append-only log of the steps that DID
// complete; on failure it is returned alongside the error so callers can
// report partial on-chain state. Confirmed steps cannot be undone — a blind
// retry of a failed request re-runs mint creation and supply minting, which
// are not idempotent.
func (u *Usecase) Run(ctx context.Context, req issdom.Request) (*issdom.MintResult, error) {
	start := time.Now()

	if u == nil {
		return nil, errors.New("issuance: usecase is nil")
	}
	if u.pipeline == nil || u.metadata == nil || u.secrets == nil || u.minter == nil {
		return nil, errors.New("issuance: usecase is missing collaborators")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	decimals := u.effectiveDecimals(req)
	res := &issdom.MintResult{}

	// 供給量のパースはどのステップよりも先に（一番安く失敗できる場所で）行う。
	// ここで弾かれても発信者への通知と台帳の Failed 遷移は省略しない
	// （非同期で受理された後に黙って消えるリクエストを作らない）。
	amount, err := scaleSupply(req.InitialSupply, decimals)
	if err != nil {
		return u.fail(ctx, req, res, issdom.StepIdle, err, start)
	}

	log.Printf(
		"[issuance] run start folder=%s name=%q symbol=%q decimals=%d amount=%d revoke=%t",
		req.FolderKey, req.Name, req.Symbol, decimals, amount, req.RevokeMintAuthority,
	)
	u.notify(ctx, req.Originator, "Sending your transaction...")

	// 1) PublishingAsset — オンチェーン処理前の最も安価な失敗点
	u.advance(ctx, req, issdom.StepPublishingAsset, "Publishing token image...")
	published, err := u.pipeline.PublishRemote(ctx, req.ImageURL, assetFileName(req.ImageURL), req.FolderKey)
	if err != nil {
		return u.fail(ctx, req, res, issdom.StepPublishingAsset, err, start)
	}
	res.ImageURL = published.PublicURL

	// 2) PublishingMetadata — URL が空でもここでは致命としない（後段の
	//    オンチェーンレコードが不完全になるだけ）。
	u.advance(ctx, req, issdom.StepPublishingMetadata, "Publishing token metadata...")
	metadataURL, err := u.metadata.Publish(ctx, assetdom.TokenMetadataDocument{
		Name:        req.Name,
		Symbol:      req.Symbol,
		Image:       published.PublicURL,
		Description: req.Description,
		Decimals:    req.Decimals,
	}, req.FolderKey)
	if err != nil {
		return u.fail(ctx, req, res, issdom.StepPublishingMetadata, err, start)
	}
	if metadataURL == "" {
		log.Printf("[issuance] WARN: metadata url is empty folder=%s (on-chain record will be incomplete)", req.FolderKey)
	}
	res.MetadataURL = metadataURL

	// 3) CreatingMint — 署名キーの復号もこの遷移の一部。復号に失敗した
	//    リクエストはチェーンに一切触れずに終わる。
	u.advance(ctx, req, issdom.StepCreatingMint, "Creating token mint...")
	signer, err := u.secrets.Decode(req.SignerSecret)
	if err != nil {
		return u.fail(ctx, req, res, issdom.StepCreatingMint, err, start)
	}
	log.Printf("[issuance] signer=%s folder=%s", maskShort(signer.Address), req.FolderKey)

	// 各ステップの返り値はエラーでも先に記録する。confirm 待ちに失敗した
	// トランザクションは後から confirmed になり得るため、部分結果の方が正。
	mintAddr, createSig, err := u.minter.CreateMint(ctx, signer, decimals)
	res.MintAddress = mintAddr
	res.CreateMintSignature = createSig
	if err != nil {
		return u.fail(ctx, req, res, issdom.StepCreatingMint, err, start)
	}

	// 4) CreatingHoldingAccount — (owner, mint) 毎に冪等
	u.advance(ctx, req, issdom.StepCreatingHoldingAccount, "Preparing holding account...")
	holdingAddr, created, _, err := u.minter.GetOrCreateHoldingAccount(ctx, signer, mintAddr)
	res.HoldingAccountAddress = holdingAddr
	res.HoldingAccountCreated = created
	if err != nil {
		return u.fail(ctx, req, res, issdom.StepCreatingHoldingAccount, err, start)
	}

	// 5) MintingSupply — 冪等ではない。再実行すれば二重供給になる。
	u.advance(ctx, req, issdom.StepMintingSupply, "Minting initial supply...")
	mintSig, err := u.minter.MintSupply(ctx, signer, mintAddr, holdingAddr, amount)
	res.MintSupplySignature = mintSig
	if err != nil {
		return u.fail(ctx, req, res, issdom.StepMintingSupply, err, start)
	}

	// 6) PublishingOnChainMetadata — confirmed を待ってから次へ
	u.advance(ctx, req, issdom.StepPublishingOnChainMetadata, "Publishing on-chain metadata...")
	metadataAddr, metaSig, err := u.minter.CreateMetadata(ctx, signer, mintAddr, req.Name, req.Symbol, metadataURL)
	res.MetadataAddress = metadataAddr
	res.MetadataSignature = metaSig
	if err != nil {
		return u.fail(ctx, req, res, issdom.StepPublishingOnChainMetadata, err, start)
	}

	// 7) RevokingAuthority（要求時のみ）— confirmed されたら二度と戻せない
	if req.RevokeMintAuthority {
		u.advance(ctx, req, issdom.StepRevokingAuthority, "Revoking mint authority...")
		revokeSig, err := u.minter.RevokeMintAuthority(ctx, signer, mintAddr)
		res.RevokeSignature = revokeSig
		if err != nil {
			return u.fail(ctx, req, res, issdom.StepRevokingAuthority, err, start)
		}
	}

	u.advance(ctx, req, issdom.StepComplete, "")
	if u.ledger != nil {
		if err := u.ledger.MarkComplete(ctx, req.FolderKey, *res); err != nil {
			log.Printf("[issuance] WARN: ledger mark complete failed folder=%s err=%v", req.FolderKey, err)
		}
	}
	u.notify(ctx, req.Originator, fmt.Sprintf("Done! Mint address: %s", mintAddr))

	log.Printf("[issuance] run complete folder=%s mint=%s elapsed=%s", req.FolderKey, maskShort(mintAddr), time.Since(start))
	return res, nil
}

// fail reports the terminal failure and returns the partial result.
// 既に confirmed 済みのオンチェーンステップへの補償は行わない（不可能）。
func (u *Usecase) fail(ctx context.Context, req issdom.Request, res *issdom.MintResult, step issdom.Step, cause error, start time.Time) (*issdom.MintResult, error) {
	log.Printf("[issuance] failed step=%s folder=%s err=%v elapsed=%s", step, req.FolderKey, cause, time.Since(start))

	u.notify(ctx, req.Originator, "Error: "+cause.Error())
	// 実運用で圧倒的に多い失敗要因は手数料残高不足なので、定型ヒントを常に添える
	u.notify(ctx, req.Originator, "Please check your balance and try again.")

	if u.ledger != nil {
		if err := u.ledger.MarkFailed(ctx, req.FolderKey, step, cause.Error()); err != nil {
			log.Printf("[issuance] WARN: ledger mark failed failed folder=%s err=%v", req.FolderKey, err)
		}
	}

	return res, &issdom.StepFailure{Step: step, Cause: cause}
}

func (u *Usecase) advance(ctx context.Context, req issdom.Request, step issdom.Step, message string) {
	log.Printf("[issuance] step=%s folder=%s", step, req.FolderKey)
	if message != "" {
		u.notify(ctx, req.Originator, message)
	}
	if u.ledger != nil {
		if err := u.ledger.UpdateStep(ctx, req.FolderKey, step); err != nil {
			log.Printf("[issuance] WARN: ledger update step failed folder=%s step=%s err=%v", req.FolderKey, step, err)
		}
	}
}

func (u *Usecase) notify(ctx context.Context, originator, message string) {
	if u.notifier == nil {
		return
	}
	u.notifier.Notify(ctx, originator, message)
}

// assetFileName derives the staging/object file name from the source URL,
// falling back to a generic name when the URL path has none.
func assetFileName(sourceURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(sourceURL))
	if err != nil {
		return "image"
	}
	base := path.Base(parsed.Path)
	base = strings.ReplaceAll(base, "\\", "_")
	if base == "" || base == "." || base == "/" {
		return "image"
	}
	return base
}

func maskShort(s string) string {
	t := strings.TrimSpace(s)
	if len(t) <= 10 {
		return t
	}
	return t[:4] + "***" + t[len(t)-4:]
}
