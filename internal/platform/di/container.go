// internal/platform/di/container.go
package di

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	httpin "tokenforge/internal/adapters/in/http"
	fsout "tokenforge/internal/adapters/out/firestore"
	"tokenforge/internal/adapters/out/gcs"
	"tokenforge/internal/adapters/out/mail"
	"tokenforge/internal/adapters/out/notify"
	appissuance "tokenforge/internal/application/issuance"
	issdom "tokenforge/internal/domain/issuance"
	"tokenforge/internal/infra/config"
	"tokenforge/internal/infra/fetch"
	firestoreinfra "tokenforge/internal/infra/firestore"
	"tokenforge/internal/infra/solana"
)

// Container はアプリ全体の配線を 1 箇所に集めます。
type Container struct {
	Config *config.Config

	Storage   *storage.Client
	Firestore *firestoreinfra.ClientWrapper

	Keys       *solana.KeyManager
	IssuanceUC *appissuance.Usecase
	Ledger     issdom.RepositoryPort
	Notifier   issdom.NotifierPort
}

// NewContainer builds every adapter from config.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := config.Load()

	var storageOpts []option.ClientOption
	if cfg.GCPCreds != "" {
		storageOpts = append(storageOpts, option.WithCredentialsFile(cfg.GCPCreds))
	}
	storageClient, err := storage.NewClient(ctx, storageOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}

	// Firestore は台帳用。プロジェクト未設定なら台帳なしで動かす。
	var fsWrapper *firestoreinfra.ClientWrapper
	var ledger issdom.RepositoryPort
	if cfg.FirestoreProjectID != "" {
		fsWrapper, err = firestoreinfra.NewClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
		if err != nil {
			_ = storageClient.Close()
			return nil, fmt.Errorf("firestore: %w", err)
		}
		// 起動時に一度だけ疎通を確かめる。失敗しても台帳なしには落とさない
		// （書き込み時のエラーは各所でログされる）。
		if err := fsWrapper.Ping(ctx); err != nil {
			log.Printf("[di] WARN: firestore ping failed: %v", err)
		}
		ledger = fsout.NewIssuanceRepositoryFS(fsWrapper.Client)
	} else {
		log.Printf("[di] WARN: FIRESTORE_PROJECT_ID not set; issuance ledger disabled")
	}

	// サービス用署名者（任意）。リクエストが secret を持たないときのフォールバック。
	var serviceSigner *issdom.SigningIdentity
	if cfg.MintKeySecret != "" {
		serviceSigner, err = solana.LoadServiceSigner(ctx, cfg.MintKeySecret)
		if err != nil {
			log.Printf("[di] WARN: service signer unavailable: %v", err)
			serviceSigner = nil
		}
	}
	keys := solana.NewKeyManager(serviceSigner)

	var notifier issdom.NotifierPort
	if cfg.SendGridAPIKey != "" {
		notifier = mail.NewSendGridNotifier(cfg.SendGridAPIKey, cfg.NotifyFromEmail)
	} else {
		notifier = notify.NewLogNotifier()
	}

	store := gcs.NewAssetRepositoryGCS(storageClient, cfg.GCSBucket)
	publisher := appissuance.NewStagedPublisher(store)
	pipeline := appissuance.NewAssetPipeline(fetch.NewHTTPFetcher(), publisher, cfg.StagingRoot)
	metadata := appissuance.NewMetadataPublisher(publisher, cfg.StagingRoot)

	uc := appissuance.NewUsecase(appissuance.UsecaseParams{
		Pipeline:           pipeline,
		Metadata:           metadata,
		Secrets:            keys,
		Minter:             solana.NewMinter(cfg.SolanaRPCURL),
		Notifier:           notifier,
		Ledger:             ledger,
		UseRequestDecimals: cfg.MintUseRequestDecimals,
	})

	return &Container{
		Config:     cfg,
		Storage:    storageClient,
		Firestore:  fsWrapper,
		Keys:       keys,
		IssuanceUC: uc,
		Ledger:     ledger,
		Notifier:   notifier,
	}, nil
}

// RouterDeps exposes the wiring the HTTP router needs.
func (c *Container) RouterDeps() httpin.RouterDeps {
	return httpin.RouterDeps{
		IssuanceUC: c.IssuanceUC,
		Ledger:     c.Ledger,
		Keys:       c.Keys,
	}
}

// Close releases the underlying clients.
func (c *Container) Close() {
	if c == nil {
		return
	}
	_ = c.Firestore.Close()
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}
