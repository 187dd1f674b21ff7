// cmd/devnet_mint_test/main.go
package main

import (
	"context"
	"log"
	"os"

	"github.com/google/uuid"

	issdom "tokenforge/internal/domain/issuance"
	"tokenforge/internal/platform/di"
)

// Devnet に対して 1 件の発行フローを end-to-end で流す確認用コマンド。
// パラメータは環境変数から取る:
//
//	TOKEN_NAME, TOKEN_SYMBOL, TOKEN_IMAGE_URL, TOKEN_DESCRIPTION,
//	TOKEN_SUPPLY, SIGNER_SECRET (base58), REVOKE_MINT_AUTHORITY
func main() {
	ctx := context.Background()

	container, err := di.NewContainer(ctx)
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer container.Close()

	req := issdom.Request{
		Originator:          getenvDefault("NOTIFY_TO", "devnet-mint-test"),
		Name:                getenvDefault("TOKEN_NAME", "Devnet Test Token"),
		Symbol:              getenvDefault("TOKEN_SYMBOL", "DTT"),
		ImageURL:            os.Getenv("TOKEN_IMAGE_URL"),
		Description:         os.Getenv("TOKEN_DESCRIPTION"),
		InitialSupply:       getenvDefault("TOKEN_SUPPLY", "1000"),
		SignerSecret:        os.Getenv("SIGNER_SECRET"),
		RevokeMintAuthority: os.Getenv("REVOKE_MINT_AUTHORITY") == "true",
		FolderKey:           uuid.NewString(),
	}

	res, err := container.IssuanceUC.Run(ctx, req)
	if err != nil {
		log.Fatalf("[devnet-mint-test] issuance failed: %v (partial result: %+v)", err, res)
	}

	log.Printf("[devnet-mint-test] complete mint=%s holding=%s metadata=%s", res.MintAddress, res.HoldingAccountAddress, res.MetadataAddress)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
