// internal/infra/config/config.go
package config

import (
	"os"
	"strings"
)

// Config はアプリケーション全体の環境変数設定を保持します。
type Config struct {
	Port string

	// StagingRoot はリモート取得したアセットを一時保存するローカルディレクトリ。
	StagingRoot string

	// GCSBucket は公開アセット/メタデータ JSON の保存先バケット。
	GCSBucket string
	GCPCreds  string

	// SolanaRPCURL は接続先 RPC エンドポイント（未設定なら devnet）。
	SolanaRPCURL string

	// MintKeySecret は Secret Manager 上のサービス用ミント権限キーのフルパス
	// ("projects/<id>/secrets/<id>/versions/latest")。空ならフォールバック署名者なし。
	MintKeySecret string

	// MintUseRequestDecimals: true のときリクエストの decimals をオンチェーンの
	// mint 精度と供給量スケールの両方に適用する。false（既定）は固定 9 桁。
	MintUseRequestDecimals bool

	FirestoreProjectID       string
	FirestoreCredentialsFile string

	// SendGrid 通知用。APIKey が空なら通知はログ出力のみになる。
	SendGridAPIKey  string
	NotifyFromEmail string
}

// Load は環境変数を読み込み Config を返します。
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "")

	return &Config{
		Port:        getenvDefault("PORT", "8080"),
		StagingRoot: getenvDefault("STAGING_ROOT", os.TempDir()),

		GCSBucket: os.Getenv("GCS_BUCKET"),
		GCPCreds:  os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		SolanaRPCURL:  os.Getenv("SOLANA_RPC_URL"),
		MintKeySecret: os.Getenv("SOLANA_MINT_KEY_SECRET"),

		MintUseRequestDecimals: getenvBool("MINT_USE_REQUEST_DECIMALS"),

		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),

		SendGridAPIKey:  os.Getenv("SENDGRID_API_KEY"),
		NotifyFromEmail: os.Getenv("NOTIFY_FROM_EMAIL"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
