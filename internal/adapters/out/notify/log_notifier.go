// internal/adapters/out/notify/log_notifier.go
package notify

import (
	"context"
	"log"

	issdom "tokenforge/internal/domain/issuance"
)

// LogNotifier は通知チャネル未設定時のフォールバック。
// メッセージをログに流すだけで、配送の保証はしない。
type LogNotifier struct{}

var _ issdom.NotifierPort = (*LogNotifier)(nil)

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Notify(_ context.Context, originator, message string) {
	log.Printf("[notify] to=%s message=%q", originator, message)
}
