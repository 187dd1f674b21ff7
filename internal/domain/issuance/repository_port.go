// internal/domain/issuance/repository_port.go
package issuance

import "context"

// RepositoryPort persists the issuance ledger.
// 実装は adapters/out/firestore 側。オーケストレーターは nil を許容します
// （台帳なしでも発行処理自体は成立するため）。
type RepositoryPort interface {
	Create(ctx context.Context, rec Record) error
	UpdateStep(ctx context.Context, id string, step Step) error
	MarkComplete(ctx context.Context, id string, result MintResult) error
	MarkFailed(ctx context.Context, id string, step Step, cause string) error
	GetByID(ctx context.Context, id string) (*Record, error)
}

// NotifierPort emits plain-text status/error messages to a request's
// originator. Delivery is best-effort; the orchestrator never interprets
// replies and never fails a run because a notification could not be sent.
type NotifierPort interface {
	Notify(ctx context.Context, originator, message string)
}
