// internal/adapters/out/firestore/issuance_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	issdom "tokenforge/internal/domain/issuance"
)

// Ensure interface implementation
var _ issdom.RepositoryPort = (*IssuanceRepositoryFS)(nil)

// IssuanceRepositoryFS implements issuance.RepositoryPort using Firestore.
// 発行リクエストの台帳（受理パラメータ・進行ステップ・結果）を 1 doc = 1 発行で持つ。
// 署名キーは決して保存しない。
type IssuanceRepositoryFS struct {
	Client *firestore.Client
}

func NewIssuanceRepositoryFS(client *firestore.Client) *IssuanceRepositoryFS {
	return &IssuanceRepositoryFS{Client: client}
}

func (r *IssuanceRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("issuances")
}

// Create inserts the initial ledger record for an accepted request.
func (r *IssuanceRepositoryFS) Create(ctx context.Context, rec issdom.Record) error {
	if r == nil || r.Client == nil {
		return errors.New("firestore client is nil")
	}

	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return issdom.ErrFolderKeyRequired
	}

	now := time.Now().UTC()
	data := map[string]any{
		"originator":  rec.Originator,
		"name":        rec.Name,
		"symbol":      rec.Symbol,
		"description": rec.Description,
		"decimals":    int(rec.Decimals),
		"supply":      rec.Supply,
		"step":        string(rec.Step),
		"error":       "",
		"createdAt":   now,
		"updatedAt":   now,
	}

	_, err := r.col().Doc(id).Create(ctx, data)
	return err
}

// UpdateStep records a state transition.
func (r *IssuanceRepositoryFS) UpdateStep(ctx context.Context, id string, step issdom.Step) error {
	if r == nil || r.Client == nil {
		return errors.New("firestore client is nil")
	}

	_, err := r.col().Doc(strings.TrimSpace(id)).Update(ctx, []firestore.Update{
		{Path: "step", Value: string(step)},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if status.Code(err) == codes.NotFound {
		return issdom.ErrNotFound
	}
	return err
}

// MarkComplete stores the terminal result.
func (r *IssuanceRepositoryFS) MarkComplete(ctx context.Context, id string, result issdom.MintResult) error {
	if r == nil || r.Client == nil {
		return errors.New("firestore client is nil")
	}

	_, err := r.col().Doc(strings.TrimSpace(id)).Update(ctx, []firestore.Update{
		{Path: "step", Value: string(issdom.StepComplete)},
		{Path: "result", Value: resultToDoc(result)},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if status.Code(err) == codes.NotFound {
		return issdom.ErrNotFound
	}
	return err
}

// MarkFailed stores the terminal failure together with the step it occurred
// in. The step itself stays in the record so callers can see how far the
// run got before retrying anything.
func (r *IssuanceRepositoryFS) MarkFailed(ctx context.Context, id string, step issdom.Step, cause string) error {
	if r == nil || r.Client == nil {
		return errors.New("firestore client is nil")
	}

	_, err := r.col().Doc(strings.TrimSpace(id)).Update(ctx, []firestore.Update{
		{Path: "step", Value: string(issdom.StepFailed)},
		{Path: "failedStep", Value: string(step)},
		{Path: "error", Value: cause},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if status.Code(err) == codes.NotFound {
		return issdom.ErrNotFound
	}
	return err
}

// GetByID loads one ledger record.
func (r *IssuanceRepositoryFS) GetByID(ctx context.Context, id string) (*issdom.Record, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, issdom.ErrNotFound
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, issdom.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec := docToRecord(id, snap.Data())
	return &rec, nil
}

func resultToDoc(res issdom.MintResult) map[string]any {
	return map[string]any{
		"mintAddress":           res.MintAddress,
		"holdingAccount":        res.HoldingAccountAddress,
		"holdingAccountCreated": res.HoldingAccountCreated,
		"metadataAddress":       res.MetadataAddress,
		"metadataUrl":           res.MetadataURL,
		"imageUrl":              res.ImageURL,
		"createMintSignature":   res.CreateMintSignature,
		"mintSupplySignature":   res.MintSupplySignature,
		"metadataSignature":     res.MetadataSignature,
		"revokeSignature":       res.RevokeSignature,
	}
}

func docToRecord(id string, data map[string]any) issdom.Record {
	rec := issdom.Record{
		ID:          id,
		Originator:  getString(data, "originator"),
		Name:        getString(data, "name"),
		Symbol:      getString(data, "symbol"),
		Description: getString(data, "description"),
		Supply:      getString(data, "supply"),
		Step:        issdom.Step(getString(data, "step")),
		Error:       getString(data, "error"),
	}

	if v, ok := data["decimals"].(int64); ok && v >= 0 && v <= 255 {
		rec.Decimals = uint8(v)
	}
	if v, ok := data["createdAt"].(time.Time); ok {
		rec.CreatedAt = v
	}
	if v, ok := data["updatedAt"].(time.Time); ok {
		rec.UpdatedAt = v
	}

	if raw, ok := data["result"].(map[string]any); ok {
		rec.Result = &issdom.MintResult{
			MintAddress:           getString(raw, "mintAddress"),
			HoldingAccountAddress: getString(raw, "holdingAccount"),
			MetadataAddress:       getString(raw, "metadataAddress"),
			MetadataURL:           getString(raw, "metadataUrl"),
			ImageURL:              getString(raw, "imageUrl"),
			CreateMintSignature:   getString(raw, "createMintSignature"),
			MintSupplySignature:   getString(raw, "mintSupplySignature"),
			MetadataSignature:     getString(raw, "metadataSignature"),
			RevokeSignature:       getString(raw, "revokeSignature"),
		}
		if b, ok := raw["holdingAccountCreated"].(bool); ok {
			rec.Result.HoldingAccountCreated = b
		}
	}

	return rec
}

func getString(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
