// internal/adapters/in/http/issuance_handler.go
package httpin

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appissuance "tokenforge/internal/application/issuance"
	issdom "tokenforge/internal/domain/issuance"
	"tokenforge/internal/infra/solana"
)

// IssuanceHandler exposes the issuance workflow over HTTP. The conversational
// front-end (excluded collaborator) posts a fully-populated request here.
type IssuanceHandler struct {
	uc     *appissuance.Usecase
	ledger issdom.RepositoryPort
	keys   *solana.KeyManager
}

func NewIssuanceHandler(uc *appissuance.Usecase, ledger issdom.RepositoryPort, keys *solana.KeyManager) *IssuanceHandler {
	return &IssuanceHandler{uc: uc, ledger: ledger, keys: keys}
}

type issuanceRequestDTO struct {
	Originator          string `json:"originator"`
	Name                string `json:"name"`
	Symbol              string `json:"symbol"`
	ImageURL            string `json:"imageUrl"`
	Description         string `json:"description"`
	Decimals            uint8  `json:"decimals"`
	InitialSupply       string `json:"initialSupply"`
	SignerSecret        string `json:"signerSecret"`
	RevokeMintAuthority bool   `json:"revokeMintAuthority"`
	FolderKey           string `json:"folderKey"`
}

// Create accepts one issuance request and runs the orchestration in the
// background. 202 を返した時点ではまだ何も確定していない（進行は台帳参照）。
func (h *IssuanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.uc == nil {
		writeError(w, http.StatusServiceUnavailable, "issuance usecase is not configured")
		return
	}

	var dto issuanceRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	req := issdom.Request{
		Originator:          strings.TrimSpace(dto.Originator),
		Name:                strings.TrimSpace(dto.Name),
		Symbol:              strings.TrimSpace(dto.Symbol),
		ImageURL:            strings.TrimSpace(dto.ImageURL),
		Description:         dto.Description,
		Decimals:            dto.Decimals,
		InitialSupply:       strings.TrimSpace(dto.InitialSupply),
		SignerSecret:        dto.SignerSecret,
		RevokeMintAuthority: dto.RevokeMintAuthority,
		FolderKey:           strings.TrimSpace(dto.FolderKey),
	}
	if req.FolderKey == "" {
		req.FolderKey = uuid.NewString()
	}

	// 供給量のスケール検証まで含めて受理前に弾く。202 の後に
	// バックグラウンドで即死するリクエストをここで作らない。
	if err := h.uc.ValidateRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.ledger != nil {
		rec := issdom.NewRecord(req, time.Now().UTC())
		if err := h.ledger.Create(r.Context(), rec); err != nil {
			log.Printf("[http] WARN: ledger create failed id=%s err=%v", req.FolderKey, err)
		}
	}

	// 発行はリクエストのライフサイクルから切り離して実行する。
	// 送信済みトランザクションはキャンセルできないため、接続断で
	// ctx を巻き添えにしない。
	go func(req issdom.Request) {
		if _, err := h.uc.Run(context.Background(), req); err != nil {
			log.Printf("[http] issuance failed id=%s err=%v", req.FolderKey, err)
		}
	}(req)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"id":     req.FolderKey,
		"status": "accepted",
	})
}

// Get returns the ledger record for one issuance.
func (h *IssuanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.ledger == nil {
		writeError(w, http.StatusServiceUnavailable, "issuance ledger is not configured")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	rec, err := h.ledger.GetByID(r.Context(), id)
	if errors.Is(err, issdom.ErrNotFound) {
		writeError(w, http.StatusNotFound, "issuance not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, recordToDTO(*rec))
}

type signerAddressDTO struct {
	SignerSecret string `json:"signerSecret"`
}

// SignerAddress derives the public address for a signer secret.
// 空の secret は空アドレスを返す（明示的な no-op）。
func (h *IssuanceHandler) SignerAddress(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.keys == nil {
		writeError(w, http.StatusServiceUnavailable, "key manager is not configured")
		return
	}

	var dto signerAddressDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	addr, err := h.keys.PublicAddress(dto.SignerSecret)
	if errors.Is(err, issdom.ErrInvalidSecretEncoding) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"address": addr})
}

func recordToDTO(rec issdom.Record) map[string]any {
	out := map[string]any{
		"id":          rec.ID,
		"name":        rec.Name,
		"symbol":      rec.Symbol,
		"description": rec.Description,
		"decimals":    rec.Decimals,
		"supply":      rec.Supply,
		"step":        string(rec.Step),
		"createdAt":   rec.CreatedAt,
		"updatedAt":   rec.UpdatedAt,
	}
	if rec.Error != "" {
		out["error"] = rec.Error
	}
	if rec.Result != nil {
		out["result"] = map[string]any{
			"mintAddress":     rec.Result.MintAddress,
			"holdingAccount":  rec.Result.HoldingAccountAddress,
			"metadataAddress": rec.Result.MetadataAddress,
			"metadataUrl":     rec.Result.MetadataURL,
			"imageUrl":        rec.Result.ImageURL,
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] WARN: encode response failed err=%v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
