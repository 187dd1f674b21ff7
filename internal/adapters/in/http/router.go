// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	appissuance "tokenforge/internal/application/issuance"
	issdom "tokenforge/internal/domain/issuance"
	"tokenforge/internal/infra/solana"
)

// RouterDeps collects the dependencies injected from main.go.
type RouterDeps struct {
	IssuanceUC *appissuance.Usecase
	Ledger     issdom.RepositoryPort
	Keys       *solana.KeyManager
}

// NewRouter wires the issuance API.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	h := NewIssuanceHandler(deps.IssuanceUC, deps.Ledger, deps.Keys)
	r.Post("/issuances", h.Create)
	r.Get("/issuances/{id}", h.Get)
	r.Post("/signer/address", h.SignerAddress)

	return r
}
