package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/galxe/wallet-migrator/internal/metric"
	"github.com/galxe/wallet-migrator/pkg/assets"
	"github.com/galxe/wallet-migrator/pkg/migration"
	"github.com/galxe/wallet-migrator/pkg/wallet"
)

// MigrationService defines the migration operations the API handler needs
type MigrationService interface {
	Assets() []assets.Asset
	Status(ctx context.Context, identity string) (*migration.MigrationStatus, error)
	Migrate(ctx context.Context, identity string, recipient ethcommon.Address) (*migration.Report, error)
	RunState(identity string) migration.Run
}

// ChainLister reports the configured chains for health checks
type ChainLister interface {
	ListChains() []uint64
}

// Handler handles HTTP requests
type Handler struct {
	service MigrationService
	chains  ChainLister
}

func NewHandler(service MigrationService, chains ChainLister) *Handler {
	return &Handler{service: service, chains: chains}
}

// GetAssets handles GET /api/v1/assets
func (h *Handler) GetAssets(w http.ResponseWriter, r *http.Request) {
	metric.RecordRequest(r.Method, "/api/v1/assets")
	writeJSON(w, http.StatusOK, h.service.Assets())
}

// GetStatus handles GET /api/v1/migration/status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	metric.RecordRequest(r.Method, "/api/v1/migration/status")

	identity := strings.TrimSpace(r.URL.Query().Get("identity"))
	if identity == "" {
		writeError(w, http.StatusBadRequest, "identity is required")
		return
	}

	status, err := h.service.Status(r.Context(), identity)
	if err != nil {
		log.Error().Err(err).Str("identity", identity).Msg("[API] failed to evaluate migration status")
		metric.RecordError("status_failed")
		writeError(w, http.StatusBadGateway, "failed to evaluate migration status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Migrate handles POST /api/v1/migration
func (h *Handler) Migrate(w http.ResponseWriter, r *http.Request) {
	metric.RecordRequest(r.Method, "/api/v1/migration")

	var req MigrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	identity := strings.TrimSpace(req.Identity)
	if identity == "" {
		writeError(w, http.StatusBadRequest, "identity is required")
		return
	}
	if !ethcommon.IsHexAddress(req.Recipient) {
		writeError(w, http.StatusBadRequest, "recipient must be a hex address")
		return
	}

	report, err := h.service.Migrate(r.Context(), identity, ethcommon.HexToAddress(req.Recipient))
	if err != nil {
		log.Warn().Err(err).Str("identity", identity).Msg("[API] migration rejected")
		writeError(w, migrateErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetRunState handles GET /api/v1/migration/state
func (h *Handler) GetRunState(w http.ResponseWriter, r *http.Request) {
	metric.RecordRequest(r.Method, "/api/v1/migration/state")

	identity := strings.TrimSpace(r.URL.Query().Get("identity"))
	if identity == "" {
		writeError(w, http.StatusBadRequest, "identity is required")
		return
	}
	writeJSON(w, http.StatusOK, h.service.RunState(identity))
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if h.chains != nil {
		resp.Chains = h.chains.ListChains()
	}
	writeJSON(w, http.StatusOK, resp)
}

func migrateErrorStatus(err error) int {
	switch {
	case errors.Is(err, wallet.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, migration.ErrMigrationInProgress):
		return http.StatusConflict
	case errors.Is(err, migration.ErrMissingRecipient),
		errors.Is(err, migration.ErrSameAccount),
		errors.Is(err, migration.ErrMissingSender):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
