package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paygate/internal/identity"
	"paygate/pkg/domain"
	dErrors "paygate/pkg/domain-errors"
	"paygate/pkg/platform/httputil"
	"paygate/pkg/platform/middleware/auth"
)

// AdminHandler exposes administrative operations behind the admin role.
type AdminHandler struct {
	service   *identity.Service
	validator auth.TokenValidator
	logger    *slog.Logger
}

func NewAdminHandler(svc *identity.Service, validator auth.TokenValidator, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: svc, validator: validator, logger: logger}
}

// Register mounts admin endpoints on the router.
func (h *AdminHandler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireRole(h.validator, "admin", h.logger))
		r.Post("/identity/promote", h.HandlePromote)
	})
}

// PromoteRequest names the address to promote to the enterprise level.
type PromoteRequest struct {
	Address string `json:"address"`
}

// HandlePromote handles POST /admin/identity/promote requests.
func (h *AdminHandler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[PromoteRequest](w, r, h.logger)
	if !ok {
		return
	}

	address, err := domain.ParseAddress(req.Address)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid address"))
		return
	}

	h.service.Promote(ctx, address)
	h.logger.InfoContext(ctx, "enterprise promotion applied",
		"address", address, "by", auth.GetSubject(ctx))

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"address": address.Normalized().String(),
		"level":   domain.LevelEnterprise.String(),
	})
}
