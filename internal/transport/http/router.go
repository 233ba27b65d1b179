// Package httptransport is the thin HTTP layer over the actor runtime. The
// handlers translate wire requests into actor messages and domain calls; no
// business logic lives here.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"paygate/internal/actor"
	"paygate/internal/identity"
	"paygate/internal/payment"
	"paygate/internal/platform/middleware"
	"paygate/internal/rules"
	"paygate/pkg/platform/middleware/auth"
)

// Deps carries everything the router mounts.
type Deps struct {
	Wallet         *actor.Wallet
	Gate           *payment.Gate
	Identity       *identity.Service
	IdentityClient *actor.IdentityClient
	Sender         actor.Sender
	Rules          rules.Config
	TokenValidator auth.TokenValidator
	Logger         *slog.Logger
}

// NewRouter assembles the public API.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	NewPaymentHandler(d.Wallet, d.Gate, d.Rules.Limits, logger).Register(r)
	NewIdentityHandler(d.IdentityClient, d.Identity, d.Sender, logger).Register(r)
	NewAdminHandler(d.Identity, d.TokenValidator, logger).Register(r)

	return r
}
