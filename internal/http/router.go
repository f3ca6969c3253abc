package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	verificationhandler "verigate/internal/verification/handler"
	"verigate/pkg/platform/httputil"
	"verigate/pkg/platform/middleware/metadata"
)

// NewRouter wires all public endpoints. Handlers stay thin; domain services
// own the business logic.
func NewRouter(verification *verificationhandler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(metadata.RequestMetadata)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	verification.Register(r)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
