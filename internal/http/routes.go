package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/target/quizreport/internal/domain/auth"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Reports *ReportHandlers
	Auth    *Authenticator
	// InternalLimiter rate limits the internal worker endpoints per client. Optional.
	InternalLimiter *ClientRateLimiter
	Logger          *slog.Logger
}

// NewRouter creates the HTTP router with logging and panic recovery applied.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	if services.Reports != nil && services.Auth != nil {
		registerInternalRoutes(mux, services)
		registerAdminRoutes(mux, services)
	}
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return Chain(mux, RequestID(), Logging(logger), Recover(logger))
}

// registerInternalRoutes wires worker-secret endpoints. Authentication runs before the rate
// limiter so rejected callers never consume a token.
func registerInternalRoutes(mux *http.ServeMux, s RouterServices) {
	h := s.Reports
	guard := func(fn http.HandlerFunc) http.Handler {
		return Chain(fn, s.Auth.RequireWorkerSecret(), RateLimit(s.InternalLimiter))
	}

	mux.Handle("POST /api/internal/report-jobs/run", guard(h.RunBatch))
	mux.Handle("POST /api/internal/report-jobs", guard(h.EnqueueJob))
	mux.Handle("PUT /api/internal/attempt-summaries", guard(h.UpsertAttemptSummary))
}

func registerAdminRoutes(mux *http.ServeMux, s RouterServices) {
	h := s.Reports
	admin := func(fn http.HandlerFunc) http.Handler {
		return s.Auth.Require(domainauth.RoleAdmin)(fn)
	}

	mux.Handle("GET /api/admin/report-jobs", admin(h.ListJobs))
	mux.Handle("GET /api/admin/report-jobs/stats", admin(h.JobStats))
	mux.Handle("POST /api/admin/report-jobs/requeue-failed", admin(h.RequeueFailed))
	mux.Handle("GET /api/admin/report-jobs/{purchase_id}", admin(h.GetJob))
	mux.Handle("POST /api/admin/report-jobs/{purchase_id}/requeue", admin(h.RequeueJob))
	mux.Handle("GET /api/admin/report-artifacts/{purchase_id}", admin(h.GetArtifact))
	mux.Handle("POST /api/admin/content-cache/tenants/{tenant_id}/invalidate", admin(h.InvalidateContentCache))
}
