package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/daily-diet-api/internal/config"
	"github.com/redmonkez12/daily-diet-api/internal/httputil"
	"github.com/redmonkez12/daily-diet-api/internal/logging"
	"github.com/redmonkez12/daily-diet-api/internal/meal"
	"github.com/redmonkez12/daily-diet-api/internal/metrics"
	"github.com/redmonkez12/daily-diet-api/internal/ratelimit"
	"github.com/redmonkez12/daily-diet-api/internal/user"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers groups the resource handlers mounted by the router
type Handlers struct {
	Users *user.Handler
	Meals *meal.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, limiter ratelimit.Limiter, db Pinger, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.TrustedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{"Content-Length"},
			MaxAge:         300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	// Forwarding headers are client controlled unless a proxy overwrites
	// them; the rate limiter keys on the resulting address
	if cfg.Server.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(logging.RequestLogger(logger))
	r.Use(metrics.Instrument)
	r.Use(RequestTimeout(cfg.Server.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth(db))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled", "path", "/swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	limited := ratelimit.Middleware(limiter)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.Users.List)
		r.With(limited).Post("/", h.Users.Create)
		r.Get("/{id}", h.Users.Get)
		r.With(limited).Put("/{id}", h.Users.Update)
		r.With(limited).Delete("/{id}", h.Users.Delete)
	})

	// Static segments take precedence over /{id}/{userId}
	r.Route("/meals", func(r chi.Router) {
		r.With(limited).Post("/", h.Meals.Create)
		r.Get("/{userId}", h.Meals.ListByUser)
		r.Get("/{userId}/registered", h.Meals.CountRegistered)
		r.Get("/{userId}/in-diet", h.Meals.CountInDiet)
		r.Get("/{userId}/out-diet", h.Meals.CountOutDiet)
		r.Get("/{userId}/sequence-in-diet", h.Meals.BestInDietSequence)
		r.Get("/{id}/{userId}", h.Meals.Get)
		r.With(limited).Put("/{id}/{userId}", h.Meals.Update)
		r.With(limited).Delete("/{id}/{userId}", h.Meals.Delete)
	})

	return r
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// handleHealth reports API and database availability
// @Summary      Health check
// @Description  Check if the API and its database are reachable
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} httputil.ErrorResponse "Database unreachable"
// @Router       /health [get]
func handleHealth(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logging.GetLoggerFromContext(r.Context()).Error("health check failed", "error", err.Error())
			httputil.RespondErrorWithCode(w, "database unreachable", httputil.CodeDatabaseUnhealthy, http.StatusServiceUnavailable)
			return
		}

		httputil.RespondJSON(w, HealthResponse{Status: "api is running", Database: "ok"}, http.StatusOK)
	}
}
