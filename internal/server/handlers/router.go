package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/serenolabs/sereno/internal/server/auth"
	"github.com/serenolabs/sereno/internal/server/config"
	"github.com/serenolabs/sereno/internal/server/health"
	"github.com/serenolabs/sereno/internal/server/metrics"
)

// Deps carries everything the router needs. All collaborators are injected;
// there is no package-level state.
type Deps struct {
	Users    UserRepository
	Scripts  ScriptRepository
	Settings SettingRepository
	Events   EventRepository
	Backups  BackupRepository

	Tx        Transactor
	Tokens    *auth.TokenManager
	Completer Completer
	Health    *health.Service

	Limits     config.Limits
	EnableCORS bool
}

// NewRouter wires all routes and middleware.
func NewRouter(deps Deps) http.Handler {
	authHandler := NewAuthHandler(deps.Users, deps.Settings, deps.Tx, deps.Tokens, deps.Limits.MaxBodyBytes)
	scriptHandler := NewScriptHandler(deps.Scripts, deps.Limits.MaxBodyBytes)
	settingHandler := NewSettingHandler(deps.Settings, deps.Limits.MaxBodyBytes)
	eventHandler := NewEventHandler(deps.Events, deps.Limits.MaxBodyBytes, deps.Limits.EventListLimit)
	backupHandler := NewBackupHandler(deps.Backups, deps.Limits.MaxBackupBytes)
	assistantHandler := NewAssistantHandler(deps.Completer, deps.Limits.MaxBodyBytes)
	sensorHandler := NewSensorHandler(deps.Limits.MaxBodyBytes)

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	if deps.EnableCORS {
		r.Use(CORSMiddleware)
	}
	r.Use(metrics.Middleware(routePattern))
	r.Use(auth.Middleware(deps.Tokens))
	r.Use(LoggingMiddleware)

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	r.Get("/scripts", scriptHandler.List)
	r.Post("/scripts", RequireAuth(scriptHandler.Create))
	r.Delete("/scripts/{id}", RequireAuth(scriptHandler.Delete))

	r.Get("/settings", settingHandler.Get)
	r.Post("/settings", RequireAuth(settingHandler.Upsert))

	r.Post("/events", eventHandler.Create)
	r.Get("/events", eventHandler.List)

	r.Post("/backup", RequireAuth(backupHandler.Upload))
	r.Get("/backup/latest", RequireAuth(backupHandler.DownloadLatest))

	// The assistant routes are public: the original deployments flipped
	// between public and auth-gated, and the resolution here is public so a
	// signed-out user still gets help. Revisit if abuse shows up in metrics.
	r.Post("/api/ia", assistantHandler.Complete)
	r.Post("/api/soften", assistantHandler.Soften)
	r.Post("/api/social-helper", assistantHandler.SocialHelper)
	r.Post("/api/sensor-check", sensorHandler.Check)

	r.Get("/health", HealthHandler(deps.Health))
	r.Get("/health/live", LivenessHandler())
	r.Get("/health/ready", ReadinessHandler(deps.Health))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

// routePattern resolves the matched chi route for metric labels.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
