package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ercanvas/locamoo/internal/api/apierr"
	"github.com/ercanvas/locamoo/internal/api/handler"
	apimiddleware "github.com/ercanvas/locamoo/internal/api/middleware"
	"github.com/ercanvas/locamoo/internal/api/response"
	"github.com/ercanvas/locamoo/internal/dependencies/clock"
	"github.com/ercanvas/locamoo/internal/hub"
	"github.com/ercanvas/locamoo/internal/middleware"
	"github.com/ercanvas/locamoo/internal/services/moderation"
	"github.com/ercanvas/locamoo/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Store      storage.Store
	Clock      clock.Clock
	Hub        *hub.Hub
	Filter     *moderation.Filter
	ChatWindow time.Duration
}

// NewRouter creates the router with the websocket endpoint and REST routes
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	chatHandler := handler.NewChatHandler(cfg.Store, cfg.Clock, cfg.ChatWindow)
	settingsHandler := handler.NewSettingsHandler(cfg.Store, cfg.Clock, cfg.Filter)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, panicHandler)
	moderatorMiddleware := apimiddleware.RequireModerator(cfg.Store)

	// The websocket endpoint stays outside the logging wrapper: the wrapped
	// writer would hide http.Hijacker from the upgrade.
	r.HandleFunc("/ws", cfg.Hub.ServeWS)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/chat/global", chatHandler.History).Methods(http.MethodGet)

	// Block-list management, moderators only
	settings := api.PathPrefix("/settings/hidden-words").Subrouter()
	settings.Use(moderatorMiddleware)
	settings.HandleFunc("", settingsHandler.ListHiddenWords).Methods(http.MethodGet)
	settings.HandleFunc("", settingsHandler.AddHiddenWord).Methods(http.MethodPost)
	settings.HandleFunc("/{word}", settingsHandler.RemoveHiddenWord).Methods(http.MethodDelete)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}

func panicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
