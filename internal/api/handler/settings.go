package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ercanvas/locamoo/internal/api/apierr"
	"github.com/ercanvas/locamoo/internal/api/middleware"
	"github.com/ercanvas/locamoo/internal/api/request"
	"github.com/ercanvas/locamoo/internal/api/response"
	"github.com/ercanvas/locamoo/internal/dependencies/clock"
	"github.com/ercanvas/locamoo/internal/model"
	"github.com/ercanvas/locamoo/internal/services/moderation"
	"github.com/ercanvas/locamoo/internal/storage"
)

// SettingsHandler manages the moderation block-list. Every route behind it
// requires a moderator identity; changes take effect on the filter's next
// refresh, or immediately when a filter is attached.
type SettingsHandler struct {
	store  storage.Store
	clock  clock.Clock
	filter *moderation.Filter
}

// NewSettingsHandler creates a settings handler
func NewSettingsHandler(store storage.Store, clk clock.Clock, filter *moderation.Filter) *SettingsHandler {
	return &SettingsHandler{store: store, clock: clk, filter: filter}
}

// ListHiddenWords handles GET /api/settings/hidden-words
func (h *SettingsHandler) ListHiddenWords(w http.ResponseWriter, r *http.Request) {
	words, err := h.store.ListHiddenWords(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	if words == nil {
		words = []model.HiddenWord{}
	}

	response.JSON(w, http.StatusOK, response.HiddenWords{Words: words})
}

// AddHiddenWord handles POST /api/settings/hidden-words
func (h *SettingsHandler) AddHiddenWord(w http.ResponseWriter, r *http.Request) {
	var req request.AddHiddenWord
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Invalid JSON body"))
		return
	}

	word := strings.TrimSpace(req.Word)
	if word == "" {
		apierr.WriteError(w, model.ErrEmptyWord)
		return
	}

	profile, _ := middleware.ProfileFromContext(r.Context())
	addedBy := ""
	if profile != nil {
		addedBy = profile.Username
	}

	if err := h.store.AddHiddenWord(r.Context(), word, addedBy, h.clock.Now()); err != nil {
		apierr.WriteError(w, err)
		return
	}
	h.refreshFilter(r)

	response.JSON(w, http.StatusCreated, nil)
}

// RemoveHiddenWord handles DELETE /api/settings/hidden-words/{word}
func (h *SettingsHandler) RemoveHiddenWord(w http.ResponseWriter, r *http.Request) {
	word := mux.Vars(r)["word"]

	if err := h.store.RemoveHiddenWord(r.Context(), word); err != nil {
		apierr.WriteError(w, err)
		return
	}
	h.refreshFilter(r)

	response.NoContent(w)
}

// refreshFilter rebuilds the censor machine so the change applies without
// waiting for the periodic refresh. Failures are ignored here; the periodic
// refresh will catch up.
func (h *SettingsHandler) refreshFilter(r *http.Request) {
	if h.filter != nil {
		_ = h.filter.Refresh(r.Context())
	}
}
