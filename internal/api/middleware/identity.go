package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/ercanvas/locamoo/internal/api/apierr"
	"github.com/ercanvas/locamoo/internal/model"
	"github.com/ercanvas/locamoo/internal/storage"
)

// IdentityHeader carries the caller's username. The relay trusts the main
// application to have authenticated the user upstream; it only checks roles.
const IdentityHeader = "x-user"

type contextKey string

const profileContextKey contextKey = "profile"

// RequireModerator resolves the identity header against the player store and
// rejects callers whose role cannot moderate.
func RequireModerator(store storage.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := r.Header.Get(IdentityHeader)
			if username == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			profile, err := store.GetPlayerProfile(r.Context(), username)
			if err != nil {
				if errors.Is(err, model.ErrPlayerNotFound) {
					apierr.WriteError(w, apierr.NewForbiddenError())
				} else {
					apierr.WriteError(w, err)
				}
				return
			}

			if !profile.CanModerate() {
				apierr.WriteError(w, apierr.NewForbiddenError())
				return
			}

			ctx := context.WithValue(r.Context(), profileContextKey, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProfileFromContext returns the profile stored by RequireModerator
func ProfileFromContext(ctx context.Context) (*model.PlayerProfile, bool) {
	profile, ok := ctx.Value(profileContextKey).(*model.PlayerProfile)
	return profile, ok
}
