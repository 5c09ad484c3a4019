package rest

import (
	"context"
	"net/http"
	"strings"
)

// TokenValidator renvoie l'identifiant du membre porté par le token.
type TokenValidator interface {
	Validate(token string) (int64, error)
}

// Clé privée pour le contexte (évite les collisions)
type contextKey struct{ name string }

var viewerCtxKey = &contextKey{"viewer_id"}

// Auth exige un "Bearer <token>" valide et place l'ID du lecteur dans le contexte.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				writeProblem(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or malformed bearer token")
				return
			}

			viewerID, err := validator.Validate(tokenStr)
			if err != nil {
				writeProblem(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}

			ctx := WithViewer(r.Context(), viewerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithViewer(ctx context.Context, viewerID int64) context.Context {
	return context.WithValue(ctx, viewerCtxKey, viewerID)
}

// ViewerFrom lit l'ID du lecteur ; false hors d'une route authentifiée.
func ViewerFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(viewerCtxKey).(int64)
	return id, ok
}
