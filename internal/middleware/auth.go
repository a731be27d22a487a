package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
)

type ContextKey string

const ClubIDKey ContextKey = "clubID"

// clubSessionKey is where the organizer's club lives inside the session.
const clubSessionKey = "clubID"

// LoadClub copies the organizer's club from the session into the request context.
// Requests without one pass through untouched; authentication happens elsewhere.
func LoadClub(sessionManager *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clubID := sessionManager.GetString(r.Context(), clubSessionKey)
			if clubID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ClubIDKey, clubID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetClub stores clubID in the session. An empty club clears it.
func SetClub(ctx context.Context, sessionManager *scs.SessionManager, clubID string) error {
	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		sessionManager.Remove(ctx, clubSessionKey)
		return nil
	}
	// New token on privilege change
	if err := sessionManager.RenewToken(ctx); err != nil {
		return err
	}
	sessionManager.Put(ctx, clubSessionKey, clubID)
	return nil
}

func GetClubIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(ClubIDKey)
	if val == nil {
		return "", false
	}

	id, ok := val.(string)
	return id, ok && id != ""
}
