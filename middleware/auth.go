package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/services"
)

// TokenCookieName - имя httpOnly cookie с токеном сессии.
const TokenCookieName = "token"

type contextKey string

const callerContextKey contextKey = "caller"

// Authenticator turns a session token into a models.Caller.
type Authenticator struct {
	sessions services.SessionService
	users    services.UserService
	logger   *slog.Logger
}

func NewAuthenticator(sessions services.SessionService, users services.UserService, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{sessions: sessions, users: users, logger: logger}
}

// Authenticate отклоняет запросы без валидной сессии.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		email, err := a.sessions.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		caller, err := a.users.Resolve(r.Context(), email)
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				writeError(w, http.StatusUnauthorized, "unknown user")
				return
			}
			a.logger.ErrorContext(r.Context(), "failed to resolve caller", slog.String("email", email), slog.Any("error", err))
			writeError(w, http.StatusBadGateway, "failed to load user")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

// Require пропускает запрос, только если у вызывающего есть все capabilities.
func Require(caps ...services.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := services.Authorize(CallerFromContext(r.Context()), caps...); err != nil {
				writeAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSelfOrOrganizer allows the owner of the email in URL param or any organizer.
func RequireSelfOrOrganizer(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := services.SelfOwner(chi.URLParam(r, param))
			if err := services.Authorize(CallerFromContext(r.Context()), services.AnyOf(owner, services.Organizer)); err != nil {
				writeAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// WithCaller stores the caller in ctx.
func WithCaller(ctx context.Context, caller *models.Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}
