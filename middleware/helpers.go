package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/services"
)

// CallerFromContext returns nil for anonymous requests.
func CallerFromContext(ctx context.Context) *models.Caller {
	caller, _ := ctx.Value(callerContextKey).(*models.Caller)
	return caller
}

func writeAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrUnauthenticated) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeError(w, http.StatusForbidden, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
