package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/medcamp/middleware"
	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/services"
)

type jsonResponse map[string]interface{}

const maxUploadSize = 10 << 20

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func upstreamErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "upstream failure",
		slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	errorResponse(w, r, http.StatusBadGateway, "a backing service is unavailable, try again later")
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidCredentials):
		unauthorizedResponse(w, r, err.Error())
	case errors.Is(err, services.ErrForbidden):
		forbiddenResponse(w, r, err.Error())

	// ErrCampNotFound, ErrRegistrationNotFound, ErrUserNotFound, ErrNotRegistered
	case errors.Is(err, services.ErrNotFound):
		notFoundResponse(w, r, err.Error())

	case errors.Is(err, services.ErrDuplicateRegistration),
		errors.Is(err, services.ErrInvalidCountAdjustment):
		conflictResponse(w, r, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrPaymentNotVerified):
		errorResponse(w, r, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, services.ErrValidationFailed):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrUpstreamFailure):
		upstreamErrorResponse(w, r, err)

	default:
		serverErrorResponse(w, r, err)
	}
}

func callerFrom(r *http.Request) *models.Caller {
	return middleware.CallerFromContext(r.Context())
}

func pathParam(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(chi.URLParam(r, name))
	if value == "" {
		return "", fmt.Errorf("missing %s in URL path", name)
	}
	return value, nil
}

// queryInt returns def when the parameter is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s value: %q", name, raw)
	}
	return v, nil
}

// readUpload достает файл из multipart формы.
func readUpload(w http.ResponseWriter, r *http.Request, field string) (io.ReadCloser, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, "", fmt.Errorf("failed to parse multipart form: %w", err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get %s file from form: %w", field, err)
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		file.Close()
		return nil, "", fmt.Errorf("content-type header is required for %s", field)
	}
	return file, contentType, nil
}
