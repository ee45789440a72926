package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Dosada05/medcamp/middleware"
	"github.com/Dosada05/medcamp/services"
)

type AuthHandler struct {
	users         services.UserService
	sessions      services.SessionService
	secureCookies bool
}

// NewAuthHandler; secureCookies включает Secure и SameSite=None (production).
func NewAuthHandler(users services.UserService, sessions services.SessionService, secureCookies bool) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, secureCookies: secureCookies}
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// SignUp godoc
// @Summary Зарегистрировать пользователя (идемпотентно)
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.SignUpInput true "Профиль пользователя"
// @Success 201 {object} map[string]interface{} "Пользователь создан"
// @Success 200 {object} map[string]interface{} "Пользователь уже существует"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Router /users [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var input services.SignUpInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Email == "" {
		badRequestResponse(w, r, errors.New("email is required"))
		return
	}

	user, created, err := h.users.EnsureUser(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	if err := writeJSON(w, status, jsonResponse{"user": user, "created": created}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// IssueToken godoc
// @Summary Выдать токен сессии
// @Tags auth
// @Description Устанавливает httpOnly cookie "token" и возвращает токен в теле для Bearer-клиентов.
// @Accept json
// @Produce json
// @Param body body tokenRequest true "Email и пароль (если задан)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 401 {object} map[string]string "Неверные учетные данные"
// @Router /jwt [post]
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var input tokenRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Email == "" {
		badRequestResponse(w, r, errors.New("email is required"))
		return
	}

	token, expires, err := h.sessions.IssueToken(r.Context(), input.Email, input.Password)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(token, expires))
	response := jsonResponse{"success": true, "token": token, "expires_at": expires}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Logout godoc
// @Summary Завершить сессию
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /logout [get]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie := h.sessionCookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)

	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	if h.secureCookies {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}
	return cookie
}
