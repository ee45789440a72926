package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/services"
)

type UserHandler struct {
	users services.UserService
}

func NewUserHandler(users services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetUser godoc
// @Summary Профиль пользователя
// @Tags users
// @Produce json
// @Param email path string true "Email"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Чужой профиль"
// @Failure 404 {object} map[string]string "Пользователь не найден"
// @Security BearerAuth
// @Router /users/{email} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	email, err := pathParam(r, "email")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.users.GetUser(r.Context(), callerFrom(r), email)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateProfile godoc
// @Summary Обновить имя или фото
// @Tags users
// @Accept json
// @Produce json
// @Param email path string true "Email"
// @Param body body models.UserProfilePatch true "Изменяемые поля"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 403 {object} map[string]string "Чужой профиль"
// @Failure 404 {object} map[string]string "Пользователь не найден"
// @Security BearerAuth
// @Router /users/{email} [patch]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	email, err := pathParam(r, "email")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var patch models.UserProfilePatch
	if err := readJSON(w, r, &patch); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if patch.Empty() {
		badRequestResponse(w, r, errors.New("nothing to update"))
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), callerFrom(r), email, patch)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadPhoto godoc
// @Summary Загрузить фото профиля
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param email path string true "Email"
// @Param photo formData file true "Изображение (jpeg, png, webp, gif)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Некорректный файл"
// @Failure 403 {object} map[string]string "Чужой профиль"
// @Failure 502 {object} map[string]string "Хранилище недоступно"
// @Security BearerAuth
// @Router /users/{email}/photo [post]
func (h *UserHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	email, err := pathParam(r, "email")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, contentType, err := readUpload(w, r, "photo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	user, err := h.users.UploadPhoto(r.Context(), callerFrom(r), email, file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
