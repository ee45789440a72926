package handlers

import (
	"net/http"

	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/services"
)

type CampHandler struct {
	camps services.CampService
}

func NewCampHandler(camps services.CampService) *CampHandler {
	return &CampHandler{camps: camps}
}

// ListCamps godoc
// @Summary Список лагерей
// @Tags camps
// @Produce json
// @Param search query string false "Поиск по названию, месту и врачу"
// @Param sort query string false "participant_count | fees | name | date"
// @Param page query int false "Страница (с 1)"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} models.CampListResponse
// @Failure 400 {object} map[string]string "Некорректные параметры"
// @Router /camps [get]
func (h *CampHandler) ListCamps(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	q := r.URL.Query()
	result, err := h.camps.List(r.Context(), services.CampListQuery{
		Search: q.Get("search"),
		Sort:   models.CampSort(q.Get("sort")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PopularCamps godoc
// @Summary Популярные лагеря
// @Tags camps
// @Produce json
// @Param limit query int false "Количество (по умолчанию 6)"
// @Success 200 {object} map[string]interface{}
// @Router /camps/popular [get]
func (h *CampHandler) PopularCamps(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	camps, err := h.camps.Popular(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"camps": camps}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetCamp godoc
// @Summary Лагерь по ID
// @Tags camps
// @Produce json
// @Param campID path string true "Camp ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Лагерь не найден"
// @Router /camps/{campID} [get]
func (h *CampHandler) GetCamp(w http.ResponseWriter, r *http.Request) {
	campID, err := pathParam(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	camp, err := h.camps.Get(r.Context(), campID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"camp": camp}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateCamp godoc
// @Summary Создать лагерь
// @Tags camps
// @Accept json
// @Produce json
// @Param body body services.CampInput true "Данные лагеря"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 403 {object} map[string]string "Только организатор"
// @Security BearerAuth
// @Router /camps [post]
func (h *CampHandler) CreateCamp(w http.ResponseWriter, r *http.Request) {
	var input services.CampInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	camp, err := h.camps.Create(r.Context(), callerFrom(r), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"camp": camp}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateCamp godoc
// @Summary Обновить лагерь
// @Tags camps
// @Accept json
// @Produce json
// @Param campID path string true "Camp ID"
// @Param body body services.CampInput true "Данные лагеря"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 403 {object} map[string]string "Только организатор"
// @Failure 404 {object} map[string]string "Лагерь не найден"
// @Security BearerAuth
// @Router /camps/{campID} [put]
func (h *CampHandler) UpdateCamp(w http.ResponseWriter, r *http.Request) {
	campID, err := pathParam(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CampInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	camp, err := h.camps.Update(r.Context(), callerFrom(r), campID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"camp": camp}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteCamp godoc
// @Summary Удалить лагерь вместе с заявками
// @Tags camps
// @Param campID path string true "Camp ID"
// @Success 204 "Удален"
// @Failure 403 {object} map[string]string "Только организатор"
// @Failure 404 {object} map[string]string "Лагерь не найден"
// @Security BearerAuth
// @Router /camps/{campID} [delete]
func (h *CampHandler) DeleteCamp(w http.ResponseWriter, r *http.Request) {
	campID, err := pathParam(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.camps.Delete(r.Context(), callerFrom(r), campID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadCampImage godoc
// @Summary Загрузить изображение лагеря
// @Tags camps
// @Accept multipart/form-data
// @Produce json
// @Param campID path string true "Camp ID"
// @Param image formData file true "Изображение (jpeg, png, webp, gif)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Некорректный файл"
// @Failure 403 {object} map[string]string "Только организатор"
// @Failure 502 {object} map[string]string "Хранилище недоступно"
// @Security BearerAuth
// @Router /camps/{campID}/image [post]
func (h *CampHandler) UploadCampImage(w http.ResponseWriter, r *http.Request) {
	campID, err := pathParam(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, contentType, err := readUpload(w, r, "image")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	camp, err := h.camps.UploadImage(r.Context(), callerFrom(r), campID, file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"camp": camp}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
