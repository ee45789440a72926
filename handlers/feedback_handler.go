package handlers

import (
	"net/http"

	"github.com/Dosada05/medcamp/services"
)

type FeedbackHandler struct {
	feedback services.FeedbackService
}

func NewFeedbackHandler(feedback services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// Submit godoc
// @Summary Оставить отзыв о лагере
// @Tags feedback
// @Accept json
// @Produce json
// @Param body body services.FeedbackInput true "Отзыв"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 404 {object} map[string]string "Лагерь не найден"
// @Security BearerAuth
// @Router /feedback [post]
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input services.FeedbackInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fb, err := h.feedback.Submit(r.Context(), callerFrom(r), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"feedback": fb}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List godoc
// @Summary Последние отзывы
// @Tags feedback
// @Produce json
// @Param limit query int false "Количество"
// @Success 200 {object} map[string]interface{}
// @Router /feedback [get]
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	items, err := h.feedback.List(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"feedback": items}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByCamp godoc
// @Summary Отзывы о лагере
// @Tags feedback
// @Produce json
// @Param campID path string true "Camp ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Лагерь не найден"
// @Router /camps/{campID}/feedback [get]
func (h *FeedbackHandler) ListByCamp(w http.ResponseWriter, r *http.Request) {
	campID, err := pathParam(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	items, err := h.feedback.ListByCamp(r.Context(), campID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"feedback": items}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
