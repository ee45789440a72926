package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/medcamp/services"
)

type PaymentHandler struct {
	payments services.PaymentService
}

func NewPaymentHandler(payments services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type createIntentRequest struct {
	CampID string `json:"camp_id"`
}

// CreateIntent godoc
// @Summary Создать платежное намерение на взнос лагеря
// @Tags payments
// @Accept json
// @Produce json
// @Param body body createIntentRequest true "Camp ID"
// @Success 201 {object} services.PaymentIntent
// @Failure 400 {object} map[string]string "Лагерь бесплатный или нет camp_id"
// @Failure 404 {object} map[string]string "Лагерь не найден"
// @Failure 502 {object} map[string]string "Платежный провайдер недоступен"
// @Security BearerAuth
// @Router /payments/intents [post]
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var input createIntentRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.CampID == "" {
		badRequestResponse(w, r, errors.New("camp_id is required"))
		return
	}

	intent, err := h.payments.CreateIntent(r.Context(), callerFrom(r), input.CampID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, intent, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
