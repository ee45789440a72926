package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/services"
)

type RegistrationHandler struct {
	ledger services.RegistrationLedger
}

func NewRegistrationHandler(ledger services.RegistrationLedger) *RegistrationHandler {
	return &RegistrationHandler{ledger: ledger}
}

type registerRequest struct {
	// ParticipantEmail по умолчанию - email вызывающего.
	ParticipantEmail string `json:"participant_email,omitempty"`
	models.RegistrationDetails
}

type confirmPaymentRequest struct {
	TransactionID string `json:"transaction_id"`
}

type confirmRegistrationRequest struct {
	ParticipantEmail   string                    `json:"participant_email"`
	ConfirmationStatus models.ConfirmationStatus `json:"confirmation_status"`
}

type adjustCountRequest struct {
	Direction models.CountDirection `json:"direction"`
}

// Register godoc
// @Summary Записаться в лагерь
// @Tags registrations
// @Accept json
// @Produce json
// @Param campID path string true "Camp ID"
// @Param body body registerRequest true "Анкета участника"
// @Success 201 {object} map[string]interface{} "Заявка создана"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Запись от чужого имени"
// @Failure 404 {object} map[string]string "Лагерь не найден"
// @Failure 409 {object} map[string]string "Уже зарегистрирован"
// @Security BearerAuth
// @Router /camps/{campID}/registrations [post]
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	campID, err := pathParam(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input registerRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	caller := callerFrom(r)
	email := input.ParticipantEmail
	if email == "" && caller != nil {
		email = caller.Email
	}

	reg, err := h.ledger.Register(r.Context(), caller, campID, email, input.RegistrationDetails)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"registration": reg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetOwnRegistration godoc
// @Summary Своя заявка в лагерь
// @Tags registrations
// @Produce json
// @Param campID path string true "Camp ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Заявки нет"
// @Security BearerAuth
// @Router /camps/{campID}/registrations/me [get]
func (h *RegistrationHandler) GetOwnRegistration(w http.ResponseWriter, r *http.Request) {
	campID, err := pathParam(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reg, err := h.ledger.GetOwnRegistration(r.Context(), callerFrom(r), campID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"registration": reg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ConfirmPayment godoc
// @Summary Подтвердить оплату своей заявки
// @Tags registrations
// @Accept json
// @Produce json
// @Param campID path string true "Camp ID"
// @Param body body confirmPaymentRequest true "Идентификатор платежа"
// @Success 200 {object} map[string]interface{}
// @Failure 402 {object} map[string]string "Платеж не завершен"
// @Failure 404 {object} map[string]string "Заявки нет"
// @Failure 502 {object} map[string]string "Платежный провайдер недоступен"
// @Security BearerAuth
// @Router /camps/{campID}/registrations/me/payment [post]
func (h *RegistrationHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	campID, err := pathParam(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input confirmPaymentRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reg, err := h.ledger.ConfirmPayment(r.Context(), callerFrom(r), campID, input.TransactionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"registration": reg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Withdraw godoc
// @Summary Отозвать свою заявку
// @Tags registrations
// @Param campID path string true "Camp ID"
// @Success 204 "Заявка удалена"
// @Failure 404 {object} map[string]string "Заявки нет"
// @Security BearerAuth
// @Router /camps/{campID}/registrations/me [delete]
func (h *RegistrationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	campID, err := pathParam(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.ledger.WithdrawRegistration(r.Context(), callerFrom(r), campID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AdjustParticipantCount godoc
// @Summary Скорректировать счетчик участников
// @Tags registrations
// @Accept json
// @Produce json
// @Param campID path string true "Camp ID"
// @Param body body adjustCountRequest true "increase | decrease"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Неизвестное направление"
// @Failure 403 {object} map[string]string "Только организатор"
// @Failure 409 {object} map[string]string "Счетчик не может стать отрицательным"
// @Security BearerAuth
// @Router /camps/{campID}/participant-count [patch]
func (h *RegistrationHandler) AdjustParticipantCount(w http.ResponseWriter, r *http.Request) {
	campID, err := pathParam(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input adjustCountRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	camp, err := h.ledger.AdjustParticipantCount(r.Context(), callerFrom(r), campID, input.Direction)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"camp": camp}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecountParticipants godoc
// @Summary Пересчитать участников по заявкам
// @Tags registrations
// @Produce json
// @Param campID path string true "Camp ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Только организатор"
// @Failure 404 {object} map[string]string "Лагерь не найден"
// @Security BearerAuth
// @Router /camps/{campID}/participant-count/recount [post]
func (h *RegistrationHandler) RecountParticipants(w http.ResponseWriter, r *http.Request) {
	campID, err := pathParam(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	camp, err := h.ledger.RecountParticipants(r.Context(), callerFrom(r), campID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"camp": camp}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListPaid godoc
// @Summary Оплаченные заявки
// @Tags registrations
// @Produce json
// @Param search query string false "Имя участника или статус подтверждения"
// @Param page query int false "Страница (с 1)"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} models.RegistrationPage
// @Failure 403 {object} map[string]string "Только организатор"
// @Security BearerAuth
// @Router /registrations/paid [get]
func (h *RegistrationHandler) ListPaid(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.ledger.ListPaidRegistrations(r.Context(), callerFrom(r), r.URL.Query().Get("search"), page, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByParticipant godoc
// @Summary Заявки участника
// @Tags registrations
// @Produce json
// @Param email path string true "Email участника"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Чужие заявки"
// @Security BearerAuth
// @Router /participants/{email}/registrations [get]
func (h *RegistrationHandler) ListByParticipant(w http.ResponseWriter, r *http.Request) {
	email, err := pathParam(r, "email")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	regs, err := h.ledger.ListRegistrationsByParticipant(r.Context(), callerFrom(r), email)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"registrations": regs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ConfirmRegistration godoc
// @Summary Подтвердить оплаченную заявку
// @Tags registrations
// @Accept json
// @Produce json
// @Param registrationID path string true "Registration ID"
// @Param body body confirmRegistrationRequest true "Участник и целевой статус (Confirmed)"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Только организатор"
// @Failure 404 {object} map[string]string "Заявка не найдена"
// @Failure 422 {object} map[string]string "Недопустимый переход статуса"
// @Security BearerAuth
// @Router /registrations/{registrationID}/confirmation [patch]
func (h *RegistrationHandler) ConfirmRegistration(w http.ResponseWriter, r *http.Request) {
	registrationID, err := pathParam(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input confirmRegistrationRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.ParticipantEmail == "" {
		badRequestResponse(w, r, errors.New("participant_email is required"))
		return
	}
	if input.ConfirmationStatus == "" {
		input.ConfirmationStatus = models.ConfirmationConfirmed
	}

	reg, err := h.ledger.ConfirmRegistration(r.Context(), callerFrom(r), registrationID, input.ParticipantEmail, input.ConfirmationStatus)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"registration": reg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdminDelete godoc
// @Summary Удалить заявку (организатор)
// @Tags registrations
// @Param registrationID path string true "Registration ID"
// @Success 204 "Удалена или уже отсутствовала"
// @Failure 403 {object} map[string]string "Только организатор"
// @Security BearerAuth
// @Router /registrations/{registrationID} [delete]
func (h *RegistrationHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	registrationID, err := pathParam(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.ledger.AdminDeleteRegistration(r.Context(), callerFrom(r), registrationID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
