package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/repositories"
	"github.com/Dosada05/medcamp/storage"
	"github.com/Dosada05/medcamp/utils"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// translateRepoError maps repository sentinels to service errors. Anything
// unrecognised is an upstream failure.
func translateRepoError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrCampNotFound), errors.Is(err, repositories.ErrFeedbackCampInvalid):
		return ErrCampNotFound
	case errors.Is(err, repositories.ErrRegistrationNotFound):
		return ErrRegistrationNotFound
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrRegistrationConflict):
		return ErrDuplicateRegistration
	case errors.Is(err, repositories.ErrCampCountUnderflow):
		return ErrInvalidCountAdjustment
	case errors.Is(err, repositories.ErrTransactionConflict):
		return ErrPaymentReused
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstreamFailure, err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return validationError("email is required")
	}
	if !utils.IsValidEmail(email) {
		return validationError("invalid email %q", email)
	}
	return nil
}

// normalizePage turns a 1-based page and limit into limit and offset.
func normalizePage(page, limit int) (int, int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page <= 0 {
		page = 1
	}
	return page, limit, (page - 1) * limit
}

func populateCampImageURL(camp *models.Camp, uploader storage.FileUploader) {
	if camp == nil || uploader == nil || camp.ImageKey == nil || *camp.ImageKey == "" {
		return
	}
	url := uploader.GetPublicURL(*camp.ImageKey)
	if url != "" {
		camp.ImageURL = &url
	}
}
