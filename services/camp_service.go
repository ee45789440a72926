package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/repositories"
	"github.com/Dosada05/medcamp/storage"
)

const campImagePrefix = "camps"

type CampInput struct {
	Name                   string    `json:"name"`
	Description            string    `json:"description"`
	Location               string    `json:"location"`
	Date                   time.Time `json:"date"`
	Fees                   float64   `json:"fees"`
	HealthcareProfessional string    `json:"healthcare_professional"`
}

type CampListQuery struct {
	Search string
	Sort   models.CampSort
	Page   int
	Limit  int
}

// CampService управляет лагерями. Изменять лагеря может только организатор.
type CampService interface {
	Create(ctx context.Context, caller *models.Caller, input CampInput) (*models.Camp, error)
	Get(ctx context.Context, id string) (*models.Camp, error)
	List(ctx context.Context, query CampListQuery) (*models.CampListResponse, error)
	Popular(ctx context.Context, limit int) ([]models.Camp, error)
	Update(ctx context.Context, caller *models.Caller, id string, input CampInput) (*models.Camp, error)
	Delete(ctx context.Context, caller *models.Caller, id string) error
	UploadImage(ctx context.Context, caller *models.Caller, id string, file io.Reader, contentType string) (*models.Camp, error)
}

type campService struct {
	camps    repositories.CampRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewCampService(camps repositories.CampRepository, uploader storage.FileUploader, logger *slog.Logger) CampService {
	if logger == nil {
		logger = slog.Default()
	}
	return &campService{camps: camps, uploader: uploader, logger: logger}
}

func (s *campService) Create(ctx context.Context, caller *models.Caller, input CampInput) (*models.Camp, error) {
	if err := Authorize(caller, Organizer); err != nil {
		return nil, err
	}
	input, err := validateCampInput(input)
	if err != nil {
		return nil, err
	}

	camp := &models.Camp{
		ID:                     uuid.NewString(),
		Name:                   input.Name,
		Description:            input.Description,
		Location:               input.Location,
		Date:                   input.Date.UTC(),
		Fees:                   input.Fees,
		HealthcareProfessional: input.HealthcareProfessional,
		OrganizerEmail:         caller.Email,
	}
	if err := s.camps.Create(ctx, camp); err != nil {
		return nil, translateRepoError("create camp", err)
	}

	s.logger.InfoContext(ctx, "camp created", slog.String("camp_id", camp.ID), slog.String("organizer", caller.Email))
	return camp, nil
}

func (s *campService) Get(ctx context.Context, id string) (*models.Camp, error) {
	camp, err := s.camps.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError("load camp", err)
	}
	populateCampImageURL(camp, s.uploader)
	return camp, nil
}

func (s *campService) List(ctx context.Context, query CampListQuery) (*models.CampListResponse, error) {
	if !query.Sort.Valid() {
		return nil, validationError("unsupported sort %q", query.Sort)
	}
	page, limit, offset := normalizePage(query.Page, query.Limit)

	camps, total, err := s.camps.List(ctx, repositories.ListCampsFilter{
		Search: strings.TrimSpace(query.Search),
		Sort:   query.Sort,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, translateRepoError("list camps", err)
	}
	for i := range camps {
		populateCampImageURL(&camps[i], s.uploader)
	}
	return &models.CampListResponse{Camps: camps, TotalCount: total, Page: page, Limit: limit}, nil
}

func (s *campService) Popular(ctx context.Context, limit int) ([]models.Camp, error) {
	if limit <= 0 || limit > 20 {
		limit = 6
	}
	camps, _, err := s.camps.List(ctx, repositories.ListCampsFilter{Sort: models.CampSortParticipants, Limit: limit})
	if err != nil {
		return nil, translateRepoError("list popular camps", err)
	}
	for i := range camps {
		populateCampImageURL(&camps[i], s.uploader)
	}
	return camps, nil
}

func (s *campService) Update(ctx context.Context, caller *models.Caller, id string, input CampInput) (*models.Camp, error) {
	if err := Authorize(caller, Organizer); err != nil {
		return nil, err
	}
	input, err := validateCampInput(input)
	if err != nil {
		return nil, err
	}

	camp, err := s.camps.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError("load camp", err)
	}
	camp.Name = input.Name
	camp.Description = input.Description
	camp.Location = input.Location
	camp.Date = input.Date.UTC()
	camp.Fees = input.Fees
	camp.HealthcareProfessional = input.HealthcareProfessional

	if err := s.camps.Update(ctx, camp); err != nil {
		return nil, translateRepoError("update camp", err)
	}
	populateCampImageURL(camp, s.uploader)
	return camp, nil
}

func (s *campService) Delete(ctx context.Context, caller *models.Caller, id string) error {
	if err := Authorize(caller, Organizer); err != nil {
		return err
	}

	camp, err := s.camps.GetByID(ctx, id)
	if err != nil {
		return translateRepoError("load camp", err)
	}
	if err := s.camps.Delete(ctx, id); err != nil {
		return translateRepoError("delete camp", err)
	}

	if camp.ImageKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *camp.ImageKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete camp image", slog.String("camp_id", id), slog.Any("error", err))
		}
	}
	s.logger.InfoContext(ctx, "camp deleted", slog.String("camp_id", id), slog.String("organizer", caller.Email))
	return nil
}

func (s *campService) UploadImage(ctx context.Context, caller *models.Caller, id string, file io.Reader, contentType string) (*models.Camp, error) {
	if err := Authorize(caller, Organizer); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}

	camp, err := s.camps.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError("load camp", err)
	}

	key, err := storage.ImageKey(campImagePrefix, camp.ID, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("upload camp image: %w: %w", ErrUpstreamFailure, err)
	}

	previous := camp.ImageKey
	if err := s.camps.UpdateImageKey(ctx, camp.ID, &key); err != nil {
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to clean up uploaded image", slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, translateRepoError("update camp image", err)
	}
	if previous != nil && *previous != "" {
		if err := s.uploader.Delete(ctx, *previous); err != nil {
			s.logger.WarnContext(ctx, "failed to delete previous camp image", slog.String("key", *previous), slog.Any("error", err))
		}
	}

	camp.ImageKey = &key
	populateCampImageURL(camp, s.uploader)
	return camp, nil
}

func validateCampInput(in CampInput) (CampInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.HealthcareProfessional = strings.TrimSpace(in.HealthcareProfessional)

	switch {
	case in.Name == "":
		return in, validationError("camp name is required")
	case in.Location == "":
		return in, validationError("camp location is required")
	case in.Date.IsZero():
		return in, validationError("camp date is required")
	case in.Fees < 0:
		return in, validationError("camp fees must not be negative")
	case in.HealthcareProfessional == "":
		return in, validationError("healthcare professional is required")
	}
	return in, nil
}
