package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/repositories"
	"github.com/Dosada05/medcamp/storage"
	"github.com/Dosada05/medcamp/utils"
)

const (
	userPhotoPrefix   = "users"
	minPasswordLength = 8
)

type SignUpInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Photo    string `json:"photo"`
	Password string `json:"password,omitempty"`

	// Обязателен при регистрации адреса из списка организаторов.
	OrganizerCode string `json:"organizer_code,omitempty"`
}

// OrganizerAccess описывает, кто может стать организатором: адреса из Emails,
// зарегистрированные с паролем и кодом SignupCode. Пустой SignupCode закрывает
// регистрацию организаторов через API.
type OrganizerAccess struct {
	Emails     []string
	SignupCode string
}

// UserService управляет профилями пользователей и их ролями.
type UserService interface {
	// EnsureUser создает пользователя при первом входе и сообщает, был ли он создан.
	// Участник может войти без пароля; организатору нужны пароль и код организатора.
	EnsureUser(ctx context.Context, input SignUpInput) (*models.User, bool, error)
	GetUser(ctx context.Context, caller *models.Caller, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, caller *models.Caller, email string, patch models.UserProfilePatch) (*models.User, error)
	UploadPhoto(ctx context.Context, caller *models.Caller, email string, file io.Reader, contentType string) (*models.User, error)
	// Resolve возвращает вызывающего для субъекта сессии. Роль организатора
	// выдается только учетной записи с паролем.
	Resolve(ctx context.Context, email string) (*models.Caller, error)
}

type userService struct {
	users      repositories.UserRepository
	uploader   storage.FileUploader
	organizers map[string]struct{}
	signupCode string
	logger     *slog.Logger
}

func NewUserService(users repositories.UserRepository, uploader storage.FileUploader, access OrganizerAccess, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	organizers := make(map[string]struct{}, len(access.Emails))
	for _, e := range access.Emails {
		if e = normalizeEmail(e); e != "" {
			organizers[e] = struct{}{}
		}
	}
	return &userService{
		users:      users,
		uploader:   uploader,
		organizers: organizers,
		signupCode: access.SignupCode,
		logger:     logger,
	}
}

func (s *userService) EnsureUser(ctx context.Context, input SignUpInput) (*models.User, bool, error) {
	email := normalizeEmail(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, false, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, false, translateRepoError("load user", err)
	}

	user := &models.User{
		Email: email,
		Name:  strings.TrimSpace(input.Name),
		Photo: strings.TrimSpace(input.Photo),
		Role:  s.roleFor(email),
	}
	if user.Role == models.RoleOrganizer {
		if err := s.checkOrganizerSignup(input); err != nil {
			s.logger.WarnContext(ctx, "organizer signup rejected", slog.String("email", email), slog.Any("error", err))
			return nil, false, err
		}
	}
	if input.Password != "" {
		if len(input.Password) < minPasswordLength {
			return nil, false, validationError("password must be at least %d characters", minPasswordLength)
		}
		hash, err := utils.HashPassword(input.Password)
		if err != nil {
			return nil, false, fmt.Errorf("ошибка хеширования пароля: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			// Параллельная регистрация с тем же email: вставка идемпотентна.
			existing, getErr := s.users.GetByEmail(ctx, email)
			if getErr != nil {
				return nil, false, translateRepoError("load user", getErr)
			}
			return existing, false, nil
		}
		return nil, false, translateRepoError("create user", err)
	}

	s.logger.InfoContext(ctx, "user created", slog.String("email", email), slog.String("role", string(user.Role)))
	return user, true, nil
}

func (s *userService) GetUser(ctx context.Context, caller *models.Caller, email string) (*models.User, error) {
	email = normalizeEmail(email)
	if err := Authorize(caller, AnyOf(SelfOwner(email), Organizer)); err != nil {
		return nil, err
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, translateRepoError("load user", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, caller *models.Caller, email string, patch models.UserProfilePatch) (*models.User, error) {
	email = normalizeEmail(email)
	if err := Authorize(caller, SelfOwner(email)); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, validationError("name must not be empty")
		}
		patch.Name = &name
	}

	user, err := s.users.UpdateProfile(ctx, email, patch)
	if err != nil {
		return nil, translateRepoError("update profile", err)
	}
	return user, nil
}

func (s *userService) UploadPhoto(ctx context.Context, caller *models.Caller, email string, file io.Reader, contentType string) (*models.User, error) {
	email = normalizeEmail(email)
	if err := Authorize(caller, SelfOwner(email)); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}

	key, err := storage.ImageKey(userPhotoPrefix, email, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w: %w", ErrUpstreamFailure, err)
	}

	photo := result.Location
	user, err := s.users.UpdateProfile(ctx, email, models.UserProfilePatch{Photo: &photo})
	if err != nil {
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to clean up uploaded photo", slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, translateRepoError("update photo", err)
	}
	return user, nil
}

func (s *userService) Resolve(ctx context.Context, email string) (*models.Caller, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, translateRepoError("resolve caller", err)
	}
	role := user.Role
	if _, ok := s.organizers[user.Email]; ok {
		role = models.RoleOrganizer
	}
	if role == models.RoleOrganizer && user.PasswordHash == "" {
		role = models.RoleParticipant
	}
	return &models.Caller{Email: user.Email, Role: role}, nil
}

func (s *userService) checkOrganizerSignup(input SignUpInput) error {
	if input.Password == "" {
		return validationError("organizer accounts require a password")
	}
	if s.signupCode == "" {
		return fmt.Errorf("%w: organizer signup is disabled", ErrForbidden)
	}
	if subtle.ConstantTimeCompare([]byte(input.OrganizerCode), []byte(s.signupCode)) != 1 {
		return fmt.Errorf("%w: invalid organizer code", ErrForbidden)
	}
	return nil
}

func (s *userService) roleFor(email string) models.UserRole {
	if _, ok := s.organizers[email]; ok {
		return models.RoleOrganizer
	}
	return models.RoleParticipant
}
