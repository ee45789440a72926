package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/repositories"
	"github.com/Dosada05/medcamp/utils"
)

// SessionService выдает и проверяет токены сессий.
type SessionService interface {
	// IssueToken подписывает токен для существующего пользователя. Если у пользователя
	// есть пароль, он должен совпасть. Организатор без пароля токен не получает.
	IssueToken(ctx context.Context, email, password string) (string, time.Time, error)
	// Verify возвращает email, для которого выдан токен.
	Verify(token string) (string, error)
}

type sessionService struct {
	users  repositories.UserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionService(users repositories.UserRepository, secret string, ttl time.Duration) SessionService {
	return &sessionService{users: users, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *sessionService) IssueToken(ctx context.Context, email, password string) (string, time.Time, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return "", time.Time{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, translateRepoError("load user", err)
	}
	if user.PasswordHash == "" {
		if user.Role == models.RoleOrganizer {
			return "", time.Time{}, ErrInvalidCredentials
		}
	} else if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   expires.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expires, nil
}

func (s *sessionService) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthenticated
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrUnauthenticated
	}
	return email, nil
}
