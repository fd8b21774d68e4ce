package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/repositories"
	"github.com/Harsha29-kns/scorecraft-backend/utils"
	"github.com/golang-jwt/jwt/v4"
)

const tokenLifetime = 24 * time.Hour

type AuthService interface {
	// Login проверяет учётные данные оператора и выдает capability-токен
	// с ролью. Никаких сравнений паролей в открытом виде.
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	// ParseToken валидирует токен и возвращает claims.
	ParseToken(tokenString string) (jwt.MapClaims, error)
	// CreateUser заводит учётную запись оператора (админа или волонтёра).
	CreateUser(ctx context.Context, email, password string, role models.UserRole) (*models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
}

// minPasswordLen — минимальная длина пароля оператора.
const minPasswordLen = 8

type authService struct {
	userRepo repositories.UserRepository
	secret   []byte
}

func NewAuthService(userRepo repositories.UserRepository, secret string) AuthService {
	return &authService{userRepo: userRepo, secret: []byte(secret)}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", nil, ErrAuthInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, ErrAuthInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, user, nil
}

func (s *authService) CreateUser(ctx context.Context, email, password string, role models.UserRole) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrValidationFailed
	}
	if len(password) < minPasswordLen {
		return nil, ErrValidationFailed
	}
	if role != models.RoleAdmin && role != models.RoleVolunteer {
		return nil, ErrValidationFailed
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: hash, Role: role}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrUserEmailConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *authService) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

func (s *authService) ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrAuthInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrAuthInvalidCredentials
	}
	return claims, nil
}
