package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"taskboard/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenIssuer identifies tokens minted by this service.
const TokenIssuer = "taskboard-backend"

var (
	nameRe  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AuthServiceImpl struct {
	db         *gorm.DB
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
}

func NewAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration, bcryptCost int) *AuthServiceImpl {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthServiceImpl{
		db:         db,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if len(name) < 2 || len(name) > 50 {
		return nil, models.NewError(models.ErrCodeValidation, "Name must be between 2 and 50 characters")
	}
	if !nameRe.MatchString(name) {
		return nil, models.NewError(models.ErrCodeValidation, "Name should only contain letters and spaces")
	}
	if !emailRe.MatchString(email) {
		return nil, models.NewError(models.ErrCodeValidation, "Please provide a valid email address")
	}
	if len(input.Password) < 6 {
		return nil, models.NewError(models.ErrCodeValidation, "Password must be at least 6 characters")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, models.WrapError(models.ErrCodeStorage, "failed to check existing user", err)
	}
	if count > 0 {
		return nil, models.NewError(models.ErrCodeConflict, "Email is already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, models.WrapError(models.ErrCodeStorage, "failed to generate user ID", err)
	}

	user := models.User{
		ID:       id,
		Name:     name,
		Email:    email,
		Password: string(hashed),
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, models.WrapError(models.ErrCodeStorage, "failed to create user", err)
	}
	return &user, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ? AND is_active = ?", email, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", models.ErrBadLogin
		}
		return nil, "", models.WrapError(models.ErrCodeStorage, "failed to load user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", models.ErrBadLogin
	}

	now := time.Now()
	user.LastLoginAt = &now
	s.db.WithContext(ctx).Model(&user).Update("last_login_at", now)

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func (s *AuthServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrUserNotFound
		}
		return nil, models.WrapError(models.ErrCodeStorage, "failed to load user", err)
	}
	return &user, nil
}

func (s *AuthServiceImpl) generateToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"iss":     TokenIssuer,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
