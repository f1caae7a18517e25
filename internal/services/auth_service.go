package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"yamdb/internal/apperrors"
	"yamdb/internal/models"
	"yamdb/internal/repositories"
	"yamdb/internal/validation"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	confirmationCodeLength   = 20
	confirmationCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789!@#$%&*"
)

// AuthConfig tunes token issuance.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	// RotateCodeOnUse clears the stored confirmation code after a successful
	// token exchange. Off by default: a code stays valid until the next signup.
	RotateCodeOnUse bool
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
}

// TokenRequest is the body of POST /auth/token.
type TokenRequest struct {
	Username         string `json:"username" validate:"required,max=150"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

// AuthService handles signup, confirmation codes and access tokens.
type AuthService struct {
	userRepo   repositories.UserRepository
	notifier   Notifier
	validate   *validator.Validate
	jwtSecret  []byte
	tokenTTL   time.Duration
	rotateCode bool
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, notifier Notifier, cfg AuthConfig) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		notifier:   notifier,
		validate:   validation.New(),
		jwtSecret:  []byte(cfg.JWTSecret),
		tokenTTL:   ttl,
		rotateCode: cfg.RotateCodeOnUse,
	}
}

// Signup registers a user, or reuses the account matching both username and
// email, and sends a fresh confirmation code.
func (s *AuthService) Signup(req SignupRequest) (*models.User, error) {
	if err := validation.Struct(s.validate, req); err != nil {
		return nil, err
	}

	byName, err := s.lookup(s.userRepo.GetByUsername(req.Username))
	if err != nil {
		return nil, err
	}
	byEmail, err := s.lookup(s.userRepo.GetByEmail(req.Email))
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if byName != nil && byName.Email != req.Email {
		fields["username"] = "A user with that username already exists."
	}
	if byEmail != nil && (byName == nil || byEmail.ID != byName.ID) {
		fields["email"] = "A user with that email already exists."
	}
	if len(fields) > 0 {
		return nil, &apperrors.ValidationError{Fields: fields}
	}

	user := byName
	if user == nil {
		user = &models.User{Username: req.Username, Email: req.Email, Role: models.RoleUser}
		if err := s.userRepo.Create(user); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				return nil, apperrors.NewValidationError("username", "A user with that username already exists.")
			}
			return nil, fmt.Errorf("failed to register user: %w", err)
		}
	}

	code, err := generateConfirmationCode()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash confirmation code: %w", err)
	}
	if err := s.userRepo.SetConfirmationCode(user.ID, string(hash)); err != nil {
		return nil, err
	}
	user.ConfirmationCode = string(hash)

	if s.notifier == nil {
		log.Println("Notifier is not initialized. Skipping confirmation code delivery.")
	} else if err := s.notifier.SendConfirmationCode(user.Email, user.Username, code); err != nil {
		log.Printf("Warning: Failed to send confirmation code to %s: %v", user.Username, err)
	}
	return user, nil
}

// ObtainToken exchanges a username and confirmation code for an access token.
func (s *AuthService) ObtainToken(req TokenRequest) (string, error) {
	if err := validation.Struct(s.validate, req); err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByUsername(req.Username)
	if err != nil {
		return "", err
	}

	if user.ConfirmationCode == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.ConfirmationCode), []byte(req.ConfirmationCode)) != nil {
		return "", apperrors.NewValidationError("confirmation_code", "Invalid confirmation code.")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", err
	}

	if s.rotateCode {
		if err := s.userRepo.SetConfirmationCode(user.ID, ""); err != nil {
			return "", err
		}
	}
	return token, nil
}

// IssueToken signs an access token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// lookup turns a not-found result into a nil user.
func (s *AuthService) lookup(user *models.User, err error) (*models.User, error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

func generateConfirmationCode() (string, error) {
	max := big.NewInt(int64(len(confirmationCodeAlphabet)))
	code := make([]byte, confirmationCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate confirmation code: %w", err)
		}
		code[i] = confirmationCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
