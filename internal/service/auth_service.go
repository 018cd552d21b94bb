package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tecelaria/internal/apperr"
	"tecelaria/internal/model"
	"tecelaria/internal/repository"
)

const minPasswordLength = 8

// AuthService handles signup, login and bearer-token sessions.
type AuthService struct {
	users     *repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(users *repository.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, jwtSecret: []byte(jwtSecret), tokenTTL: tokenTTL}
}

// SignupInput is the registration payload, validated before any write.
type SignupInput struct {
	Email    string
	Password string
	Name     string
	CPF      string
}

// Signup validates the input, hashes the password and creates the account.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.New(apperr.Validation, "invalid email address")
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperr.Newf(apperr.Validation, "password must have at least %d characters", minPasswordLength)
	}
	cpf := ""
	if strings.TrimSpace(input.CPF) != "" {
		normalized, ok := NormalizeCPF(input.CPF)
		if !ok {
			return nil, apperr.New(apperr.Validation, "invalid CPF")
		}
		cpf = normalized
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperr.New(apperr.Conflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(input.Name),
		CPF:          cpf,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials and issues a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperr.New(apperr.Unauthorized, "invalid credentials")
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", apperr.New(apperr.Unauthorized, "invalid credentials")
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) issueToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// UserIDFromToken verifies a bearer token and returns the session's user id.
func (s *AuthService) UserIDFromToken(tokenString string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, apperr.New(apperr.Unauthorized, "invalid session")
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.Unauthorized, "invalid session")
	}
	return uint(id), nil
}

// GetUser loads the session's account.
func (s *AuthService) GetUser(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes name and CPF after validation.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, name, cpf string) (*model.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	normalized := ""
	if strings.TrimSpace(cpf) != "" {
		var ok bool
		normalized, ok = NormalizeCPF(cpf)
		if !ok {
			return nil, apperr.New(apperr.Validation, "invalid CPF")
		}
	}
	if err := s.users.UpdateProfile(ctx, user, strings.TrimSpace(name), normalized); err != nil {
		return nil, err
	}
	return user, nil
}

// NormalizeCPF strips punctuation and validates the Brazilian CPF checksum.
// Returns the 11-digit form and whether the number is valid.
func NormalizeCPF(raw string) (string, bool) {
	var digits []rune
	for _, r := range raw {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) != 11 {
		return "", false
	}
	cpf := string(digits)

	// CPFs with all digits equal pass the checksum but are invalid.
	allEqual := true
	for i := 1; i < 11; i++ {
		if cpf[i] != cpf[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return "", false
	}

	if digitAt(cpf, 9) != checkDigit(cpf, 9) || digitAt(cpf, 10) != checkDigit(cpf, 10) {
		return "", false
	}
	return cpf, true
}

func digitAt(cpf string, pos int) int {
	return int(cpf[pos] - '0')
}

// checkDigit computes the verification digit over the first n positions.
func checkDigit(cpf string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += digitAt(cpf, i) * (n + 1 - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}
