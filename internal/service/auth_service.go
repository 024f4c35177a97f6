package service

import (
	"context"
	"errors"
	"fmt"

	"gossip/internal/domain"
	"gossip/internal/security"
)

// AuthService handles registration, login, and TOTP second-factor
// enrollment.
type AuthService struct {
	users  domain.UserRepository
	tokens *security.TokenService
	hash   *security.PasswordHasher
	totp   *security.TOTPService
}

func NewAuthService(
	users domain.UserRepository,
	tokens *security.TokenService,
	hash *security.PasswordHasher,
	totp *security.TOTPService,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hash:   hash,
		totp:   totp,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type TokenResponse struct {
	AccessToken string
	TokenType   string
	User        *domain.User
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrConflict
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:           in.Name,
		Email:          in.Email,
		HashedPassword: hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := s.hash.Verify(in.Password, user.HashedPassword); err != nil {
		return nil, domain.ErrUnauthorized
	}

	token, err := s.tokens.CreateForUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

type TOTPEnrollment struct {
	OTPAuthURL string `json:"otpAuthUrl"`
	OTPSecret  string `json:"otpSecret"`
}

// GenerateTOTP creates a fresh TOTP secret for the account and stores it.
// The secret is not active until verified.
func (s *AuthService) GenerateTOTP(ctx context.Context, email string) (*TOTPEnrollment, error) {
	secret, authURL, err := s.totp.Generate(email)
	if err != nil {
		return nil, fmt.Errorf("generate totp: %w", err)
	}
	if err := s.users.SaveTOTP(ctx, email, secret, authURL); err != nil {
		return nil, err
	}
	return &TOTPEnrollment{OTPAuthURL: authURL, OTPSecret: secret}, nil
}

// VerifyTOTP validates a submitted code against the stored secret, marks
// MFA enabled, and issues a fresh token.
func (s *AuthService) VerifyTOTP(ctx context.Context, userID int64, code string) (*TokenResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.OTPSecret == "" || !s.totp.Validate(code, user.OTPSecret) {
		return nil, domain.ErrUnauthorized
	}

	if err := s.users.EnableMFA(ctx, user.ID); err != nil {
		return nil, err
	}
	user.OTPEnabled = true
	user.OTPVerified = true
	user.MFAEnabled = true

	token, err := s.tokens.CreateForUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}
