package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gossip/internal/domain"
	"gossip/internal/security"
	"gossip/internal/service"
)

func newAuthService(users *mockUserRepo) *service.AuthService {
	return service.NewAuthService(
		users,
		security.NewTokenService("test-secret", time.Hour),
		security.NewPasswordHasher(4),
		security.NewTOTPService("gossip-test"),
	)
}

func TestRegister(t *testing.T) {
	users := &mockUserRepo{}
	svc := newAuthService(users)

	users.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 1
		}).
		Return(nil)

	user, err := svc.Register(context.Background(), service.RegisterInput{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice", user.Name)
	assert.NotEqual(t, "secret", user.HashedPassword)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := &mockUserRepo{}
	svc := newAuthService(users)

	users.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&domain.User{ID: 1, Email: "alice@example.com"}, nil)

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "secret",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterMissingFields(t *testing.T) {
	svc := newAuthService(&mockUserRepo{})

	_, err := svc.Register(context.Background(), service.RegisterInput{Email: "a@b.c"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin(t *testing.T) {
	users := &mockUserRepo{}
	svc := newAuthService(users)

	hashed, err := security.NewPasswordHasher(4).Hash("secret")
	require.NoError(t, err)
	users.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&domain.User{ID: 1, Email: "alice@example.com", HashedPassword: hashed}, nil)

	resp, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "alice@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, int64(1), resp.User.ID)

	// the token round-trips through the same service config
	id, err := security.NewTokenService("test-secret", time.Hour).ParseUserID(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestLoginWrongPassword(t *testing.T) {
	users := &mockUserRepo{}
	svc := newAuthService(users)

	hashed, err := security.NewPasswordHasher(4).Hash("secret")
	require.NoError(t, err)
	users.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&domain.User{ID: 1, HashedPassword: hashed}, nil)

	_, err = svc.Login(context.Background(), service.LoginInput{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginUnknownEmail(t *testing.T) {
	users := &mockUserRepo{}
	svc := newAuthService(users)

	users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, domain.ErrNotFound)

	_, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "nobody@example.com",
		Password: "secret",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGenerateTOTP(t *testing.T) {
	users := &mockUserRepo{}
	svc := newAuthService(users)

	users.On("SaveTOTP", mock.Anything, "alice@example.com", mock.Anything, mock.Anything).Return(nil)

	enrollment, err := svc.GenerateTOTP(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, enrollment.OTPSecret)
	assert.Contains(t, enrollment.OTPAuthURL, "otpauth://totp/")
	assert.Contains(t, enrollment.OTPAuthURL, "gossip-test")
}

func TestVerifyTOTP(t *testing.T) {
	users := &mockUserRepo{}
	svc := newAuthService(users)

	secret, _, err := security.NewTOTPService("gossip-test").Generate("alice@example.com")
	require.NoError(t, err)
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	users.On("GetByID", mock.Anything, int64(1)).
		Return(&domain.User{ID: 1, Email: "alice@example.com", OTPSecret: secret}, nil)
	users.On("EnableMFA", mock.Anything, int64(1)).Return(nil)

	resp, err := svc.VerifyTOTP(context.Background(), 1, code)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.True(t, resp.User.OTPVerified)
	assert.True(t, resp.User.MFAEnabled)
}

func TestVerifyTOTPBadCode(t *testing.T) {
	users := &mockUserRepo{}
	svc := newAuthService(users)

	secret, _, err := security.NewTOTPService("gossip-test").Generate("alice@example.com")
	require.NoError(t, err)

	users.On("GetByID", mock.Anything, int64(1)).
		Return(&domain.User{ID: 1, OTPSecret: secret}, nil)

	_, err = svc.VerifyTOTP(context.Background(), 1, "000000")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	users.AssertNotCalled(t, "EnableMFA", mock.Anything, mock.Anything)
}

func TestVerifyTOTPWithoutEnrollment(t *testing.T) {
	users := &mockUserRepo{}
	svc := newAuthService(users)

	users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1}, nil)

	_, err := svc.VerifyTOTP(context.Background(), 1, "123456")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
