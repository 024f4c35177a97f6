package security

import (
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTPService generates and validates time-based one-time passwords for
// second-factor enrollment.
type TOTPService struct {
	issuer string
}

func NewTOTPService(issuer string) *TOTPService {
	return &TOTPService{issuer: issuer}
}

// Generate creates a fresh secret for the account and returns the secret
// together with the otpauth:// URL for authenticator apps.
func (s *TOTPService) Generate(accountName string) (secret, authURL string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: accountName,
		SecretSize:  15,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// Validate checks a submitted code against the stored secret.
func (s *TOTPService) Validate(code, secret string) bool {
	return totp.Validate(code, secret)
}
