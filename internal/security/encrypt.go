package security

import (
	"errors"
	"time"

	"github.com/fernet/fernet-go"
)

// Encryptor provides symmetric encryption for message text at rest.
type Encryptor struct {
	keys []*fernet.Key
}

// NewEncryptor parses one or more base64 fernet keys. The first key signs
// new tokens; all keys are tried on decrypt, allowing key rotation.
func NewEncryptor(rawKeys ...string) (*Encryptor, error) {
	if len(rawKeys) == 0 {
		return nil, errors.New("at least one encryption key is required")
	}
	keys, err := fernet.DecodeKeys(rawKeys...)
	if err != nil {
		return nil, err
	}
	return &Encryptor{keys: keys}, nil
}

func (e *Encryptor) Encrypt(plain string) (string, error) {
	tok, err := fernet.EncryptAndSign([]byte(plain), e.keys[0])
	if err != nil {
		return "", err
	}
	return string(tok), nil
}

// Decrypt verifies and decrypts a token. Tokens do not expire; message
// history remains readable indefinitely.
func (e *Encryptor) Decrypt(enc string) (string, error) {
	plain := fernet.VerifyAndDecrypt([]byte(enc), 0*time.Second, e.keys)
	if plain == nil {
		return "", errors.New("failed to decrypt message payload")
	}
	return string(plain), nil
}
