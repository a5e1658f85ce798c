package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"os"
)

// Provider access tokens are sealed at rest with AES-GCM. The key comes
// from TOKEN_ENCRYPTION_KEY and must be exactly 32 bytes.

func encryptionKey() ([]byte, error) {
	key := os.Getenv("TOKEN_ENCRYPTION_KEY")
	if len(key) != 32 {
		return nil, errors.New("TOKEN_ENCRYPTION_KEY must be exactly 32 characters")
	}
	return []byte(key), nil
}

// SealToken encrypts a provider access token and returns it base64
// encoded, nonce prepended.
func SealToken(token string) (string, error) {
	key, err := encryptionKey()
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(token), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenToken reverses SealToken.
func OpenToken(sealed string) (string, error) {
	key, err := encryptionKey()
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(raw) < gcm.NonceSize() {
		return "", errors.New("sealed token too short")
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
