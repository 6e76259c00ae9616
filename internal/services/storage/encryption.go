package storage

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
)

// key is the scrypt identity/recipient pair derived from one password
type key struct {
	identity  *age.ScryptIdentity
	recipient *age.ScryptRecipient
}

func deriveKey(password string) (*key, error) {
	recipient, err := age.NewScryptRecipient(password)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipient: %w", err)
	}
	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}
	return &key{identity: identity, recipient: recipient}, nil
}

// seal encrypts data to the key's recipient
func (k *key) seal(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, k.recipient)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// open decrypts data sealed with the same password
func (k *key) open(data []byte) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(data), k.identity)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// verifies reports whether sealed is the verify payload under this key
func (k *key) verifies(sealed []byte) bool {
	plain, err := k.open(sealed)
	return err == nil && string(plain) == verifyMagic
}

// isAgeEncrypted checks if data starts with the Age encryption header
func isAgeEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, []byte(ageHeader))
}
