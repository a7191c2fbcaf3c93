package crypto

import (
	"context"
	"fmt"
	"strings"
)

const plaintextPrefix = "plain:"

// PlaintextEncryptor stores values unencrypted for setups without a KMS key.
// The file token store is written with 0600 permissions in that case.
type PlaintextEncryptor struct{}

func NewPlaintextEncryptor() *PlaintextEncryptor {
	return &PlaintextEncryptor{}
}

func (p *PlaintextEncryptor) Encrypt(_ context.Context, plaintext string) (string, error) {
	return plaintextPrefix + plaintext, nil
}

func (p *PlaintextEncryptor) Decrypt(_ context.Context, ciphertext string) (string, error) {
	value, ok := strings.CutPrefix(ciphertext, plaintextPrefix)
	if !ok {
		return "", fmt.Errorf("read stored token: %w", ErrScheme)
	}
	return value, nil
}
