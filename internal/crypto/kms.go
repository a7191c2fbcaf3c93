// Package crypto encrypts refresh tokens before they reach a token store.
//
// Stored values carry a scheme prefix ("kms:" or "plain:") so a credential
// written under one key setup is rejected, not misread, under another.
package crypto

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

const kmsPrefix = "kms:"

// ErrScheme is returned when a stored value was produced by a different Encryptor.
var ErrScheme = errors.New("credential was stored with a different encryption setting")

// Encryptor turns refresh tokens into storable strings and back.
type Encryptor interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

// KMSClient is the subset of *kms.Client used here.
type KMSClient interface {
	Encrypt(ctx context.Context, params *kms.EncryptInput, optFns ...func(*kms.Options)) (*kms.EncryptOutput, error)
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// KMSService encrypts with an AWS KMS key. Every call carries the same
// encryption context, so ciphertexts from other applications sharing the
// key do not decrypt here.
type KMSService struct {
	client  KMSClient
	keyID   string
	context map[string]string
}

// NewKMSService returns a KMS-backed Encryptor.
// keyID may be a key id, key ARN or alias ("alias/drivectl-token-key").
func NewKMSService(client KMSClient, keyID string) *KMSService {
	return &KMSService{
		client:  client,
		keyID:   keyID,
		context: map[string]string{"application": "drivectl", "purpose": "oauth-refresh-token"},
	}
}

func (s *KMSService) Encrypt(ctx context.Context, plaintext string) (string, error) {
	out, err := s.client.Encrypt(ctx, &kms.EncryptInput{
		KeyId:             aws.String(s.keyID),
		Plaintext:         []byte(plaintext),
		EncryptionContext: s.context,
	})
	if err != nil {
		return "", fmt.Errorf("kms encrypt with %s: %w", s.keyID, err)
	}
	return kmsPrefix + base64.StdEncoding.EncodeToString(out.CiphertextBlob), nil
}

func (s *KMSService) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	encoded, ok := strings.CutPrefix(ciphertext, kmsPrefix)
	if !ok {
		return "", fmt.Errorf("kms decrypt: %w", ErrScheme)
	}
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("kms decrypt: malformed ciphertext: %w", err)
	}

	out, err := s.client.Decrypt(ctx, &kms.DecryptInput{
		CiphertextBlob:    blob,
		KeyId:             aws.String(s.keyID),
		EncryptionContext: s.context,
	})
	if err != nil {
		return "", fmt.Errorf("kms decrypt with %s: %w", s.keyID, err)
	}
	return string(out.Plaintext), nil
}
