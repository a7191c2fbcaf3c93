// Package secret looks up the OAuth client secret from the environment or
// from SSM Parameter Store. Secrets are addressed by parameter name
// ("/drivectl/google-client-secret"); the environment form of a name is its
// last path segment upper-cased ("GOOGLE_CLIENT_SECRET").
package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// ErrNotFound is returned when a source does not hold the requested secret.
// ChainResolver moves on to the next source only for this error.
var ErrNotFound = errors.New("secret not found")

// Resolver retrieves secret values by parameter name.
type Resolver interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// SSMClient is the subset of *ssm.Client used by SSMResolver.
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMResolver reads SecureString parameters with decryption.
type SSMResolver struct {
	client SSMClient
}

func NewSSMResolver(client SSMClient) *SSMResolver {
	return &SSMResolver{client: client}
}

func (r *SSMResolver) GetSecret(ctx context.Context, name string) (string, error) {
	out, err := r.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	var missing *ssmtypes.ParameterNotFound
	if errors.As(err, &missing) {
		return "", fmt.Errorf("ssm parameter %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("ssm get parameter %q: %w", name, err)
	}
	if out.Parameter == nil {
		return "", fmt.Errorf("ssm parameter %q: %w", name, ErrNotFound)
	}
	return clean(name, aws.ToString(out.Parameter.Value))
}

// EnvResolver reads the environment variable derived from the parameter name.
type EnvResolver struct {
	lookup func(string) (string, bool)
}

func NewEnvResolver() *EnvResolver {
	return &EnvResolver{lookup: os.LookupEnv}
}

func (r *EnvResolver) GetSecret(_ context.Context, name string) (string, error) {
	envName := paramNameToEnvVar(name)
	val, ok := r.lookup(envName)
	if !ok {
		return "", fmt.Errorf("environment variable %s: %w", envName, ErrNotFound)
	}
	return clean(envName, val)
}

// ChainResolver asks each resolver in turn and returns the first value found.
// Errors other than ErrNotFound stop the chain.
type ChainResolver []Resolver

func (c ChainResolver) GetSecret(ctx context.Context, name string) (string, error) {
	for _, r := range c {
		val, err := r.GetSecret(ctx, name)
		if err == nil {
			return val, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%q (tried %d sources): %w", name, len(c), ErrNotFound)
}

// clean trims the newline a pasted secret usually carries; blank counts as missing.
func clean(source, val string) (string, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return "", fmt.Errorf("%s is empty: %w", source, ErrNotFound)
	}
	return val, nil
}

// "/drivectl/google-client-secret" -> "GOOGLE_CLIENT_SECRET"
func paramNameToEnvVar(name string) string {
	last := name[strings.LastIndex(name, "/")+1:]
	return strings.ToUpper(strings.ReplaceAll(last, "-", "_"))
}
