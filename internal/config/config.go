// Package config loads drivectl settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no --config flag is given. It may be absent.
const DefaultPath = "~/.config/drivectl/config.yaml"

const (
	BackendGoogleDrive = "googledrive"
	BackendMemory      = "memory"

	StoreFile     = "file"
	StoreDynamoDB = "dynamodb"

	SecretEnv = "env"
	SecretSSM = "ssm"
)

// Config is the full set of drivectl settings.
type Config struct {
	// Account is the credential profile used by remote commands.
	Account string `yaml:"account" default:"default"`
	// Backend selects the storage service; "memory" serves a local demo tree.
	Backend string `yaml:"backend" default:"googledrive"`

	OAuth      OAuthConfig      `yaml:"oauth"`
	TokenStore TokenStoreConfig `yaml:"token_store"`
	Drive      DriveConfig      `yaml:"drive"`
	Retry      RetryConfig      `yaml:"retry"`

	AWSRegion string `yaml:"aws_region"`
	Progress  bool   `yaml:"progress" default:"true"`
}

// OAuthConfig locates the OAuth client. ClientSecretsFile wins over
// ClientID plus a secret looked up from SecretSource.
type OAuthConfig struct {
	ClientSecretsFile string `yaml:"client_secrets_file"`
	ClientID          string `yaml:"client_id"`
	SecretSource      string `yaml:"secret_source" default:"env"`
	SecretParam       string `yaml:"secret_param" default:"/drivectl/google-client-secret"`
}

type TokenStoreConfig struct {
	Type            string `yaml:"type" default:"file"`
	CredentialsFile string `yaml:"credentials_file" default:"~/.config/drivectl/credentials.json"`
	DynamoDBTable   string `yaml:"dynamodb_table" default:"DrivectlTokens"`
	// KMSKeyID encrypts stored refresh tokens when set.
	KMSKeyID string `yaml:"kms_key_id"`
}

type DriveConfig struct {
	PageSize int64 `yaml:"page_size" default:"100"`
}

type RetryConfig struct {
	Max     int           `yaml:"max" default:"5"`
	WaitMin time.Duration `yaml:"wait_min" default:"1s"`
	WaitMax time.Duration `yaml:"wait_max" default:"30s"`
}

// env overrides, applied after the file
var envOverrides = []struct {
	name string
	set  func(*Config, string)
}{
	{"DRIVECTL_ACCOUNT", func(c *Config, v string) { c.Account = v }},
	{"DRIVECTL_BACKEND", func(c *Config, v string) { c.Backend = v }},
	{"DRIVECTL_CLIENT_ID", func(c *Config, v string) { c.OAuth.ClientID = v }},
	{"DRIVECTL_CLIENT_SECRETS_FILE", func(c *Config, v string) { c.OAuth.ClientSecretsFile = v }},
	{"DRIVECTL_SECRET_SOURCE", func(c *Config, v string) { c.OAuth.SecretSource = v }},
	{"DRIVECTL_TOKEN_STORE", func(c *Config, v string) { c.TokenStore.Type = v }},
	{"DRIVECTL_CREDENTIALS_FILE", func(c *Config, v string) { c.TokenStore.CredentialsFile = v }},
	{"DRIVECTL_DYNAMODB_TABLE", func(c *Config, v string) { c.TokenStore.DynamoDBTable = v }},
	{"DRIVECTL_KMS_KEY_ID", func(c *Config, v string) { c.TokenStore.KMSKeyID = v }},
	{"AWS_REGION", func(c *Config, v string) { c.AWSRegion = v }},
}

// Default returns a Config with every default applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	return cfg, nil
}

// Load reads path (DefaultPath when empty), then applies environment
// overrides and expands "~" in file paths. A missing file is only an error
// when path was given explicitly.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand config path: %w", err)
	}

	data, err := os.ReadFile(expanded)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", expanded, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	for _, o := range envOverrides {
		if v, ok := os.LookupEnv(o.name); ok && v != "" {
			o.set(cfg, v)
		}
	}

	for _, p := range []*string{&cfg.OAuth.ClientSecretsFile, &cfg.TokenStore.CredentialsFile} {
		if *p == "" {
			continue
		}
		if *p, err = homedir.Expand(*p); err != nil {
			return nil, fmt.Errorf("expand %q: %w", *p, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated values and ranges.
func (c *Config) Validate() error {
	var problems []string
	if c.Account == "" {
		problems = append(problems, "account must not be empty")
	}
	if c.Backend != BackendGoogleDrive && c.Backend != BackendMemory {
		problems = append(problems, fmt.Sprintf("backend %q must be %q or %q", c.Backend, BackendGoogleDrive, BackendMemory))
	}
	if c.OAuth.SecretSource != SecretEnv && c.OAuth.SecretSource != SecretSSM {
		problems = append(problems, fmt.Sprintf("oauth.secret_source %q must be %q or %q", c.OAuth.SecretSource, SecretEnv, SecretSSM))
	}
	switch c.TokenStore.Type {
	case StoreFile:
		if c.TokenStore.CredentialsFile == "" {
			problems = append(problems, "token_store.credentials_file must be set for the file store")
		}
	case StoreDynamoDB:
		if c.TokenStore.DynamoDBTable == "" {
			problems = append(problems, "token_store.dynamodb_table must be set for the dynamodb store")
		}
	default:
		problems = append(problems, fmt.Sprintf("token_store.type %q must be %q or %q", c.TokenStore.Type, StoreFile, StoreDynamoDB))
	}
	if c.Drive.PageSize < 1 || c.Drive.PageSize > 1000 {
		problems = append(problems, fmt.Sprintf("drive.page_size %d must be between 1 and 1000", c.Drive.PageSize))
	}
	if c.Retry.Max < 0 || c.Retry.WaitMin < 0 || c.Retry.WaitMax < c.Retry.WaitMin {
		problems = append(problems, "retry settings must be non-negative with wait_max >= wait_min")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
