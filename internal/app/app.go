// Package app wires configuration into the command handlers.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	"github.com/jun/drivectl/internal/adapter"
	"github.com/jun/drivectl/internal/adapter/googledrive"
	"github.com/jun/drivectl/internal/adapter/memory"
	"github.com/jun/drivectl/internal/auth"
	"github.com/jun/drivectl/internal/config"
	"github.com/jun/drivectl/internal/crypto"
	"github.com/jun/drivectl/internal/handler"
	"github.com/jun/drivectl/internal/httpclient"
	"github.com/jun/drivectl/internal/logging"
	"github.com/jun/drivectl/internal/progress"
	"github.com/jun/drivectl/internal/secret"
	"github.com/jun/drivectl/internal/tokenstore"
)

// ErrAuthUnavailable is returned by auth commands on the memory backend.
var ErrAuthUnavailable = errors.New("auth commands need the googledrive backend")

var oauthScopes = []string{drive.DriveScope, "openid", "email"}

// App holds the handlers of one CLI invocation.
type App struct {
	Config *config.Config
	Files  *handler.FileHandler
	// Auth is nil on the memory backend.
	Auth *handler.AuthHandler

	logger *logging.Logger
	awsCfg *aws.Config
}

// NewApp builds every dependency the configured backend needs. AWS
// configuration is only loaded when a component uses it.
func NewApp(ctx context.Context, cfg *config.Config, logger *logging.Logger, out io.Writer) (*App, error) {
	a := &App{Config: cfg, logger: logger}
	factory := progress.StderrFactory(cfg.Progress)

	if cfg.Backend == config.BackendMemory {
		logger.Debug().Msg("using in-memory demo storage")
		a.Files = handler.NewFileHandler(memory.NewProvider(memory.SeedDemo), cfg.Account, factory, logger, out)
		return a, nil
	}

	authService, err := a.newAuthService(ctx)
	if err != nil {
		return nil, err
	}

	retry := httpclient.Config{
		RetryMax:     cfg.Retry.Max,
		RetryWaitMin: cfg.Retry.WaitMin,
		RetryWaitMax: cfg.Retry.WaitMax,
	}
	var provider adapter.StorageProvider = googledrive.NewProvider(authService, retry, cfg.Drive.PageSize, logger)

	a.Files = handler.NewFileHandler(provider, cfg.Account, factory, logger, out)
	a.Auth = handler.NewAuthHandler(authService, logger, out)
	return a, nil
}

func (a *App) newAuthService(ctx context.Context) (*auth.AuthService, error) {
	store, err := a.tokenStore(ctx)
	if err != nil {
		return nil, err
	}
	encryptor, err := a.encryptor(ctx)
	if err != nil {
		return nil, err
	}
	oauthConfig, err := a.oauthConfig(ctx)
	if err != nil {
		return nil, err
	}
	return auth.NewAuthService(oauthConfig, store, encryptor, a.logger), nil
}

// awsConfig loads the shared AWS configuration once.
func (a *App) awsConfig(ctx context.Context) (aws.Config, error) {
	if a.awsCfg != nil {
		return *a.awsCfg, nil
	}
	var opts []func(*awsconfig.LoadOptions) error
	if a.Config.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(a.Config.AWSRegion))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	a.awsCfg = &cfg
	return cfg, nil
}

func (a *App) tokenStore(ctx context.Context) (tokenstore.Store, error) {
	ts := a.Config.TokenStore
	if ts.Type != config.StoreDynamoDB {
		a.logger.Debug().Str("path", ts.CredentialsFile).Msg("using file token store")
		return tokenstore.NewFileStore(ts.CredentialsFile), nil
	}
	awsCfg, err := a.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("table", ts.DynamoDBTable).Msg("using DynamoDB token store")
	return tokenstore.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), ts.DynamoDBTable), nil
}

func (a *App) encryptor(ctx context.Context) (crypto.Encryptor, error) {
	keyID := a.Config.TokenStore.KMSKeyID
	if keyID == "" {
		return crypto.NewPlaintextEncryptor(), nil
	}
	awsCfg, err := a.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	return crypto.NewKMSService(kms.NewFromConfig(awsCfg), keyID), nil
}

func (a *App) secretResolver(ctx context.Context) (secret.Resolver, error) {
	chain := secret.ChainResolver{secret.NewEnvResolver()}
	if a.Config.OAuth.SecretSource == config.SecretSSM {
		awsCfg, err := a.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		chain = append(chain, secret.NewSSMResolver(ssm.NewFromConfig(awsCfg)))
	}
	return chain, nil
}

// oauthConfig prefers a downloaded client_secrets.json; otherwise the client
// id comes from config and its secret from the resolver chain.
func (a *App) oauthConfig(ctx context.Context) (*oauth2.Config, error) {
	o := a.Config.OAuth
	if o.ClientSecretsFile != "" {
		data, err := os.ReadFile(o.ClientSecretsFile)
		if err != nil {
			return nil, fmt.Errorf("read client secrets: %w", err)
		}
		cfg, err := google.ConfigFromJSON(data, oauthScopes...)
		if err != nil {
			return nil, fmt.Errorf("parse client secrets %s: %w", o.ClientSecretsFile, err)
		}
		return cfg, nil
	}

	if o.ClientID == "" {
		return nil, errors.New("no OAuth client configured: set oauth.client_secrets_file or oauth.client_id (DRIVECTL_CLIENT_ID)")
	}
	resolver, err := a.secretResolver(ctx)
	if err != nil {
		return nil, err
	}
	clientSecret, err := resolver.GetSecret(ctx, o.SecretParam)
	if err != nil {
		return nil, fmt.Errorf("resolve OAuth client secret: %w", err)
	}
	return &oauth2.Config{
		ClientID:     o.ClientID,
		ClientSecret: clientSecret,
		Scopes:       oauthScopes,
		Endpoint:     google.Endpoint,
	}, nil
}
