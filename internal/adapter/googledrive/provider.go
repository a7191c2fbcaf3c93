package googledrive

import (
	"context"
	"fmt"

	"github.com/jun/drivectl/internal/adapter"
	"github.com/jun/drivectl/internal/auth"
	"github.com/jun/drivectl/internal/httpclient"
	"github.com/jun/drivectl/internal/logging"
)

// Provider implements adapter.StorageProvider for Google Drive.
type Provider struct {
	authService *auth.AuthService
	retry       httpclient.Config
	pageSize    int64
	logger      *logging.Logger
}

// NewProvider creates a new Google Drive provider.
func NewProvider(authService *auth.AuthService, retry httpclient.Config, pageSize int64, logger *logging.Logger) *Provider {
	return &Provider{
		authService: authService,
		retry:       retry,
		pageSize:    pageSize,
		logger:      logger,
	}
}

// GetAdapter returns a DriveAdapter authenticated as the given account.
func (p *Provider) GetAdapter(ctx context.Context, account string) (adapter.StorageAdapter, error) {
	client, err := p.authService.GetClient(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client: %w", err)
	}

	storage, err := NewDriveAdapter(ctx, httpclient.New(client, p.retry, p.logger), client, p.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive adapter: %w", err)
	}

	return storage, nil
}
