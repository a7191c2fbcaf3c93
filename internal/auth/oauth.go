// Package auth runs the OAuth2 login flow and builds authenticated HTTP
// clients from stored credentials.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jun/drivectl/internal/crypto"
	"github.com/jun/drivectl/internal/logging"
	"github.com/jun/drivectl/internal/model"
	"github.com/jun/drivectl/internal/tokenstore"
	"golang.org/x/oauth2"
)

// ErrNotLoggedIn is returned when an account has no stored credential.
var ErrNotLoggedIn = errors.New("not logged in (run `drivectl auth login`)")

// AuthService handles OAuth2 authentication flows and token management.
type AuthService struct {
	oauthConfig *oauth2.Config
	store       tokenstore.Store
	encryptor   crypto.Encryptor
	logger      *logging.Logger
}

// NewAuthService creates a new AuthService.
// The oauthConfig should be constructed by the caller; its RedirectURL is set per login.
func NewAuthService(oauthConfig *oauth2.Config, store tokenstore.Store, encryptor crypto.Encryptor, logger *logging.Logger) *AuthService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &AuthService{
		oauthConfig: oauthConfig,
		store:       store,
		encryptor:   encryptor,
		logger:      logger,
	}
}

// withRedirect copies the client config with the redirect of one login attempt.
func (s *AuthService) withRedirect(redirectURL string) *oauth2.Config {
	cfg := *s.oauthConfig
	cfg.RedirectURL = redirectURL
	return &cfg
}

// GenerateAuthURL returns the consent URL for a login redirecting to
// redirectURL, asking for offline access so a refresh token is issued.
func (s *AuthService) GenerateAuthURL(state, redirectURL string) string {
	return s.withRedirect(redirectURL).AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode trades the authorization code for a token. redirectURL must
// match the one the consent URL was generated with.
func (s *AuthService) ExchangeCode(ctx context.Context, code, redirectURL string) (*oauth2.Token, error) {
	return s.withRedirect(redirectURL).Exchange(ctx, code)
}

// SaveToken encrypts the refresh token and stores the credential of account.
// A token without a refresh token keeps the one already stored.
func (s *AuthService) SaveToken(ctx context.Context, account string, token *oauth2.Token) (*model.StoredCredential, error) {
	existing, err := s.store.Load(ctx, account)
	if err != nil && !errors.Is(err, tokenstore.ErrNotFound) {
		return nil, fmt.Errorf("failed to load stored credential: %w", err)
	}

	cred := model.StoredCredential{Account: account}
	if existing != nil {
		cred = *existing
	}

	if token.RefreshToken != "" {
		encrypted, err := s.encryptor.Encrypt(ctx, token.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
		cred.EncryptedRefreshToken = encrypted
	}
	if cred.EncryptedRefreshToken == "" {
		return nil, fmt.Errorf("no refresh token in response")
	}

	if email := EmailFromToken(token); email != "" {
		cred.Email = email
	}
	cred.AccessToken = token.AccessToken
	cred.Expiry = token.Expiry
	cred.UpdatedAt = time.Now()

	if err := s.store.Save(ctx, &cred); err != nil {
		return nil, fmt.Errorf("failed to save credential: %w", err)
	}
	return &cred, nil
}

// GetCredential returns the stored credential of account.
func (s *AuthService) GetCredential(ctx context.Context, account string) (*model.StoredCredential, error) {
	cred, err := s.store.Load(ctx, account)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return nil, fmt.Errorf("account %q: %w", account, ErrNotLoggedIn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stored credential: %w", err)
	}
	return cred, nil
}

// Logout removes the stored credential of account.
func (s *AuthService) Logout(ctx context.Context, account string) error {
	if err := s.store.Delete(ctx, account); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

// GetClient returns an authenticated http.Client for account. Tokens
// refreshed by the client are written back to the store.
func (s *AuthService) GetClient(ctx context.Context, account string) (*http.Client, error) {
	cred, err := s.GetCredential(ctx, account)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.encryptor.Decrypt(ctx, cred.EncryptedRefreshToken)
	if errors.Is(err, crypto.ErrScheme) {
		return nil, fmt.Errorf("%w; run `drivectl auth login` again", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: refreshToken,
		Expiry:       cred.Expiry,
	}
	src := &persistingSource{
		ctx:     ctx,
		service: s,
		account: account,
		base:    s.oauthConfig.TokenSource(ctx, token),
		last:    cred.AccessToken,
	}
	return oauth2.NewClient(ctx, src), nil
}

// persistingSource saves every newly minted access token.
type persistingSource struct {
	ctx     context.Context
	service *AuthService
	account string
	base    oauth2.TokenSource

	mu   sync.Mutex
	last string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		if _, err := p.service.SaveToken(p.ctx, p.account, tok); err != nil {
			p.service.logger.Warn().Err(err).Str("account", p.account).Msg("failed to persist refreshed token")
		} else {
			p.service.logger.Debug().Str("account", p.account).Time("expiry", tok.Expiry).Msg("persisted refreshed token")
		}
	}
	return tok, nil
}

// EmailFromToken returns the email claim of the id_token returned with
// token, or "" when there is none. The signature is not verified.
func EmailFromToken(token *oauth2.Token) string {
	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return ""
	}
	email, _ := claims["email"].(string)
	return email
}
