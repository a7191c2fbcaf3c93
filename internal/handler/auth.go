package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jun/drivectl/internal/auth"
	"github.com/jun/drivectl/internal/logging"
)

// AuthHandler handles the login, logout and status commands.
type AuthHandler struct {
	authService *auth.AuthService
	logger      *logging.Logger
	out         io.Writer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.AuthService, logger *logging.Logger, out io.Writer) *AuthHandler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &AuthHandler{authService: authService, logger: logger, out: out}
}

// Login runs the browser consent flow for account.
func (h *AuthHandler) Login(ctx context.Context, account string) error {
	cred, err := h.authService.Login(ctx, account, h.showURL)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	who := cred.Email
	if who == "" {
		who = "unknown user"
	}
	h.logger.Info().Str("account", account).Str("email", cred.Email).Time("expiry", cred.Expiry).Msg("credential stored")
	fmt.Fprintf(h.out, "Logged in as %s (account %q)\n", who, account)
	return nil
}

func (h *AuthHandler) showURL(authURL string) error {
	_, err := fmt.Fprintf(h.out, "Open this URL in your browser to authorize drivectl:\n\n  %s\n\n", authURL)
	return err
}

// Logout forgets the stored credential of account.
func (h *AuthHandler) Logout(ctx context.Context, account string) error {
	if err := h.authService.Logout(ctx, account); err != nil {
		return err
	}
	fmt.Fprintf(h.out, "Logged out of account %q\n", account)
	return nil
}

// Status prints what is stored for account.
func (h *AuthHandler) Status(ctx context.Context, account string) error {
	cred, err := h.authService.GetCredential(ctx, account)
	if errors.Is(err, auth.ErrNotLoggedIn) {
		fmt.Fprintf(h.out, "Account %q is not logged in\n", account)
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(h.out, "Account: %s\n", cred.Account)
	if cred.Email != "" {
		fmt.Fprintf(h.out, "Email: %s\n", cred.Email)
	}
	if !cred.Expiry.IsZero() {
		state := "valid"
		if time.Now().After(cred.Expiry) {
			state = "expired, refreshed on next use"
		}
		fmt.Fprintf(h.out, "Access token: %s (%s)\n", state, cred.Expiry.Local().Format(time.RFC3339))
	}
	fmt.Fprintf(h.out, "Updated: %s\n", cred.UpdatedAt.Local().Format(time.RFC3339))
	return nil
}
