package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jun/drivectl/internal/model"
)

const callbackPath = "/callback"

// OpenFunc presents the consent URL to the operator.
type OpenFunc func(authURL string) error

type callbackResult struct {
	code string
	err  error
}

// Login runs the installed-app flow: it listens on an ephemeral loopback
// port, hands the consent URL to open, waits for the redirect, exchanges the
// code and stores the credential under account.
func (s *AuthService) Login(ctx context.Context, account string, open OpenFunc) (*model.StoredCredential, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}

	redirectURL := fmt.Sprintf("http://%s%s", ln.Addr().String(), callbackPath)
	state := uuid.NewString()

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Debug().Err(err).Msg("callback server stopped")
		}
	}()
	defer srv.Close()

	if err := open(s.GenerateAuthURL(state, redirectURL)); err != nil {
		return nil, fmt.Errorf("failed to open consent page: %w", err)
	}
	s.logger.Debug().Str("redirect_url", redirectURL).Msg("waiting for authorization")

	var res callbackResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return nil, res.err
	}

	token, err := s.ExchangeCode(ctx, res.code, redirectURL)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return s.SaveToken(ctx, account, token)
}

func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
			http.Error(w, "Authorization failed. You can close this window.", http.StatusForbidden)
		case q.Get("code") == "":
			res.err = errors.New("authorization response has no code")
			http.Error(w, "Missing code.", http.StatusBadRequest)
		default:
			res.code = q.Get("code")
			fmt.Fprintln(w, "Authentication complete. You can close this window.")
		}

		select {
		case results <- res:
		default:
		}
	})
	return mux
}
