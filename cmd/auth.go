package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/Valiice/SpotifyHonorific/internal/config"
	"github.com/Valiice/SpotifyHonorific/internal/server"
	"github.com/Valiice/SpotifyHonorific/internal/services"
	"github.com/Valiice/SpotifyHonorific/internal/shared"
	"github.com/Valiice/SpotifyHonorific/internal/ui"
)

const authTimeout = 1 * time.Minute

// Auth runs the OAuth2 PKCE flow and persists the refresh token.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.openConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	var clientID, clientSecret string
	cfg.View(func(d *config.Data) {
		clientID = d.ClientID
		clientSecret = d.ClientSecret
	})
	if clientID == "" {
		return fmt.Errorf("%w: client ID is not set, run `honorific setup` first", shared.ErrMissingConfig)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     services.Endpoint,
		RedirectURL:  server.RedirectURI(),
		Scopes:       services.Scopes,
	}

	state := shared.GenerateID()
	verifier := oauth2.GenerateVerifier()
	authURL := oauthCfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	handler := server.NewOAuthHandler(oauthCfg, state, verifier)

	serveCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %s", server.CallbackAddr)
		if err := server.Serve(serveCtx, handler); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	if cmd.Bool("no-browser") {
		if err := r.writePlain("Open this URL in your browser:\n%s\n\n", authURL); err != nil {
			return err
		}
	} else {
		if err := r.writePlain("→ Opening browser for Spotify authorization...\n"); err != nil {
			return err
		}
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically: %v", err)
			if err := r.writePlain("⚠ Could not open browser automatically.\nPlease open this URL in your browser:\n%s\n\n", authURL); err != nil {
				return err
			}
		}
	}

	if err := r.writePlain("→ Waiting for authorization (%s timeout)...\n", authTimeout); err != nil {
		return err
	}

	timeout := time.NewTimer(authTimeout)
	defer timeout.Stop()

	var result server.OAuthResult
	select {
	case result = <-handler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return fmt.Errorf("callback server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, authTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	if result.Error() != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}
	if result.Token == nil || result.Token.RefreshToken == "" {
		return fmt.Errorf("%w: no refresh token received", shared.ErrAuthFailed)
	}

	err = cfg.Update(func(d *config.Data) {
		d.RefreshToken = result.Token.RefreshToken
		d.LastAuthTime = time.Now()
	})
	if err != nil {
		return err
	}

	return r.writeOK("Authorized with Spotify. Refresh token saved.")
}

// AuthStatus reports whether a refresh token is stored and how stale it is.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.openConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	var hasToken bool
	var lastAuth time.Time
	cfg.View(func(d *config.Data) {
		hasToken = d.RefreshToken != ""
		lastAuth = d.LastAuthTime
	})

	if !hasToken {
		return r.writePlain("%s\n", ui.Warn("Not authorized. Run `honorific auth` to connect Spotify."))
	}

	if err := r.writeOK("Authorized."); err != nil {
		return err
	}
	if !lastAuth.IsZero() {
		age := time.Since(lastAuth).Round(time.Second)
		fresh := age < services.TokenRefreshWindow
		if err := r.writePlain("Last token refresh: %s ago (fresh: %v)\n", age, fresh); err != nil {
			return err
		}
	}
	return nil
}
