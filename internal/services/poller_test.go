package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/Valiice/SpotifyHonorific/internal/config"
	"github.com/Valiice/SpotifyHonorific/internal/shared"
)

// pollFixture wires a poller against fake token and API endpoints.
func pollFixture(t *testing.T, api http.HandlerFunc) (*Poller, *config.Config) {
	t.Helper()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(tokenSrv.Close)

	apiSrv := httptest.NewServer(api)
	t.Cleanup(apiSrv.Close)

	cfg := testConfig(t, configuredData())
	logger := shared.NewLogger(&strings.Builder{})
	tokens := NewTokenManager(cfg, logger,
		WithEndpoint(oauth2.Endpoint{TokenURL: tokenSrv.URL}),
		WithClientOpts(WithBaseURL(apiSrv.URL)))

	p := NewPoller(cfg, tokens, logger, nil)
	p.SetRetrier(Retrier{Attempts: MaxRetryAttempts, BaseDelay: time.Millisecond, Logger: logger})
	return p, cfg
}

func playingJSON(id, name string) string {
	return fmt.Sprintf(`{
		"is_playing": true,
		"currently_playing_type": "track",
		"item": {"id": %q, "name": %q, "artists": [{"id": "a", "name": "A"}]}
	}`, id, name)
}

func TestPoller(t *testing.T) {
	t.Run("ReturnsPlayingTrack", func(t *testing.T) {
		p, _ := pollFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, playingJSON("t1", "Song"))
		})

		track, err := p.Poll(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if track == nil || track.ID != "t1" {
			t.Fatalf("expected track t1, got %+v", track)
		}

		if p.CallCount() != 1 {
			t.Errorf("expected 1 recorded call, got %d", p.CallCount())
		}
		if p.ErrorCount() != 0 {
			t.Errorf("expected no errors, got %d", p.ErrorCount())
		}
		if p.AverageResponseTime() <= 0 {
			t.Error("expected a positive average response time")
		}
	})

	t.Run("NothingPlaying", func(t *testing.T) {
		p, _ := pollFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		track, err := p.Poll(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if track != nil {
			t.Errorf("expected no track, got %+v", track)
		}
	})

	t.Run("RecoversFromTransientError", func(t *testing.T) {
		calls := 0
		p, _ := pollFixture(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, playingJSON("t1", "Song"))
		})

		track, err := p.Poll(context.Background())
		if err != nil {
			t.Fatalf("expected retry to recover, got %v", err)
		}
		if track == nil || track.ID != "t1" {
			t.Fatalf("expected track after retry, got %+v", track)
		}
		if calls != 2 {
			t.Errorf("expected 2 API calls, got %d", calls)
		}
	})

	t.Run("UnauthorizedCountsAsError", func(t *testing.T) {
		calls := 0
		p, _ := pollFixture(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := p.Poll(context.Background())
		if !IsUnauthorized(err) {
			t.Fatalf("expected unauthorized error, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected no retries on 401, got %d calls", calls)
		}
		if p.ErrorCount() != 1 {
			t.Errorf("expected 1 recorded error, got %d", p.ErrorCount())
		}
		if p.CallCount() != 0 {
			t.Errorf("failed polls must not count as calls, got %d", p.CallCount())
		}
	})

	t.Run("NotConfigured", func(t *testing.T) {
		cfg := testConfig(t, config.DefaultData())
		logger := shared.NewLogger(&strings.Builder{})
		p := NewPoller(cfg, NewTokenManager(cfg, logger), logger, nil)

		_, err := p.Poll(context.Background())
		if !errors.Is(err, shared.ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured, got %v", err)
		}
	})

	t.Run("SecondPollIsThrottled", func(t *testing.T) {
		p, _ := pollFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		if _, err := p.Poll(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := p.Poll(context.Background())
		if !errors.Is(err, shared.ErrPollThrottled) {
			t.Errorf("expected ErrPollThrottled inside the floor interval, got %v", err)
		}
	})

	t.Run("InFlightGuard", func(t *testing.T) {
		p, _ := pollFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		p.inFlight.Store(true)
		_, err := p.Poll(context.Background())
		if !errors.Is(err, shared.ErrPollInFlight) {
			t.Errorf("expected ErrPollInFlight, got %v", err)
		}
		p.inFlight.Store(false)
		if p.InFlight() {
			t.Error("expected in-flight flag cleared")
		}
	})

	t.Run("DebugErrorsNotify", func(t *testing.T) {
		tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"at","token_type":"Bearer","expires_in":3600}`)
		}))
		defer tokenSrv.Close()
		apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer apiSrv.Close()

		data := configuredData()
		data.EnableDebugLogging = true
		cfg := testConfig(t, data)

		logger := shared.NewLogger(&strings.Builder{})
		var out strings.Builder
		tokens := NewTokenManager(cfg, logger,
			WithEndpoint(oauth2.Endpoint{TokenURL: tokenSrv.URL}),
			WithClientOpts(WithBaseURL(apiSrv.URL)))
		p := NewPoller(cfg, tokens, logger, &shared.WriterNotifier{W: &out})
		p.SetRetrier(Retrier{Attempts: 1, BaseDelay: time.Millisecond, Logger: logger})

		if _, err := p.Poll(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(out.String(), "SpotifyHonorific") {
			t.Errorf("expected a user notification in debug mode, got %q", out.String())
		}
	})
}

func TestPollerAuthLostWarning(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	}))
	defer tokenSrv.Close()

	logger := shared.NewLogger(&strings.Builder{})

	var notified strings.Builder
	cfg := testConfig(t, configuredData())
	tokens := NewTokenManager(cfg, logger, WithEndpoint(oauth2.Endpoint{TokenURL: tokenSrv.URL}))
	p := NewPoller(cfg, tokens, logger, &shared.WriterNotifier{W: &notified})
	p.SetRetrier(Retrier{Attempts: 1, BaseDelay: time.Millisecond, Logger: logger})
	p.limiter = rate.NewLimiter(rate.Inf, 1)

	if _, err := p.Poll(context.Background()); !errors.Is(err, shared.ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
	// Put the refresh token back after the manager clears it, so the second
	// poll takes the same failing path instead of short-circuiting.
	if err := cfg.Update(func(d *config.Data) { d.RefreshToken = "refresh-token" }); err != nil {
		t.Fatalf("failed to restore token: %v", err)
	}
	if _, err := p.Poll(context.Background()); !errors.Is(err, shared.ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}

	if got := strings.Count(notified.String(), "authentication expired"); got != 1 {
		t.Errorf("expected exactly one re-auth warning, got %d in %q", got, notified.String())
	}
}
