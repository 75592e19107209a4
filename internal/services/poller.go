package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/Valiice/SpotifyHonorific/internal/config"
	"github.com/Valiice/SpotifyHonorific/internal/shared"
)

const (
	// APITimeout bounds a whole poll operation, retries and backoff included.
	APITimeout = 5 * time.Second

	// pollFloor is the hard minimum between polls enforced inside the
	// poller, independent of the update loop's own 2 second cadence.
	pollFloor = time.Second

	maxResponseTimeSamples = 100
)

// Poller fetches the currently playing track through the [TokenManager],
// with timeout, bounded retry, and error classification. At most one poll
// is ever in flight; a second caller is turned away with ErrPollInFlight
// instead of queueing.
type Poller struct {
	cfg      *config.Config
	tokens   *TokenManager
	logger   *log.Logger
	notifier shared.Notifier
	retrier  Retrier
	limiter  *rate.Limiter

	inFlight atomic.Bool

	mu             sync.Mutex
	callCount      int
	errorCount     int
	responseTimes  []time.Duration
	warnedAuthLost bool
}

func NewPoller(cfg *config.Config, tokens *TokenManager, logger *log.Logger, notifier shared.Notifier) *Poller {
	if notifier == nil {
		notifier = shared.NopNotifier{}
	}
	return &Poller{
		cfg:      cfg,
		tokens:   tokens,
		logger:   logger,
		notifier: notifier,
		retrier:  Retrier{Attempts: MaxRetryAttempts, Logger: logger},
		limiter:  rate.NewLimiter(rate.Every(pollFloor), 1),
	}
}

// SetRetrier replaces the retry policy, used by tests to shrink delays.
func (p *Poller) SetRetrier(r Retrier) {
	p.retrier = r
}

// InFlight reports whether a poll is currently outstanding.
func (p *Poller) InFlight() bool {
	return p.inFlight.Load()
}

// Poll fetches the currently playing full track, or nil when nothing
// playable is on (paused, an ad, a podcast episode). Errors are already
// logged and classified; the caller only decides what "no track" means.
func (p *Poller) Poll(ctx context.Context) (*Track, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return nil, shared.ErrPollInFlight
	}
	defer p.inFlight.Store(false)

	if !p.limiter.Allow() {
		return nil, shared.ErrPollThrottled
	}

	debug := p.debugEnabled()
	p.retrier.Debug = debug

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	start := time.Now()

	client, err := Retry(ctx, p.retrier, p.tokens.Client)
	if err != nil {
		p.recordError()
		p.handleError(err, "could not obtain a spotify client", debug)
		if errors.Is(err, shared.ErrAuthFailed) {
			p.warnAuthLost()
		}
		return nil, err
	}

	playing, err := Retry(ctx, p.retrier, client.CurrentlyPlaying)
	if err != nil {
		p.recordError()
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			err = shared.ErrTimeout
			p.handleError(err, "spotify API request timed out", debug)
		case IsUnauthorized(err):
			p.handleError(err, "error polling spotify, token may be expired", debug)
		default:
			p.handleError(err, "error polling spotify", debug)
		}
		return nil, err
	}

	p.recordCall(time.Since(start))
	return playing.PlayingTrack(), nil
}

// warnAuthLost tells the user to re-authenticate. Unlike ordinary poll
// failures this is shown regardless of the debug flag, but only once until
// a poll succeeds again.
func (p *Poller) warnAuthLost() {
	p.mu.Lock()
	warned := p.warnedAuthLost
	p.warnedAuthLost = true
	p.mu.Unlock()
	if !warned {
		p.notifier.Notify("SpotifyHonorific: Spotify authentication expired. Run the auth command to reconnect.")
	}
}

// handleError logs the failure, surfaces it to the user when debug logging
// is on, and drops the cached client so the next poll re-resolves it. The
// persisted refresh token is only ever cleared by the token manager's own
// refresh attempt.
func (p *Poller) handleError(err error, message string, debug bool) {
	p.logger.Warn(message, "err", err)
	if debug {
		p.notifier.Notify("SpotifyHonorific: " + message)
	}
	p.tokens.Reset()
}

func (p *Poller) debugEnabled() bool {
	var debug bool
	p.cfg.View(func(d *config.Data) { debug = d.EnableDebugLogging })
	return debug
}

func (p *Poller) recordCall(elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callCount++
	p.warnedAuthLost = false
	p.responseTimes = append(p.responseTimes, elapsed)
	if len(p.responseTimes) > maxResponseTimeSamples {
		p.responseTimes = p.responseTimes[1:]
	}
}

func (p *Poller) recordError() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errorCount++
}

// CallCount returns the cumulative number of completed API calls.
func (p *Poller) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.callCount
}

// ErrorCount returns the cumulative number of failed polls.
func (p *Poller) ErrorCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errorCount
}

// AverageResponseTime averages the rolling window of the last 100 samples.
func (p *Poller) AverageResponseTime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.responseTimes) == 0 {
		return 0
	}
	var total time.Duration
	for _, rt := range p.responseTimes {
		total += rt
	}
	return total / time.Duration(len(p.responseTimes))
}
