// package updater drives the whole companion: a tick-driven state machine
// tying AFK detection, polling cadence, per-frame title refresh, and the
// debounced push to the external sink together.
package updater

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Valiice/SpotifyHonorific/internal/config"
	"github.com/Valiice/SpotifyHonorific/internal/history"
	"github.com/Valiice/SpotifyHonorific/internal/idle"
	"github.com/Valiice/SpotifyHonorific/internal/render"
	"github.com/Valiice/SpotifyHonorific/internal/services"
	"github.com/Valiice/SpotifyHonorific/internal/shared"
	"github.com/Valiice/SpotifyHonorific/internal/sink"
)

const (
	// PollingInterval is the minimum time between polls of the Spotify API.
	PollingInterval = 2 * time.Second

	// AfkThreshold is how long without input counts as away-from-keyboard.
	AfkThreshold = 30 * time.Second

	// TitleSlot is the single sink slot this companion addresses.
	TitleSlot = 0

	sinkTimeout = 3 * time.Second
)

type pollResult struct {
	track *services.Track
	err   error
}

// Updater runs one Tick per host frame. All state below is owned by the
// ticking goroutine; the fire-and-forget poll goroutine touches nothing
// but the poller and the results channel.
type Updater struct {
	cfg      *config.Config
	poller   *services.Poller
	renderer *render.Renderer
	sink     sink.Sink
	idle     idle.Provider
	history  *history.Store
	logger   *log.Logger
	notifier shared.Notifier

	ctx            render.Context
	renderAction   func() error
	lastPayload    string
	currentTrackID string
	musicPlaying   bool
	afk            bool
	hasLoggedAfk   bool
	pollTimer      time.Duration

	results      chan pollResult
	sessionStart time.Time
}

// New wires the updater. history may be nil to disable play recording.
func New(
	cfg *config.Config,
	poller *services.Poller,
	renderer *render.Renderer,
	titleSink sink.Sink,
	idleProvider idle.Provider,
	historyStore *history.Store,
	logger *log.Logger,
	notifier shared.Notifier,
) *Updater {
	if notifier == nil {
		notifier = shared.NopNotifier{}
	}
	return &Updater{
		cfg:          cfg,
		poller:       poller,
		renderer:     renderer,
		sink:         titleSink,
		idle:         idleProvider,
		history:      historyStore,
		logger:       logger,
		notifier:     notifier,
		results:      make(chan pollResult, 1),
		sessionStart: time.Now(),
	}
}

// IsAfk reports the AFK state observed on the last tick.
func (u *Updater) IsAfk() bool {
	return u.afk
}

// Tick advances the state machine by one frame. Nothing in here blocks on
// the network and nothing escapes: every external call degrades to "no
// title change this tick" on failure.
func (u *Updater) Tick(delta time.Duration) {
	u.drainPollResults()

	if u.handleAfk() {
		return
	}

	u.advanceTitle(delta)
	u.handlePolling(delta)
}

// drainPollResults applies any poll completions since the previous tick.
func (u *Updater) drainPollResults() {
	for {
		select {
		case r := <-u.results:
			u.applyPollResult(r)
		default:
			return
		}
	}
}

func (u *Updater) applyPollResult(r pollResult) {
	if r.err != nil || r.track == nil {
		u.musicPlaying = false
		u.currentTrackID = ""
		u.clearTitle()
		return
	}

	u.musicPlaying = true
	if r.track.ID == u.currentTrackID {
		// Still playing the same track; leaving the render action alone
		// keeps the per-track clock and animation running uninterrupted.
		return
	}
	u.currentTrackID = r.track.ID

	if u.history != nil {
		if err := u.history.Record(r.track); err != nil {
			u.logger.Warn("failed to record play history", "err", err)
		}
	}

	var configs []config.ActivityConfig
	var activeName string
	u.cfg.View(func(d *config.Data) {
		configs = d.ActivityConfigs
		activeName = d.ActiveConfigName
	})

	active, ok := config.FindActive(configs, activeName)
	if !ok {
		u.clearTitle()
		return
	}

	u.ctx.SecsElapsed = 0

	if !u.renderer.EvaluateFilter(&active, r.track, &u.ctx) {
		u.logger.Debug("active profile filtered out the track", "profile", active.Name, "track", r.track.Name)
		u.clearTitle()
		return
	}

	track := r.track
	u.renderAction = func() error {
		var enabled bool
		u.cfg.View(func(d *config.Data) { enabled = d.Enabled })
		if !enabled {
			u.clearTitle()
			return nil
		}
		return u.renderAndPush(&active, track)
	}
}

// handleAfk reports whether the rest of the tick should be skipped.
// Music continuing to play is evidence of intentional listening, so AFK
// only suppresses the loop when nothing is playing.
func (u *Updater) handleAfk() bool {
	idleFor, err := u.idle.IdleTime()
	if err != nil {
		u.logger.Warn("could not get system idle time", "err", err)
		u.afk = false
	} else {
		u.afk = idleFor > AfkThreshold
	}

	if u.afk && !u.musicPlaying {
		if !u.hasLoggedAfk {
			u.logger.Debug("user is AFK and no music is playing, pausing polling")
			u.hasLoggedAfk = true
		}
		u.clearTitle()
		u.pollTimer = 0
		return true
	}

	u.hasLoggedAfk = false
	return false
}

func (u *Updater) advanceTitle(delta time.Duration) {
	if u.renderAction == nil {
		return
	}

	u.ctx.SecsElapsed += delta.Seconds()
	if err := u.renderAction(); err != nil {
		u.logger.Error("failed to update title", "err", err)
		u.notifier.Notify("SpotifyHonorific: failed to update title, check the log for details")
		u.renderAction = nil
	}
}

func (u *Updater) handlePolling(delta time.Duration) {
	var enabled, hasToken, debug bool
	u.cfg.View(func(d *config.Data) {
		enabled = d.Enabled
		hasToken = strings.TrimSpace(d.RefreshToken) != ""
		debug = d.EnableDebugLogging
	})

	if !enabled {
		if u.lastPayload != "" {
			u.clearTitle()
		}
		return
	}

	u.pollTimer += delta
	if u.pollTimer < PollingInterval || !hasToken || u.poller.InFlight() {
		return
	}

	if debug {
		u.logger.Debug("polling now", "timer", u.pollTimer, "playing", u.musicPlaying)
	}

	u.pollTimer = 0
	go func() {
		track, err := u.poller.Poll(context.Background())
		if err != nil && (errors.Is(err, shared.ErrPollInFlight) || errors.Is(err, shared.ErrPollThrottled)) {
			return
		}
		select {
		case u.results <- pollResult{track: track, err: err}:
		default:
		}
	}()
}

// renderAndPush renders the current title and pushes it only when the
// serialized payload differs from the last one pushed. Render failures are
// surfaced by the renderer and degrade to no change; only sink failures
// propagate, tearing down the render action.
func (u *Updater) renderAndPush(active *config.ActivityConfig, track *services.Track) error {
	title, err := u.renderer.RenderTitle(active, track, &u.ctx)
	if err != nil {
		return nil
	}

	payload, err := u.renderer.Serialize(title, active, &u.ctx)
	if err != nil {
		return fmt.Errorf("serialize title: %w", err)
	}

	if payload == u.lastPayload {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := u.sink.SetTitle(ctx, TitleSlot, payload); err != nil {
		return fmt.Errorf("set title: %w", err)
	}

	u.lastPayload = payload
	return nil
}

// clearTitle removes the displayed title. Idempotent: when nothing has
// been pushed there is nothing to clear and no IPC call is made.
func (u *Updater) clearTitle() {
	if u.lastPayload == "" {
		return
	}

	u.logger.Debug("clearing displayed title")
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := u.sink.ClearTitle(ctx, TitleSlot); err != nil {
		u.logger.Error("failed to clear title", "err", err)
	}

	u.ctx.SecsElapsed = 0
	u.renderAction = nil
	u.lastPayload = ""
	u.currentTrackID = ""
}

// ClearTitle releases the external title, for shutdown and the disable path.
func (u *Updater) ClearTitle() {
	u.clearTitle()
}

// PerformanceReport builds the on-demand diagnostics text.
func (u *Updater) PerformanceReport() string {
	var b strings.Builder

	cache := u.renderer.Cache()
	session := time.Since(u.sessionStart).Round(time.Second)

	fmt.Fprintf(&b, "=== SpotifyHonorific Performance Stats ===\n")
	fmt.Fprintf(&b, "Session Duration: %s\n\n", session)

	fmt.Fprintf(&b, "API Statistics:\n")
	fmt.Fprintf(&b, "  Total API calls: %d\n", u.poller.CallCount())
	fmt.Fprintf(&b, "  API errors: %d\n", u.poller.ErrorCount())
	fmt.Fprintf(&b, "  Average response time: %s\n\n", u.poller.AverageResponseTime().Round(time.Millisecond))

	fmt.Fprintf(&b, "Template Cache:\n")
	fmt.Fprintf(&b, "  Cache hits: %d\n", cache.Hits())
	fmt.Fprintf(&b, "  Cache misses: %d\n", cache.Misses())
	fmt.Fprintf(&b, "  Hit rate: %.1f%%\n", cache.HitRate())
	fmt.Fprintf(&b, "  Cached templates: %d\n\n", cache.Len())

	fmt.Fprintf(&b, "Music:\n")
	if u.history != nil {
		midnight := time.Now().Truncate(24 * time.Hour)
		if unique, err := u.history.UniqueTracksSince(midnight); err == nil {
			fmt.Fprintf(&b, "  Unique tracks today: %d\n", unique)
		}
	}
	fmt.Fprintf(&b, "  Currently playing: %s\n", yesNo(u.musicPlaying))
	fmt.Fprintf(&b, "  User AFK: %s", yesNo(u.afk))

	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
