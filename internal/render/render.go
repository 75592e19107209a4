// package render turns a rendering profile and the current track into the
// bounded title payload the sink accepts.
package render

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/Valiice/SpotifyHonorific/internal/config"
	"github.com/Valiice/SpotifyHonorific/internal/services"
	"github.com/Valiice/SpotifyHonorific/internal/shared"
	"github.com/Valiice/SpotifyHonorific/internal/templates"
)

const (
	// MaxTitleLength matches the sink's own title limit.
	MaxTitleLength = 32

	// RainbowHueSpeed is the hue cycle rate in cycles per render-second:
	// a full loop around the color wheel every 1/RainbowHueSpeed seconds.
	RainbowHueSpeed = 0.5
)

// Context is the per-render-session clock exposed to templates.
// SecsElapsed counts seconds since the displayed track changed and resets
// to zero with it.
type Context struct {
	SecsElapsed float64
}

// Payload is the serialized title record pushed over IPC. Field order is
// fixed so the update loop's string-equality debounce never false-triggers
// on formatting.
type Payload struct {
	Title    string      `json:"Title"`
	IsPrefix bool        `json:"IsPrefix"`
	Color    *[3]float64 `json:"Color"`
	Glow     *[3]float64 `json:"Glow"`
}

// Renderer renders title templates and prepares IPC payloads. It is used
// from the single update-loop flow and keeps per-flow state: the one-shot
// suppression flag for over-length warnings.
type Renderer struct {
	cache    *templates.Cache
	logger   *log.Logger
	notifier shared.Notifier

	warnedTooLong bool
}

func New(cache *templates.Cache, logger *log.Logger, notifier shared.Notifier) *Renderer {
	if notifier == nil {
		notifier = shared.NopNotifier{}
	}
	return &Renderer{cache: cache, logger: logger, notifier: notifier}
}

// Cache exposes the template cache for diagnostics.
func (r *Renderer) Cache() *templates.Cache {
	return r.cache
}

// RenderTitle renders the profile's title template against the track and
// clock. Failures are surfaced here (log always, notify per policy) and
// reported as an error; the caller treats any error as "no title change".
// An over-length title warns once and stays suppressed until a render
// fits again.
func (r *Renderer) RenderTitle(cfg *config.ActivityConfig, track *services.Track, ctx *Context) (string, error) {
	tmpl, err := r.cache.GetOrCompile(cfg.TitleTemplate)
	if err != nil {
		r.logger.Error("title template failed to parse", "profile", cfg.Name, "err", err)
		r.notifier.Notify(fmt.Sprintf("SpotifyHonorific: %v", err))
		return "", err
	}

	title, err := tmpl.Render(bindings(track, ctx))
	if err != nil {
		r.logger.Error("title template failed to render", "profile", cfg.Name, "err", err)
		r.notifier.Notify(fmt.Sprintf("SpotifyHonorific: %v", err))
		return "", err
	}

	if utf8.RuneCountInString(title) > MaxTitleLength {
		if !r.warnedTooLong {
			message := fmt.Sprintf(
				"Title %q is longer than %d characters, it won't be applied. Trim whitespace or truncate variables to reduce the length.",
				title, MaxTitleLength)
			r.logger.Error(message)
			r.notifier.Notify(message)
			r.warnedTooLong = true
		}
		return "", fmt.Errorf("%w: %q", shared.ErrTitleTooLong, title)
	}

	r.warnedTooLong = false
	return title, nil
}

// EvaluateFilter reports whether the profile applies to the track. A blank
// filter passes. The filter is advisory: parse or render failures log a
// warning and pass rather than silencing the title.
func (r *Renderer) EvaluateFilter(cfg *config.ActivityConfig, track *services.Track, ctx *Context) bool {
	if strings.TrimSpace(cfg.FilterTemplate) == "" {
		return true
	}

	tmpl, err := r.cache.GetOrCompile(cfg.FilterTemplate)
	if err != nil {
		r.logger.Warn("filter template failed to parse, treating as pass", "profile", cfg.Name, "err", err)
		return true
	}

	out, err := tmpl.Render(bindings(track, ctx))
	if err != nil {
		r.logger.Warn("filter template failed to render, treating as pass", "profile", cfg.Name, "err", err)
		return true
	}

	switch strings.ToLower(strings.TrimSpace(out)) {
	case "", "false", "0":
		return false
	default:
		return true
	}
}

// Serialize builds the compact IPC payload. With RainbowMode the color is
// computed fresh from the clock instead of read from the profile.
func (r *Renderer) Serialize(title string, cfg *config.ActivityConfig, ctx *Context) (string, error) {
	payload := Payload{
		Title:    title,
		IsPrefix: cfg.IsPrefix,
	}

	if cfg.RainbowMode {
		hue := math.Mod(ctx.SecsElapsed*RainbowHueSpeed, 1.0)
		color := HsvToRgb(hue, 1.0, 1.0)
		payload.Color = &color
	} else if cfg.Color != nil {
		color := *cfg.Color
		payload.Color = &color
	}

	if cfg.Glow != nil {
		glow := *cfg.Glow
		payload.Glow = &glow
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize title payload: %w", err)
	}
	return string(data), nil
}

func bindings(track *services.Track, ctx *Context) map[string]any {
	return map[string]any{
		"Activity": track,
		"Context":  ctx,
	}
}
