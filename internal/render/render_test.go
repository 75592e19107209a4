package render

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Valiice/SpotifyHonorific/internal/config"
	"github.com/Valiice/SpotifyHonorific/internal/services"
	"github.com/Valiice/SpotifyHonorific/internal/shared"
	"github.com/Valiice/SpotifyHonorific/internal/templates"
)

type countingNotifier struct {
	messages []string
}

func (n *countingNotifier) Notify(message string) {
	n.messages = append(n.messages, message)
}

func newRenderer(t *testing.T) (*Renderer, *countingNotifier) {
	t.Helper()
	notifier := &countingNotifier{}
	r := New(templates.NewCache(templates.NewEngine()), shared.NewLogger(&strings.Builder{}), notifier)
	return r, notifier
}

func testTrack() *services.Track {
	return &services.Track{
		ID:      "t1",
		Name:    "Song Name",
		Artists: []services.Artist{{ID: "a1", Name: "Artist Name"}},
	}
}

func TestRenderTitle(t *testing.T) {
	t.Run("RendersTrackFields", func(t *testing.T) {
		r, _ := newRenderer(t)
		cfg := &config.ActivityConfig{Name: "p", TitleTemplate: `♪{{truncate .Activity.Name 28}}♪`}

		title, err := r.RenderTitle(cfg, testTrack(), &Context{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if title != "♪Song Name♪" {
			t.Errorf("expected ♪Song Name♪, got %q", title)
		}
	})

	t.Run("ExactLimitPasses", func(t *testing.T) {
		r, _ := newRenderer(t)
		cfg := &config.ActivityConfig{Name: "p", TitleTemplate: strings.Repeat("x", MaxTitleLength)}

		title, err := r.RenderTitle(cfg, testTrack(), &Context{})
		if err != nil {
			t.Fatalf("expected a 32-rune title to pass, got %v", err)
		}
		if len(title) != MaxTitleLength {
			t.Errorf("expected %d runes, got %d", MaxTitleLength, len(title))
		}
	})

	t.Run("OverLimitWarnsOnce", func(t *testing.T) {
		r, notifier := newRenderer(t)
		cfg := &config.ActivityConfig{Name: "p", TitleTemplate: strings.Repeat("x", MaxTitleLength+1)}

		for i := 0; i < 3; i++ {
			if _, err := r.RenderTitle(cfg, testTrack(), &Context{}); !errors.Is(err, shared.ErrTitleTooLong) {
				t.Fatalf("expected ErrTitleTooLong, got %v", err)
			}
		}
		if len(notifier.messages) != 1 {
			t.Errorf("expected a single over-length warning, got %d", len(notifier.messages))
		}
	})

	t.Run("WarningResetsAfterFit", func(t *testing.T) {
		r, notifier := newRenderer(t)
		long := &config.ActivityConfig{Name: "p", TitleTemplate: strings.Repeat("x", 40)}
		short := &config.ActivityConfig{Name: "p", TitleTemplate: "ok"}

		r.RenderTitle(long, testTrack(), &Context{})
		r.RenderTitle(short, testTrack(), &Context{})
		r.RenderTitle(long, testTrack(), &Context{})

		if len(notifier.messages) != 2 {
			t.Errorf("expected the warning to rearm after a fitting render, got %d messages", len(notifier.messages))
		}
	})

	t.Run("RuneCountNotByteCount", func(t *testing.T) {
		r, _ := newRenderer(t)
		// 32 multi-byte runes exceed 32 bytes but fit the title limit.
		cfg := &config.ActivityConfig{Name: "p", TitleTemplate: strings.Repeat("♪", MaxTitleLength)}

		if _, err := r.RenderTitle(cfg, testTrack(), &Context{}); err != nil {
			t.Errorf("expected multi-byte title within the rune limit to pass, got %v", err)
		}
	})

	t.Run("ParseErrorNotifies", func(t *testing.T) {
		r, notifier := newRenderer(t)
		cfg := &config.ActivityConfig{Name: "p", TitleTemplate: "{{if}}"}

		if _, err := r.RenderTitle(cfg, testTrack(), &Context{}); err == nil {
			t.Fatal("expected parse error")
		}
		if len(notifier.messages) != 1 {
			t.Errorf("expected a notification, got %d", len(notifier.messages))
		}
	})

	t.Run("RenderErrorNotifies", func(t *testing.T) {
		r, notifier := newRenderer(t)
		cfg := &config.ActivityConfig{Name: "p", TitleTemplate: "{{.Activity.Nope}}"}

		if _, err := r.RenderTitle(cfg, testTrack(), &Context{}); err == nil {
			t.Fatal("expected render error")
		}
		if len(notifier.messages) != 1 {
			t.Errorf("expected a notification, got %d", len(notifier.messages))
		}
	})

	t.Run("ClockIsVisible", func(t *testing.T) {
		r, _ := newRenderer(t)
		cfg := &config.ActivityConfig{Name: "p", TitleTemplate: `{{phase .Context.SecsElapsed 60}}`}

		title, err := r.RenderTitle(cfg, testTrack(), &Context{SecsElapsed: 42.9})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if title != "42" {
			t.Errorf("expected 42, got %q", title)
		}
	})
}

func TestEvaluateFilter(t *testing.T) {
	r, _ := newRenderer(t)
	track := testTrack()
	ctx := &Context{}

	cases := []struct {
		name   string
		filter string
		want   bool
	}{
		{"Blank", "", true},
		{"Whitespace", "   ", true},
		{"True", "true", true},
		{"False", "false", false},
		{"FalseMixedCase", "FALSE", false},
		{"Zero", "0", false},
		{"EmptyOutput", `{{if false}}x{{end}}`, false},
		{"ArbitraryText", "yes please", true},
		{"TrackCondition", `{{if eq .Activity.Name "Song Name"}}true{{else}}false{{end}}`, true},
		{"ParseErrorPasses", "{{if}}", true},
		{"RenderErrorPasses", "{{.Activity.Nope}}", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := &config.ActivityConfig{Name: "p", FilterTemplate: c.filter}
			if got := r.EvaluateFilter(cfg, track, ctx); got != c.want {
				t.Errorf("filter %q: expected %v, got %v", c.filter, c.want, got)
			}
		})
	}
}

func TestSerialize(t *testing.T) {
	t.Run("FixedFieldOrder", func(t *testing.T) {
		r, _ := newRenderer(t)
		cfg := &config.ActivityConfig{
			Name:  "p",
			Color: &[3]float64{1, 0, 0.5},
		}

		out, err := r.Serialize("Hi", cfg, &Context{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"Title":"Hi","IsPrefix":false,"Color":[1,0,0.5],"Glow":null}`
		if out != want {
			t.Errorf("expected %s, got %s", want, out)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		r, _ := newRenderer(t)
		cfg := &config.ActivityConfig{
			Name:     "p",
			IsPrefix: true,
			Color:    &[3]float64{0.1, 0.2, 0.3},
			Glow:     &[3]float64{1, 1, 1},
		}

		first, err := r.Serialize("T", cfg, &Context{SecsElapsed: 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := r.Serialize("T", cfg, &Context{SecsElapsed: 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first != second {
			t.Errorf("expected identical payloads, got %s vs %s", first, second)
		}
	})

	t.Run("RainbowOverridesColor", func(t *testing.T) {
		r, _ := newRenderer(t)
		cfg := &config.ActivityConfig{
			Name:        "p",
			RainbowMode: true,
			Color:       &[3]float64{0.123, 0.456, 0.789},
		}

		// At zero elapsed the hue is 0: pure red.
		out, err := r.Serialize("T", cfg, &Context{SecsElapsed: 0})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, `"Color":[1,0,0]`) {
			t.Errorf("expected rainbow red at t=0, got %s", out)
		}
	})

	t.Run("RainbowAdvancesWithClock", func(t *testing.T) {
		r, _ := newRenderer(t)
		cfg := &config.ActivityConfig{Name: "p", RainbowMode: true}

		a, _ := r.Serialize("T", cfg, &Context{SecsElapsed: 0.0})
		b, _ := r.Serialize("T", cfg, &Context{SecsElapsed: 0.5})
		if a == b {
			t.Error("expected the rainbow color to change over time")
		}

		// The hue cycles once every 2 seconds at speed 0.5.
		c, _ := r.Serialize("T", cfg, &Context{SecsElapsed: 2.0})
		if a != c {
			t.Errorf("expected the hue to wrap after a full cycle: %s vs %s", a, c)
		}
	})
}

func TestHsvToRgb(t *testing.T) {
	approx := func(a, b [3]float64) bool {
		for i := range a {
			if math.Abs(a[i]-b[i]) > 1e-9 {
				return false
			}
		}
		return true
	}

	cases := []struct {
		name    string
		h, s, v float64
		want    [3]float64
	}{
		{"Red", 0, 1, 1, [3]float64{1, 0, 0}},
		{"Yellow", 1.0 / 6, 1, 1, [3]float64{1, 1, 0}},
		{"Green", 1.0 / 3, 1, 1, [3]float64{0, 1, 0}},
		{"Cyan", 0.5, 1, 1, [3]float64{0, 1, 1}},
		{"Blue", 2.0 / 3, 1, 1, [3]float64{0, 0, 1}},
		{"Magenta", 5.0 / 6, 1, 1, [3]float64{1, 0, 1}},
		{"White", 0, 0, 1, [3]float64{1, 1, 1}},
		{"Black", 0, 1, 0, [3]float64{0, 0, 0}},
		{"Gray", 0.25, 0, 0.5, [3]float64{0.5, 0.5, 0.5}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := HsvToRgb(c.h, c.s, c.v)
			if !approx(got, c.want) {
				t.Errorf("HsvToRgb(%v, %v, %v): expected %v, got %v", c.h, c.s, c.v, got, c.want)
			}
		})
	}

	t.Run("ChannelsInRange", func(t *testing.T) {
		for h := 0.0; h < 1.0; h += 0.01 {
			rgb := HsvToRgb(h, 1, 1)
			for i, ch := range rgb {
				if ch < 0 || ch > 1 {
					t.Fatalf("h=%v channel %d out of range: %v", h, i, ch)
				}
			}
		}
	})
}
