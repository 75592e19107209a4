package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Valiice/SpotifyHonorific/internal/shared"
)

// ActivityConfig is a named rendering profile. TitleTemplate is required;
// FilterTemplate optionally gates whether the profile applies to a track.
// Color and Glow are normalized RGB triples, each channel in [0,1]. When
// RainbowMode is set the pushed color is computed from an animated hue and
// Color is ignored.
type ActivityConfig struct {
	Name           string      `toml:"name" json:"Name"`
	FilterTemplate string      `toml:"filter_template" json:"FilterTemplate"`
	TitleTemplate  string      `toml:"title_template" json:"TitleTemplate"`
	IsPrefix       bool        `toml:"is_prefix" json:"IsPrefix"`
	RainbowMode    bool        `toml:"rainbow_mode" json:"RainbowMode"`
	Color          *[3]float64 `toml:"color,omitempty" json:"Color"`
	Glow           *[3]float64 `toml:"glow,omitempty" json:"Glow"`
}

// Clone returns a value copy. All fields are plain values except the color
// triples, which are copied so edits to the clone never alias the source.
func (a ActivityConfig) Clone() ActivityConfig {
	out := a
	if a.Color != nil {
		c := *a.Color
		out.Color = &c
	}
	if a.Glow != nil {
		g := *a.Glow
		out.Glow = &g
	}
	return out
}

// ExportJSON serializes the profile as indented JSON for sharing.
func (a ActivityConfig) ExportJSON() (string, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to export profile: %w", err)
	}
	return string(data), nil
}

// ImportJSON deserializes a profile previously produced by ExportJSON.
func ImportJSON(raw string) (ActivityConfig, error) {
	var a ActivityConfig
	if strings.TrimSpace(raw) == "" {
		return a, fmt.Errorf("%w: empty JSON", shared.ErrInvalidInput)
	}
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return a, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return a, nil
}

// DefaultActivityConfigs returns the seeded rendering profiles.
func DefaultActivityConfigs() []ActivityConfig {
	return []ActivityConfig{
		{
			Name:           "Spotify",
			FilterTemplate: `true`,
			TitleTemplate: `♪{{if lt (phase .Context.SecsElapsed 30) 10}}Listening to Spotify` +
				`{{else if lt (phase .Context.SecsElapsed 30) 20}}{{truncate .Activity.Name 30}}` +
				`{{else}}{{truncate (index .Activity.Artists 0).Name 30}}{{end}}♪`,
		},
		{
			Name:           "Spotify Simple",
			FilterTemplate: `true`,
			TitleTemplate:  `♪{{truncate .Activity.Name 28}}♪`,
		},
	}
}

// FindActive selects the profile rendering should use: by name when it
// resolves, falling back to the first profile when the name is blank or
// unknown. Returns false only when the list is empty. The result is a
// clone, safe to hold outside the config lock.
func FindActive(configs []ActivityConfig, name string) (ActivityConfig, bool) {
	if len(configs) == 0 {
		return ActivityConfig{}, false
	}
	if name != "" {
		for i := range configs {
			if configs[i].Name == name {
				return configs[i].Clone(), true
			}
		}
	}
	return configs[0].Clone(), true
}
