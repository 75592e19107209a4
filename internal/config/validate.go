package config

import (
	"fmt"
	"strings"

	"github.com/Valiice/SpotifyHonorific/internal/templates"
)

// Validate checks the configuration for problems the user must fix and
// returns one human-readable finding per problem. Template sources are
// parse-checked through eng so syntax errors surface at edit time rather
// than on the next render tick.
func Validate(d *Data, eng templates.Engine) []string {
	var findings []string

	if d.Enabled && strings.TrimSpace(d.RefreshToken) == "" {
		findings = append(findings, "Spotify authentication required when enabled. Run the auth command.")
	}
	if d.Enabled && strings.TrimSpace(d.ClientID) == "" {
		findings = append(findings, "Spotify client ID is required. Set up your Spotify app credentials.")
	}
	if d.Enabled && strings.TrimSpace(d.ClientSecret) == "" {
		findings = append(findings, "Spotify client secret is required. Set up your Spotify app credentials.")
	}

	if d.Enabled && strings.TrimSpace(d.ActiveConfigName) != "" {
		if _, found := lookup(d.ActivityConfigs, d.ActiveConfigName); !found && len(d.ActivityConfigs) > 0 {
			findings = append(findings, fmt.Sprintf("Active profile %q not found. Select a valid profile.", d.ActiveConfigName))
		}
	}

	for i := range d.ActivityConfigs {
		findings = append(findings, validateActivity(&d.ActivityConfigs[i], eng)...)
	}

	return findings
}

func validateActivity(a *ActivityConfig, eng templates.Engine) []string {
	var findings []string

	prefix := fmt.Sprintf("%q", a.Name)
	if strings.TrimSpace(a.Name) == "" {
		prefix = "unnamed profile"
	}

	if strings.TrimSpace(a.TitleTemplate) == "" {
		findings = append(findings, fmt.Sprintf("%s: title template is empty", prefix))
	} else {
		if _, err := eng.Compile(a.TitleTemplate); err != nil {
			findings = append(findings, fmt.Sprintf("%s: invalid title template: %v", prefix, err))
		}

		hasTruncate := strings.Contains(strings.ToLower(a.TitleTemplate), "truncate")
		if !hasTruncate && len(a.TitleTemplate) > 100 {
			findings = append(findings, fmt.Sprintf(
				"%s: title template is very long (%d chars) and doesn't use the truncate helper; rendered output may exceed the 32 character limit",
				prefix, len(a.TitleTemplate)))
		}
	}

	if strings.TrimSpace(a.FilterTemplate) != "" {
		if _, err := eng.Compile(a.FilterTemplate); err != nil {
			findings = append(findings, fmt.Sprintf("%s: invalid filter template: %v", prefix, err))
		}
	}

	if a.Color != nil && !validRGB(*a.Color) {
		findings = append(findings, fmt.Sprintf("%s: color channels must be between 0 and 1 (normalized RGB)", prefix))
	}
	if a.Glow != nil && !validRGB(*a.Glow) {
		findings = append(findings, fmt.Sprintf("%s: glow channels must be between 0 and 1 (normalized RGB)", prefix))
	}

	return findings
}

func validRGB(c [3]float64) bool {
	for _, ch := range c {
		if ch < 0 || ch > 1 {
			return false
		}
	}
	return true
}

func lookup(configs []ActivityConfig, name string) (int, bool) {
	for i := range configs {
		if configs[i].Name == name {
			return i, true
		}
	}
	return 0, false
}
