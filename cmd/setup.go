package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/Valiice/SpotifyHonorific/internal/config"
	"github.com/Valiice/SpotifyHonorific/internal/shared"
	"github.com/Valiice/SpotifyHonorific/internal/ui"
)

// Setup seeds a new configuration file with the default profiles and,
// when given, the Spotify application credentials.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s already exists, remove it first or pick another path", shared.ErrInvalidInput, path)
	}

	cfg, err := r.openConfig(path)
	if err != nil {
		return err
	}

	clientID := cmd.String("client-id")
	clientSecret := cmd.String("client-secret")
	if clientID != "" || clientSecret != "" {
		err = cfg.Update(func(d *config.Data) {
			d.ClientID = clientID
			d.ClientSecret = clientSecret
		})
		if err != nil {
			return err
		}
	}

	if err := r.writeOK("Configuration written to %s.", path); err != nil {
		return err
	}
	if clientID == "" {
		if err := r.writePlain("%s\n", ui.Help("Add your Spotify client ID and secret, then run `honorific auth`.")); err != nil {
			return err
		}
	} else {
		if err := r.writePlain("%s\n", ui.Help("Run `honorific auth` to connect your Spotify account.")); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the configuration and reports every finding.
func (r *Runner) Validate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.openConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	var findings []string
	cfg.View(func(d *config.Data) {
		findings = config.Validate(d, r.engine)
	})

	if len(findings) == 0 {
		return r.writeOK("Configuration is valid.")
	}

	for _, f := range findings {
		if err := r.writePlain("%s\n", ui.Warn(f)); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %d finding(s)", shared.ErrInvalidConfig, len(findings))
}
