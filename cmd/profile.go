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

// ProfileList prints every profile, marking the active one.
func (r *Runner) ProfileList(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.openConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	var active string
	var profiles []config.ActivityConfig
	cfg.View(func(d *config.Data) {
		active = d.ActiveConfigName
		for _, p := range d.ActivityConfigs {
			profiles = append(profiles, p.Clone())
		}
	})

	if err := r.writeTitle("Profiles"); err != nil {
		return err
	}
	for _, p := range profiles {
		marker := " "
		if p.Name == active {
			marker = "*"
		}
		if err := r.writePlain("%s %s\n", marker, p.Name); err != nil {
			return err
		}
	}
	return nil
}

// ProfileShow prints one profile in full.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("%w: profile name is required", shared.ErrInvalidInput)
	}

	cfg, err := r.openConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	profile, ok := findProfile(cfg, name)
	if !ok {
		return fmt.Errorf("%w: no profile named %q", shared.ErrInvalidInput, name)
	}

	if err := r.writeTitle(profile.Name); err != nil {
		return err
	}
	if err := r.writePlain("Title template:  %s\n", profile.TitleTemplate); err != nil {
		return err
	}
	if err := r.writePlain("Filter template: %s\n", profile.FilterTemplate); err != nil {
		return err
	}
	if err := r.writePlain("Prefix mode:     %v\n", profile.IsPrefix); err != nil {
		return err
	}
	if err := r.writePlain("Rainbow mode:    %v\n", profile.RainbowMode); err != nil {
		return err
	}
	if profile.Color != nil {
		if err := r.writePlain("Color:           %.2f %.2f %.2f\n", profile.Color[0], profile.Color[1], profile.Color[2]); err != nil {
			return err
		}
	}
	if profile.Glow != nil {
		if err := r.writePlain("Glow:            %.2f %.2f %.2f\n", profile.Glow[0], profile.Glow[1], profile.Glow[2]); err != nil {
			return err
		}
	}
	return nil
}

// ProfileCreate adds a new empty profile.
func (r *Runner) ProfileCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("%w: profile name is required", shared.ErrInvalidInput)
	}

	cfg, err := r.openConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	profile := config.ActivityConfig{
		Name:          name,
		TitleTemplate: cmd.String("template"),
	}
	if err := upsertProfile(cfg, profile, false); err != nil {
		return err
	}
	return r.writeOK("Created profile %q.", name)
}

// ProfileDuplicate copies an existing profile under a new name.
func (r *Runner) ProfileDuplicate(ctx context.Context, cmd *cli.Command) error {
	src := cmd.Args().Get(0)
	dst := cmd.Args().Get(1)
	if src == "" || dst == "" {
		return fmt.Errorf("%w: source and copy names are required", shared.ErrInvalidInput)
	}

	cfg, err := r.openConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	profile, ok := findProfile(cfg, src)
	if !ok {
		return fmt.Errorf("%w: no profile named %q", shared.ErrInvalidInput, src)
	}
	profile.Name = dst
	if err := upsertProfile(cfg, profile, false); err != nil {
		return err
	}
	return r.writeOK("Duplicated %q as %q.", src, dst)
}

// ProfileDelete removes a profile. The active profile cannot be deleted.
func (r *Runner) ProfileDelete(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("%w: profile name is required", shared.ErrInvalidInput)
	}

	cfg, err := r.openConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	var deleteErr error
	err = cfg.Update(func(d *config.Data) {
		if d.ActiveConfigName == name {
			deleteErr = fmt.Errorf("%w: %q is the active profile", shared.ErrInvalidInput, name)
			return
		}
		for i := range d.ActivityConfigs {
			if d.ActivityConfigs[i].Name == name {
				d.ActivityConfigs = append(d.ActivityConfigs[:i], d.ActivityConfigs[i+1:]...)
				return
			}
		}
		deleteErr = fmt.Errorf("%w: no profile named %q", shared.ErrInvalidInput, name)
	})
	if err != nil {
		return err
	}
	if deleteErr != nil {
		return deleteErr
	}
	return r.writeOK("Deleted profile %q.", name)
}

// ProfileActivate selects which profile the updater renders with.
func (r *Runner) ProfileActivate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("%w: profile name is required", shared.ErrInvalidInput)
	}

	cfg, err := r.openConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	var activateErr error
	err = cfg.Update(func(d *config.Data) {
		for i := range d.ActivityConfigs {
			if d.ActivityConfigs[i].Name == name {
				d.ActiveConfigName = name
				return
			}
		}
		activateErr = fmt.Errorf("%w: no profile named %q", shared.ErrInvalidInput, name)
	})
	if err != nil {
		return err
	}
	if activateErr != nil {
		return activateErr
	}
	return r.writeOK("Activated profile %q.", name)
}

// ProfileExport prints a profile as shareable JSON.
func (r *Runner) ProfileExport(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("%w: profile name is required", shared.ErrInvalidInput)
	}

	cfg, err := r.openConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	profile, ok := findProfile(cfg, name)
	if !ok {
		return fmt.Errorf("%w: no profile named %q", shared.ErrInvalidInput, name)
	}

	out, err := profile.ExportJSON()
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", out)
}

// ProfileImport reads a JSON profile from a file and stores it,
// overwriting any existing profile with the same name.
func (r *Runner) ProfileImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("%w: profile JSON file is required", shared.ErrInvalidInput)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profile file: %w", err)
	}

	profile, err := config.ImportJSON(string(raw))
	if err != nil {
		return err
	}
	if profile.Name == "" {
		return fmt.Errorf("%w: imported profile has no name", shared.ErrInvalidInput)
	}

	cfg, err := r.openConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if err := upsertProfile(cfg, profile, true); err != nil {
		return err
	}
	return r.writeOK("Imported profile %q.", profile.Name)
}

// ProfileReset restores the default profiles, overwriting same-named ones.
func (r *Runner) ProfileReset(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.openConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	err = cfg.Update(func(d *config.Data) {
		d.ResetDefaults()
	})
	if err != nil {
		return err
	}
	if err := r.writeOK("Default profiles restored."); err != nil {
		return err
	}
	return r.writePlain("%s\n", ui.Help("Existing profiles with other names were left untouched."))
}

func findProfile(cfg *config.Config, name string) (config.ActivityConfig, bool) {
	var profile config.ActivityConfig
	var ok bool
	cfg.View(func(d *config.Data) {
		for i := range d.ActivityConfigs {
			if d.ActivityConfigs[i].Name == name {
				profile = d.ActivityConfigs[i].Clone()
				ok = true
				return
			}
		}
	})
	return profile, ok
}

// upsertProfile stores profile, replacing a same-named one when overwrite
// is set and failing otherwise.
func upsertProfile(cfg *config.Config, profile config.ActivityConfig, overwrite bool) error {
	var conflictErr error
	err := cfg.Update(func(d *config.Data) {
		for i := range d.ActivityConfigs {
			if d.ActivityConfigs[i].Name == profile.Name {
				if !overwrite {
					conflictErr = fmt.Errorf("%w: profile %q already exists", shared.ErrInvalidInput, profile.Name)
					return
				}
				d.ActivityConfigs[i] = profile
				return
			}
		}
		d.ActivityConfigs = append(d.ActivityConfigs, profile)
	})
	if err != nil {
		return err
	}
	return conflictErr
}
