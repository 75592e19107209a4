// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "honorific.toml",
	}
}

// runCommand starts the update loop
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the title updater until interrupted",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "sink-url",
				Usage: "Base URL of the title sink",
			},
			&cli.StringFlag{
				Name:  "history",
				Usage: "Path to the play history database (empty to disable)",
				Value: "honorific.db",
			},
		},
		Action: r.Run,
	}
}

// authCommand handles the OAuth2 PKCE authorization flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize with Spotify using OAuth2 PKCE",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the authorization URL instead of opening a browser",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show authorization status",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthStatus,
			},
		},
		Action: r.Auth,
	}
}

// setupCommand seeds a fresh configuration file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a configuration file with default profiles",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "client-id",
				Usage: "Spotify application client ID",
			},
			&cli.StringFlag{
				Name:  "client-secret",
				Usage: "Spotify application client secret",
			},
		},
		Action: r.Setup,
	}
}

// validateCommand checks the configuration for problems
func validateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "validate",
		Usage:  "Validate credentials, profiles and templates",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Validate,
	}
}

// statsCommand reports play history statistics
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show play history statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history",
				Usage: "Path to the play history database",
				Value: "honorific.db",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of recent plays to list",
				Value: 10,
			},
		},
		Action: r.Stats,
	}
}

// profileCommand manages rendering profiles
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "profile",
		Aliases: []string{"prof"},
		Usage:   "Manage rendering profiles",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List profiles",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ProfileList,
			},
			{
				Name:      "show",
				Usage:     "Show a profile",
				ArgsUsage: "<name>",
				Flags:     []cli.Flag{configFlag()},
				Action:    r.ProfileShow,
			},
			{
				Name:      "create",
				Usage:     "Create an empty profile",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "template",
						Usage: "Title template for the new profile",
					},
				},
				Action: r.ProfileCreate,
			},
			{
				Name:      "duplicate",
				Usage:     "Duplicate an existing profile",
				ArgsUsage: "<name> <copy-name>",
				Flags:     []cli.Flag{configFlag()},
				Action:    r.ProfileDuplicate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a profile",
				ArgsUsage: "<name>",
				Flags:     []cli.Flag{configFlag()},
				Action:    r.ProfileDelete,
			},
			{
				Name:      "activate",
				Usage:     "Select the active profile",
				ArgsUsage: "<name>",
				Flags:     []cli.Flag{configFlag()},
				Action:    r.ProfileActivate,
			},
			{
				Name:      "export",
				Usage:     "Export a profile as JSON",
				ArgsUsage: "<name>",
				Flags:     []cli.Flag{configFlag()},
				Action:    r.ProfileExport,
			},
			{
				Name:      "import",
				Usage:     "Import a profile from a JSON file",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{configFlag()},
				Action:    r.ProfileImport,
			},
			{
				Name:   "reset",
				Usage:  "Restore the default profiles",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ProfileReset,
			},
		},
	}
}
