package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/Valiice/SpotifyHonorific/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:    "honorific",
		Usage:   "Project the currently playing Spotify track as a character title",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug log output",
				Action: func(ctx context.Context, cmd *cli.Command, v bool) error {
					if v {
						shared.SetLogLevel(logger, log.DebugLevel)
					}
					return nil
				},
			},
		},
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
