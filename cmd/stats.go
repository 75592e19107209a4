package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Valiice/SpotifyHonorific/internal/history"
)

// Stats reports play counts and the most recent plays from the history
// database.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	store, err := history.Open(cmd.String("history"))
	if err != nil {
		return err
	}
	defer store.Close()

	midnight := time.Now().Truncate(24 * time.Hour)
	uniqueToday, err := store.UniqueTracksSince(midnight)
	if err != nil {
		return err
	}
	uniqueWeek, err := store.UniqueTracksSince(midnight.AddDate(0, 0, -7))
	if err != nil {
		return err
	}

	if err := r.writeTitle("Play History"); err != nil {
		return err
	}
	if err := r.writePlain("Unique tracks today:       %d\n", uniqueToday); err != nil {
		return err
	}
	if err := r.writePlain("Unique tracks last 7 days: %d\n\n", uniqueWeek); err != nil {
		return err
	}

	plays, err := store.RecentPlays(cmd.Int("limit"))
	if err != nil {
		return err
	}
	if len(plays) == 0 {
		return r.writePlain("No plays recorded yet.\n")
	}

	if err := r.writePlain("Recent plays:\n"); err != nil {
		return err
	}
	for _, p := range plays {
		if err := r.writePlain("  %s  %s - %s\n", p.PlayedAt.Local().Format("Jan 02 15:04"), p.Artist, p.Title); err != nil {
			return err
		}
	}
	return nil
}
