package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Valiice/SpotifyHonorific/internal/history"
	"github.com/Valiice/SpotifyHonorific/internal/idle"
	"github.com/Valiice/SpotifyHonorific/internal/render"
	"github.com/Valiice/SpotifyHonorific/internal/services"
	"github.com/Valiice/SpotifyHonorific/internal/shared"
	"github.com/Valiice/SpotifyHonorific/internal/sink"
	"github.com/Valiice/SpotifyHonorific/internal/templates"
	"github.com/Valiice/SpotifyHonorific/internal/updater"
)

// tickInterval drives the update loop. The loop measures real elapsed time
// between wakes, so the title animation stays wall-clock accurate even when
// a tick is delayed.
const tickInterval = 100 * time.Millisecond

// Run starts the updater and ticks it until the process is interrupted.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.openConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	notifier := &shared.WriterNotifier{W: r.output}
	tokens := services.NewTokenManager(cfg, r.logger)
	poller := services.NewPoller(cfg, tokens, r.logger, notifier)
	renderer := render.New(templates.NewCache(r.engine), r.logger, notifier)
	titleSink := sink.NewHonorificClient(cmd.String("sink-url"), r.httpClient)

	var store *history.Store
	if path := cmd.String("history"); path != "" {
		store, err = history.Open(path)
		if err != nil {
			r.logger.Warnf("play history disabled: %v", err)
		} else {
			defer store.Close()
		}
	}

	up := updater.New(cfg, poller, renderer, titleSink, idle.NewSystemProvider(), store, r.logger, notifier)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r.logger.Info("updater started", "tick", tickInterval)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			up.ClearTitle()
			if err := r.writePlain("%s\n", up.PerformanceReport()); err != nil {
				return err
			}
			r.logger.Info("updater stopped")
			return nil
		case now := <-ticker.C:
			up.Tick(now.Sub(last))
			last = now
		}
	}
}
