package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/Valiice/SpotifyHonorific/internal/config"
	"github.com/Valiice/SpotifyHonorific/internal/shared"
	"github.com/Valiice/SpotifyHonorific/internal/templates"
	"github.com/Valiice/SpotifyHonorific/internal/ui"
)

// Runner holds all dependencies for CLI commands and provides methods for
// each command action.
type Runner struct {
	logger     *log.Logger
	output     io.Writer
	httpClient *http.Client
	engine     templates.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger     *log.Logger
	Output     io.Writer
	HTTPClient *http.Client
	Engine     templates.Engine
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Engine == nil {
		opts.Engine = templates.NewEngine()
	}

	return &Runner{
		logger:     opts.Logger,
		output:     opts.Output,
		httpClient: opts.HTTPClient,
		engine:     opts.Engine,
	}
}

// openConfig loads the configuration from path, seeding defaults when the
// file does not exist yet.
func (r *Runner) openConfig(path string) (*config.Config, error) {
	return config.New(config.NewFileStore(path), r.logger)
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeOK(format string, args ...any) error {
	return r.writePlain("%s\n", ui.OK(fmt.Sprintf(format, args...)))
}

func (r *Runner) writeTitle(s string) error {
	return r.writePlain("%s\n", ui.Title(s))
}

// register builds all CLI commands with this runner's dependencies.
func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		runCommand(r),
		authCommand(r),
		setupCommand(r),
		validateCommand(r),
		statsCommand(r),
		profileCommand(r),
	}
}
