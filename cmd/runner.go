package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/fretsheet/internal/repositories"
	"github.com/desertthunder/fretsheet/internal/services"
	"github.com/desertthunder/fretsheet/internal/shared"
	"github.com/desertthunder/fretsheet/internal/sheets"
	"github.com/desertthunder/fretsheet/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer

	store    sheets.Spreadsheet
	items    *repositories.ItemRepository
	routines *repositories.RoutineRepository
	charts   *repositories.ChartRepository
	engine   tasks.Engine

	recognizer services.Recognizer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Store      sheets.Spreadsheet // Pre-built store, used by tests
	Recognizer services.Recognizer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		recognizer: opts.Recognizer,
	}
	if opts.Store != nil {
		r.store = opts.Store
		r.buildRepositories()
	}
	return r
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, itemsCommand, routinesCommand, chartsCommand, importCommand, cacheCommand, exportCommand, practiceCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// ensureConfig reloads configuration when a command's --config flag points at
// a different file than the one loaded at startup.
func (r *Runner) ensureConfig(cmd *cli.Command) *shared.Config {
	path := cmd.String("config")
	if path == "" || path == r.configPath {
		return r.config
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, keeping current", "path", path, "error", err)
		return r.config
	}
	r.config = config
	r.configPath = path
	return r.config
}

// connect builds the authenticated spreadsheet store and the repositories
// over it. Subsequent calls reuse the established connection.
func (r *Runner) connect(ctx context.Context, cmd *cli.Command) error {
	if r.store != nil {
		return nil
	}

	config := r.ensureConfig(cmd)
	if config.Spreadsheet.ID == "" {
		return fmt.Errorf("%w: spreadsheet.id is not set, run setup first", shared.ErrMissingConfig)
	}

	oauthConfig, err := sheets.LoadOAuthConfig(config.Spreadsheet.CredentialsFile)
	if err != nil {
		return err
	}
	token, err := sheets.LoadToken(config.Spreadsheet.TokenFile)
	if err != nil {
		return err
	}

	httpClient := sheets.NewHTTPClient(ctx, oauthConfig, token, config.Spreadsheet.TokenFile)
	client, err := sheets.NewClient(config.Spreadsheet.ID, httpClient, sheets.NewThrottle(config.Retry.WriteInterval()))
	if err != nil {
		return err
	}

	r.store = client
	r.buildRepositories()
	return nil
}

func (r *Runner) buildRepositories() {
	r.items = repositories.NewItemRepository(r.store, r.config.Retry)
	r.routines = repositories.NewRoutineRepository(r.store, r.config.Retry)
	r.charts = repositories.NewChartRepository(r.store, r.config.Retry)
	r.engine = tasks.NewImportEngine(r.items, r.routines, r.charts, r.recognizer)
}

// ensureRecognizer builds the chord recognition service on first use.
func (r *Runner) ensureRecognizer() error {
	if r.recognizer != nil {
		return nil
	}

	svc, err := services.NewAnthropicService(r.config.Recognizer)
	if err != nil {
		return err
	}
	r.recognizer = svc
	if r.store != nil {
		r.buildRepositories()
	}
	return nil
}

// openDatabase opens the local snapshot database with the configured pool.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// drainProgress logs progress updates from a task channel until it closes.
func (r *Runner) drainProgress(progress <-chan tasks.ProgressUpdate) {
	for update := range progress {
		r.logger.Info(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
	}
}
