package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/symposium/internal/commands"
	"github.com/hay-kot/symposium/internal/core/config"
	"github.com/hay-kot/symposium/internal/core/persona"
	"github.com/hay-kot/symposium/internal/printer"
	"github.com/hay-kot/symposium/internal/store/jsonfile"
	"github.com/hay-kot/symposium/internal/store/sqlite"
	"github.com/hay-kot/symposium/internal/symposium"
	"github.com/hay-kot/symposium/pkg/executil"
	"github.com/hay-kot/symposium/pkg/utils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	// Provider API keys may live in a local .env file.
	_ = godotenv.Load()

	if err := setupLogger("info", "", nil); err != nil {
		panic(err)
	}

	var (
		p     = printer.New(os.Stderr)
		ctx   = printer.NewContext(context.Background(), p)
		flags = &commands.Flags{}
	)

	var (
		deferredLogs *utils.DeferredWriter
		db           *sqlite.Store
	)

	app := &cli.Command{
		Name:      "symposium",
		Usage:     "Run moderated discussions between AI personas",
		UsageText: "symposium [global options] command [command options]",
		Description: `Symposium hosts round-table discussions between configurable personas
backed by LLM providers. Forums persist locally; a coordinator decides
who speaks each turn from persona traits, topic relevance, and recency.

Run 'symposium' with no arguments to rejoin the most recent open forum.
Run 'symposium new' to start a forum from the persona library.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("SYMPOSIUM_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (optional)",
				Sources:     cli.EnvVars("SYMPOSIUM_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("SYMPOSIUM_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("SYMPOSIUM_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Detect TUI mode: no subcommand, or the chat command, takes
			// over the terminal.
			args := c.Args().Slice()
			isTUI := len(args) == 0 || args[0] == "chat"

			// In TUI mode, buffer logs to display after exit
			var deferred io.Writer
			if isTUI {
				deferredLogs = &utils.DeferredWriter{}
				deferred = deferredLogs
			}

			if err := setupLogger(flags.LogLevel, flags.LogFile, deferred); err != nil {
				return ctx, err
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return ctx, fmt.Errorf("create data dir: %w", err)
			}

			db, err = sqlite.Open(cfg.DatabaseFile())
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			// Create service
			var (
				journals = jsonfile.NewJournalStore(cfg.JournalFile())
				lib      = persona.DefaultLibrary()
				exec     = &executil.RealExecutor{}
				logger   = log.With().Str("component", "symposium").Logger()
			)

			if n, err := lib.LoadDir(cfg.PersonasDir()); err != nil {
				return ctx, fmt.Errorf("load personas: %w", err)
			} else if n > 0 {
				logger.Debug().Int("count", n).Str("dir", cfg.PersonasDir()).Msg("loaded user personas")
			}

			flags.Service = symposium.New(db, journals, lib, cfg, exec, logger, os.Stdout, os.Stderr)
			return ctx, nil
		},
	}

	chatCmd := commands.NewChatCmd(flags)

	app = commands.NewNewCmd(flags).Register(app)
	app = chatCmd.Register(app)
	app = commands.NewMsgCmd(flags).Register(app)
	app = commands.NewLsCmd(flags).Register(app)
	app = commands.NewShowCmd(flags).Register(app)
	app = commands.NewSearchCmd(flags).Register(app)
	app = commands.NewSummaryCmd(flags).Register(app)
	app = commands.NewExportCmd(flags).Register(app)
	app = commands.NewEndCmd(flags).Register(app)
	app = commands.NewRmCmd(flags).Register(app)
	app = commands.NewPersonasCmd(flags).Register(app)
	app = commands.NewJournalCmd(flags).Register(app)
	app = commands.NewBatchCmd(flags).Register(app)
	app = commands.NewPruneCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags).Register(app)

	// Rejoin the latest open forum when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'symposium --help' for usage", c.Args().First())
		}
		return chatCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		printer.Ctx(ctx).FatalError(err)
		exitCode = 1
	}

	if db != nil {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close database: %v\n", err)
		}
	}

	// Flush deferred logs to console after the TUI exits
	if deferredLogs != nil {
		if err := deferredLogs.Flush(zerolog.ConsoleWriter{Out: os.Stderr}); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
		}
	}

	os.Exit(exitCode)
}

func setupLogger(level string, logFile string, deferred io.Writer) error {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}

	if logFile != "" {
		// Create log directory if it doesn't exist
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		// Open log file
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		if deferred != nil {
			// TUI mode with explicit log file - write to both file and deferred buffer
			output = io.MultiWriter(file, deferred)
		} else {
			// Write to both console and file
			output = io.MultiWriter(
				zerolog.ConsoleWriter{Out: os.Stderr},
				file,
			)
		}
	} else if deferred != nil {
		// TUI mode without log file - buffer for display after exit
		output = deferred
	}

	log.Logger = log.Output(output).Level(parsedLevel)

	return nil
}
