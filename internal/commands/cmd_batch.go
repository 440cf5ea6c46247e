package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/core/validate"
	"github.com/hay-kot/symposium/internal/symposium"
	"github.com/hay-kot/symposium/pkg/randid"
)

const (
	// StatusCreated indicates the forum was created successfully.
	StatusCreated = "created"
	// StatusFailed indicates the forum creation failed.
	StatusFailed = "failed"
	// StatusSkipped indicates the forum was not attempted due to failure threshold.
	StatusSkipped = "skipped"
	// StatusValidated indicates a dry run accepted the entry without creating it.
	StatusValidated = "validated"

	// maxFailures is the number of failures before stopping batch processing.
	maxFailures = 3
)

// BatchInput is the JSON input schema for batch forum creation.
type BatchInput struct {
	Forums []BatchForum `json:"forums"`
}

// Validate checks the batch input for errors using criterio.
func (b BatchInput) Validate() error {
	if len(b.Forums) == 0 {
		return criterio.NewFieldErrors("forums", fmt.Errorf("array is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	seenNames := make(map[string]bool)

	for i, f := range b.Forums {
		field := fmt.Sprintf("forums[%d]", i)

		if len(f.Personas) == 0 {
			errs = errs.Append(field+".personas", fmt.Errorf("at least one persona is required"))
			continue
		}
		for j, id := range f.Personas {
			if err := validate.Name(fmt.Sprintf("personas[%d]", j), id); err != nil {
				errs = errs.Append(field+".personas", err)
			}
		}

		if f.Mode != "" {
			if _, ok := forum.ParseMode(f.Mode); !ok {
				errs = errs.Append(field+".mode", fmt.Errorf("unknown mode %q", f.Mode))
				continue
			}
		}

		if f.Name != "" {
			if seenNames[f.Name] {
				errs = errs.Append(field+".name", fmt.Errorf("duplicate name %q", f.Name))
				continue
			}
			seenNames[f.Name] = true
		}
	}

	return errs.ToError()
}

// BatchForum defines a single forum to create.
type BatchForum struct {
	Name     string   `json:"name,omitempty"`
	Topic    string   `json:"topic,omitempty"`
	Mode     string   `json:"mode,omitempty"`
	Personas []string `json:"personas"`
	Seed     string   `json:"seed,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// BatchResult is the output for a single forum creation attempt.
type BatchResult struct {
	Name    string `json:"name"`
	ForumID string `json:"forum_id,omitempty"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// BatchOutput is the JSON output schema.
type BatchOutput struct {
	BatchID string        `json:"batch_id"`
	LogFile string        `json:"log_file,omitempty"`
	Results []BatchResult `json:"results"`
}

// BatchErrorOutput is the JSON output for fatal errors.
type BatchErrorOutput struct {
	Error string `json:"error"`
}

type BatchCmd struct {
	flags  *Flags
	file   string
	dryRun bool
}

func NewBatchCmd(flags *Flags) *BatchCmd {
	return &BatchCmd{flags: flags}
}

func (cmd *BatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "batch",
		Usage: "Create multiple forums from JSON input",
		UsageText: `symposium batch [options]

Read from stdin:
  echo '{"forums":[{"topic":"free will","personas":["socrates","kant"]}]}' | symposium batch

Read from file:
  symposium batch --input forums.json`,
		Description: `Creates multiple forums from a JSON specification.

Each forum in the input array is created sequentially. Processing stops
after 3 failures; forums not attempted are marked as skipped.

Input JSON schema:
  {
    "forums": [
      {
        "name": "optional display name",
        "topic": "optional topic",
        "mode": "consensus|debate|exploration",
        "personas": ["socrates", "kant"],
        "seed": "optional opening message",
        "tags": ["optional", "tags"]
      }
    ]
  }

Fields:
  personas - Required. Persona ids or names from the library.
  name     - Optional. Rendered from the configured name pattern if empty.
  topic    - Optional. Opening topic hint.
  mode     - Optional. Defaults to exploration.
  seed     - Optional. Posted as the first human message.
  tags     - Optional. Used for grouping and search.

Output is JSON with a batch ID, log file path, and results for each forum.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"f"},
				Usage:       "path to JSON file (reads from stdin if not provided)",
				Destination: &cmd.file,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "validate the input without creating forums",
				Destination: &cmd.dryRun,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *BatchCmd) run(ctx context.Context, c *cli.Command) error {
	batchID := randid.Generate(6)

	input, err := cmd.readInput()
	if err != nil {
		return cmd.writeError(fmt.Errorf("read input: %w", err))
	}

	if err := input.Validate(); err != nil {
		return cmd.writeError(fmt.Errorf("invalid input: %w", err))
	}

	if cmd.dryRun {
		output := BatchOutput{
			BatchID: batchID,
			Results: make([]BatchResult, 0, len(input.Forums)),
		}
		for _, f := range input.Forums {
			output.Results = append(output.Results, BatchResult{Name: f.Name, Status: StatusValidated})
		}
		return cmd.writeOutput(output)
	}

	logger, logFile, err := cmd.setupLogger(batchID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "batch %s: failed to setup logger: %v\n", batchID, err)
		return cmd.writeError(fmt.Errorf("setup logger: %w", err))
	}
	defer func() {
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close log file: %v\n", err)
		}
	}()

	logger.Info().Str("batch_id", batchID).Msg("starting batch processing")

	output := BatchOutput{
		BatchID: batchID,
		LogFile: filepath.Join(cmd.flags.Config.LogsDir(), fmt.Sprintf("batch-%s.log", batchID)),
		Results: make([]BatchResult, 0, len(input.Forums)),
	}

	failures := 0
	for i, f := range input.Forums {
		if failures >= maxFailures {
			logger.Warn().Str("name", f.Name).Msg("skipping forum due to failure threshold")
			for j := i; j < len(input.Forums); j++ {
				output.Results = append(output.Results, BatchResult{
					Name:   input.Forums[j].Name,
					Status: StatusSkipped,
				})
			}
			break
		}

		logger.Info().Str("name", f.Name).Int("index", i).Msg("creating forum")

		result := cmd.createForum(ctx, f)
		output.Results = append(output.Results, result)

		if result.Status == StatusFailed {
			failures++
			logger.Error().Str("name", f.Name).Str("error", result.Error).Msg("forum creation failed")
		} else {
			logger.Info().Str("name", result.Name).Str("forum_id", result.ForumID).Msg("forum created")
		}
	}

	logger.Info().
		Int("total", len(input.Forums)).
		Int("created", countByStatus(output.Results, StatusCreated)).
		Int("failed", countByStatus(output.Results, StatusFailed)).
		Int("skipped", countByStatus(output.Results, StatusSkipped)).
		Msg("batch processing complete")

	return cmd.writeOutput(output)
}

func (cmd *BatchCmd) setupLogger(batchID string) (zerolog.Logger, *os.File, error) {
	logsDir := cmd.flags.Config.LogsDir()
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("create logs dir: %w", err)
	}

	logPath := filepath.Join(logsDir, fmt.Sprintf("batch-%s.log", batchID))
	file, err := os.Create(logPath)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("create log file: %w", err)
	}

	logger := zerolog.New(file).With().Timestamp().Logger()
	return logger, file, nil
}

func (cmd *BatchCmd) readInput() (BatchInput, error) {
	var reader io.Reader

	if cmd.file != "" {
		f, err := os.Open(cmd.file)
		if err != nil {
			return BatchInput{}, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return BatchInput{}, fmt.Errorf("no input provided (stdin is a terminal); use --input or pipe JSON")
		}
		reader = os.Stdin
	}

	var input BatchInput
	if err := json.NewDecoder(reader).Decode(&input); err != nil {
		return BatchInput{}, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}

func (cmd *BatchCmd) createForum(ctx context.Context, f BatchForum) BatchResult {
	opts := symposium.CreateOptions{
		Name:     f.Name,
		Topic:    f.Topic,
		Mode:     forum.Mode(f.Mode),
		Personas: f.Personas,
		Seed:     f.Seed,
		Tags:     f.Tags,
	}

	created, err := cmd.flags.Service.CreateForum(ctx, opts)
	if err != nil {
		return BatchResult{
			Name:   f.Name,
			Status: StatusFailed,
			Error:  err.Error(),
		}
	}

	return BatchResult{
		Name:    created.Name,
		ForumID: created.ID,
		Status:  StatusCreated,
	}
}

func (cmd *BatchCmd) writeOutput(output BatchOutput) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to write JSON output: %v\n", err)
		fmt.Fprintf(os.Stderr, "batch_id: %s\n", output.BatchID)
		fmt.Fprintf(os.Stderr, "results: %d created, %d failed, %d skipped\n",
			countByStatus(output.Results, StatusCreated),
			countByStatus(output.Results, StatusFailed),
			countByStatus(output.Results, StatusSkipped))
		return err
	}
	return nil
}

func (cmd *BatchCmd) writeError(err error) error {
	output := BatchErrorOutput{Error: err.Error()}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(output); encErr != nil {
		fmt.Fprintf(os.Stderr, "error: %s (failed to write JSON: %v)\n", err, encErr)
	}
	return err
}

func countByStatus(results []BatchResult, status string) int {
	count := 0
	for _, r := range results {
		if r.Status == status {
			count++
		}
	}
	return count
}
