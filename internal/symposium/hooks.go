package symposium

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hay-kot/symposium/internal/core/config"
	"github.com/hay-kot/symposium/internal/styles"
	"github.com/hay-kot/symposium/pkg/executil"
	"github.com/hay-kot/symposium/pkg/tmpl"
)

// HookRunner executes forum lifecycle hook commands.
type HookRunner struct {
	log      zerolog.Logger
	executor executil.Executor
	stdout   io.Writer
	stderr   io.Writer
}

// NewHookRunner creates a new HookRunner.
func NewHookRunner(log zerolog.Logger, executor executil.Executor, stdout, stderr io.Writer) *HookRunner {
	return &HookRunner{
		log:      log,
		executor: executor,
		stdout:   stdout,
		stderr:   stderr,
	}
}

// Run renders and executes hook commands sequentially. Commands are shell
// templates over the forum's id, name, mode, and topic.
func (h *HookRunner) Run(ctx context.Context, commands []string, data config.HookTemplateData) error {
	if len(commands) == 0 {
		return nil
	}
	if h.executor == nil {
		return fmt.Errorf("hooks configured but no executor available")
	}

	h.log.Debug().
		Str("forum_id", data.ID).
		Int("hook_count", len(commands)).
		Msg("running hooks")

	for i, cmdTmpl := range commands {
		rendered, err := tmpl.Render(cmdTmpl, data)
		if err != nil {
			return fmt.Errorf("render hook command %q: %w", cmdTmpl, err)
		}

		h.printCommandHeader(i+1, len(commands), rendered)

		if err := h.executor.RunStream(ctx, h.stdout, h.stderr, "sh", "-c", rendered); err != nil {
			return fmt.Errorf("run hook command %q: %w", rendered, err)
		}

		_, _ = fmt.Fprintln(h.stdout)
	}

	return nil
}

// printCommandHeader prints a styled header for a hook command.
func (h *HookRunner) printCommandHeader(cmdNum, totalCmds int, cmd string) {
	divider := styles.DividerStyle.Render(strings.Repeat("─", 50))
	header := styles.CommandHeaderStyle.Render("hook")
	cmdLabel := styles.DividerStyle.Render(fmt.Sprintf("[%d/%d]", cmdNum, totalCmds))
	command := styles.CommandStyle.Render(cmd)

	_, _ = fmt.Fprintln(h.stdout)
	_, _ = fmt.Fprintln(h.stdout, divider)
	_, _ = fmt.Fprintf(h.stdout, "%s %s %s\n", header, cmdLabel, command)
	_, _ = fmt.Fprintln(h.stdout, divider)
}
