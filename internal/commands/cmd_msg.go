package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/engine"
	"github.com/hay-kot/symposium/internal/printer"
)

type MsgCmd struct {
	flags   *Flags
	jsonOut bool
	file    string
}

// NewMsgCmd creates a new msg command.
func NewMsgCmd(flags *Flags) *MsgCmd {
	return &MsgCmd{flags: flags}
}

// Register adds the msg command to the application.
func (cmd *MsgCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "msg",
		Usage:     "Send a message and collect the replies",
		UsageText: "symposium msg <forum> [message...]",
		Description: `Submits a human message to a forum, runs coordinator cycles until the
panel hands back to you or the forum ends, and prints the replies.

The message can be provided as:
- Command-line arguments after the forum ID
- From a file with -f/--file
- From stdin if no argument is provided

This is the scriptable counterpart to 'symposium chat'.

Examples:
  symposium msg a1b2c3 "What would you say to that?"
  echo "Summarize your positions" | symposium msg a1b2c3
  symposium msg a1b2c3 -f prompt.txt --json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "read the message from a file",
				Destination: &cmd.file,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOut,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *MsgCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	args := c.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("forum ID required\n\nUsage: symposium msg <forum> [message...]")
	}
	forumID := args[0]

	text, err := cmd.readMessage(args[1:])
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("message is empty")
	}

	submitted, err := cmd.flags.Service.SubmitHuman(ctx, forumID, text)
	if err != nil {
		return fmt.Errorf("submit message: %w", err)
	}

	produced, decision, err := cmd.flags.Service.RunCycles(ctx, forumID)
	if err != nil {
		return fmt.Errorf("run cycles: %w", err)
	}

	names, err := cmd.displayNames(ctx, forumID)
	if err != nil {
		return err
	}

	if cmd.jsonOut {
		return cmd.outputJSON(c, submitted, produced, decision)
	}

	out := c.Root().Writer
	for _, m := range produced {
		name := names[m.SenderID]
		if name == "" {
			name = m.SenderID
		}
		_, _ = fmt.Fprintf(out, "%s: %s\n", p.Bold(name), m.Content)
	}

	switch decision.Outcome {
	case engine.OutcomeAwaitingHuman:
		p.Infof("The panel is waiting on you")
	case engine.OutcomeTerminated:
		if decision.Reason == engine.ReasonRoundComplete {
			p.Infof("Round complete; send another message to continue")
		} else {
			p.Warnf("Forum ended: %s", decision.Reason)
		}
	}

	return nil
}

// readMessage resolves the message text from args, file, or stdin.
func (cmd *MsgCmd) readMessage(args []string) (string, error) {
	if cmd.file != "" {
		data, err := os.ReadFile(cmd.file)
		if err != nil {
			return "", fmt.Errorf("read message file: %w", err)
		}
		return string(data), nil
	}

	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("message required\n\nProvide it as arguments, with --file, or on stdin")
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func (cmd *MsgCmd) displayNames(ctx context.Context, forumID string) (map[string]string, error) {
	parts, err := cmd.flags.Service.Participants(ctx, forumID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	names := make(map[string]string, len(parts))
	for _, pt := range parts {
		names[pt.ID] = pt.DisplayName
	}
	return names, nil
}

func (cmd *MsgCmd) outputJSON(c *cli.Command, submitted forum.Message, produced []forum.Message, decision engine.Decision) error {
	out := struct {
		Submitted forum.Message   `json:"submitted"`
		Produced  []forum.Message `json:"produced"`
		Outcome   engine.Outcome  `json:"outcome"`
		Reason    engine.Reason   `json:"reason,omitempty"`
		Speaker   string          `json:"speaker,omitempty"`
	}{
		Submitted: submitted,
		Produced:  produced,
		Outcome:   decision.Outcome,
		Reason:    decision.Reason,
		Speaker:   decision.SpeakerID,
	}

	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
