package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/symposium/internal/printer"
)

type JournalCmd struct {
	flags   *Flags
	limit   int
	jsonOut bool
	clear   bool
}

// NewJournalCmd creates a new journal command.
func NewJournalCmd(flags *Flags) *JournalCmd {
	return &JournalCmd{flags: flags}
}

// Register adds the journal command to the application.
func (cmd *JournalCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "journal",
		Usage:     "View or clear the coordinator decision journal",
		UsageText: "symposium journal [forum] [options]",
		Description: `Lists recent coordinator decisions: who was chosen to speak, why a
cycle handed back to you, and why a forum ended.

With a forum ID, only that forum's decisions are shown.
Use --clear to remove all journal entries.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "number of entries to show",
				Value:       20,
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOut,
			},
			&cli.BoolFlag{
				Name:        "clear",
				Aliases:     []string{"c"},
				Usage:       "clear all journal entries",
				Destination: &cmd.clear,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *JournalCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.clear {
		if err := cmd.flags.Service.ClearJournal(ctx); err != nil {
			return fmt.Errorf("clear journal: %w", err)
		}
		p.Successf("Journal cleared")
		return nil
	}

	forumID := c.Args().First()
	entries, err := cmd.flags.Service.Journal(ctx, forumID, cmd.limit)
	if err != nil {
		return fmt.Errorf("list journal: %w", err)
	}

	if cmd.jsonOut {
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		p.Infof("No journal entries")
		return nil
	}

	out := c.Root().Writer
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIME\tFORUM\tCYCLE\tOUTCOME\tSPEAKER\tREASON")

	for _, e := range entries {
		reason := e.Reason
		if e.Relaxed {
			reason += " (relaxed)"
		}
		if e.Mention != "" {
			reason += fmt.Sprintf(" [mention: %s]", e.Mention)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.ForumID,
			e.Cycle,
			e.Outcome,
			e.SpeakerID,
			reason,
		)
	}

	return w.Flush()
}
