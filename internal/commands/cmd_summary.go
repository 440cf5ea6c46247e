package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/symposium/internal/printer"
)

type SummaryCmd struct {
	flags *Flags
	list  bool
}

// NewSummaryCmd creates a new summary command.
func NewSummaryCmd(flags *Flags) *SummaryCmd {
	return &SummaryCmd{flags: flags}
}

// Register adds the summary command to the application.
func (cmd *SummaryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "summary",
		Usage:     "Summarize a forum's discussion",
		UsageText: "symposium summary <forum> [options]",
		Description: `Produces a summary of the discussion so far and stores it with the
forum. On open forums the summary is also posted into the transcript as
an oracle message.

Use --list to print stored summaries instead of generating a new one.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "list",
				Aliases:     []string{"l"},
				Usage:       "list stored summaries instead of generating",
				Destination: &cmd.list,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SummaryCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	forumID := c.Args().First()
	if forumID == "" {
		return fmt.Errorf("forum ID required\n\nUsage: symposium summary <forum>")
	}

	out := c.Root().Writer

	if cmd.list {
		sums, err := cmd.flags.Service.Summaries(ctx, forumID)
		if err != nil {
			return fmt.Errorf("list summaries: %w", err)
		}
		if len(sums) == 0 {
			p.Infof("No summaries stored")
			p.Printf("Run 'symposium summary %s' to generate one", forumID)
			return nil
		}
		for _, sum := range sums {
			p.Section(fmt.Sprintf("%s (after %d messages)", sum.CreatedAt.Format("2006-01-02 15:04"), sum.MessageCountAt))
			_, _ = fmt.Fprintf(out, "%s\n\n", sum.Text)
		}
		return nil
	}

	sum, err := cmd.flags.Service.Summarize(ctx, forumID)
	if err != nil {
		return fmt.Errorf("summarize forum: %w", err)
	}

	_, _ = fmt.Fprintln(out, sum.Text)
	return nil
}
