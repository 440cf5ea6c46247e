package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/symposium/internal/printer"
)

type EndCmd struct {
	flags *Flags
}

// NewEndCmd creates a new end command.
func NewEndCmd(flags *Flags) *EndCmd {
	return &EndCmd{flags: flags}
}

// Register adds the end command to the application.
func (cmd *EndCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "end",
		Usage:     "End a forum",
		UsageText: "symposium end <forum>",
		Description: `Closes a forum. Ended forums keep their transcript and can still be
shown, summarized, and exported, but accept no further messages.

Ending an already ended forum is a no-op.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *EndCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	forumID := c.Args().First()
	if forumID == "" {
		return fmt.Errorf("forum ID required\n\nUsage: symposium end <forum>")
	}

	frm, err := cmd.flags.Service.EndForum(ctx, forumID)
	if err != nil {
		return fmt.Errorf("end forum: %w", err)
	}

	p.Success("Forum ended", fmt.Sprintf("%s (%s)", frm.Name, frm.ID))
	return nil
}
