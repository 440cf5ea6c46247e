package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/symposium/internal/printer"
	"github.com/hay-kot/symposium/internal/styles"
)

type RmCmd struct {
	flags *Flags
	force bool
}

// NewRmCmd creates a new rm command.
func NewRmCmd(flags *Flags) *RmCmd {
	return &RmCmd{flags: flags}
}

// Register adds the rm command to the application.
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rm",
		Usage:     "Delete a forum and its transcript",
		UsageText: "symposium rm <forum> [--force]",
		Description: `Permanently deletes a forum with its messages, participants, events,
and summaries. This cannot be undone; use 'symposium end' to close a
forum while keeping its transcript.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "force",
				Aliases:     []string{"f"},
				Usage:       "skip the confirmation prompt",
				Destination: &cmd.force,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	forumID := c.Args().First()
	if forumID == "" {
		return fmt.Errorf("forum ID required\n\nUsage: symposium rm <forum>")
	}

	frm, err := cmd.flags.Service.GetForum(ctx, forumID)
	if err != nil {
		return fmt.Errorf("get forum: %w", err)
	}

	if !cmd.force {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to delete without confirmation; use --force")
		}

		confirmed := false
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q and its %d message(s)?", frm.Name, frm.MessageCount)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&confirmed),
		)).WithTheme(styles.FormTheme())

		if err := form.Run(); err != nil {
			return fmt.Errorf("confirm deletion: %w", err)
		}
		if !confirmed {
			p.Infof("Kept %s", frm.Name)
			return nil
		}
	}

	if err := cmd.flags.Service.DeleteForum(ctx, forumID); err != nil {
		return fmt.Errorf("delete forum: %w", err)
	}

	p.Success("Forum deleted", fmt.Sprintf("%s (%s)", frm.Name, frm.ID))
	return nil
}
