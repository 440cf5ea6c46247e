package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/tui"
)

type ChatCmd struct {
	flags *Flags
}

// NewChatCmd creates a new chat command
func NewChatCmd(flags *Flags) *ChatCmd {
	return &ChatCmd{
		flags: flags,
	}
}

// Register adds the chat command to the application.
func (cmd *ChatCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "chat",
		Usage:     "Join a forum interactively",
		UsageText: "symposium chat [forum]",
		Description: `Opens the interactive discussion view: the transcript in a scrollable
viewport, an input field to speak, and live agent replies.

Without a forum ID, the most recently active open forum is joined.`,
		Action: cmd.run,
	})

	return app
}

// Run executes the chat TUI. Exported for use as default command.
func (cmd *ChatCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *ChatCmd) run(ctx context.Context, c *cli.Command) error {
	forumID := c.Args().First()
	if forumID == "" {
		var err error
		forumID, err = cmd.latestOpenForum(ctx)
		if err != nil {
			return err
		}
	}

	m, err := tui.New(ctx, cmd.flags.Service, cmd.flags.Config, forumID)
	if err != nil {
		return fmt.Errorf("open forum %s: %w", forumID, err)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run chat: %w", err)
	}

	return nil
}

// latestOpenForum picks the most recently active forum that still accepts
// messages.
func (cmd *ChatCmd) latestOpenForum(ctx context.Context) (string, error) {
	forums, err := cmd.flags.Service.ListForums(ctx)
	if err != nil {
		return "", fmt.Errorf("list forums: %w", err)
	}

	for _, f := range forums {
		if f.State != forum.StateEnded {
			return f.ID, nil
		}
	}

	return "", fmt.Errorf("no open forums\n\nRun 'symposium new' to start one")
}
