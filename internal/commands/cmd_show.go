package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/printer"
)

type ShowCmd struct {
	flags   *Flags
	limit   int
	jsonOut bool
}

// NewShowCmd creates a new show command.
func NewShowCmd(flags *Flags) *ShowCmd {
	return &ShowCmd{flags: flags}
}

// Register adds the show command to the application.
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "show",
		Usage:       "Show forum details",
		UsageText:   "symposium show <forum> [options]",
		Description: "Displays a forum's metadata, participants, and most recent messages.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "number of recent messages to show",
				Value:       10,
				Destination: &cmd.limit,
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

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	forumID := c.Args().First()
	if forumID == "" {
		return fmt.Errorf("forum ID required\n\nUsage: symposium show <forum>")
	}

	frm, err := cmd.flags.Service.GetForum(ctx, forumID)
	if err != nil {
		return fmt.Errorf("get forum: %w", err)
	}
	parts, err := cmd.flags.Service.Participants(ctx, forumID)
	if err != nil {
		return fmt.Errorf("list participants: %w", err)
	}
	msgs, err := cmd.flags.Service.Messages(ctx, forumID, cmd.limit)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}

	if cmd.jsonOut {
		out := struct {
			Forum        forum.Forum         `json:"forum"`
			Participants []forum.Participant `json:"participants"`
			Messages     []forum.Message     `json:"messages"`
		}{frm, parts, msgs}
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	p.Section(frm.Name)
	p.Printf("  ID:     %s", frm.ID)
	p.Printf("  Mode:   %s", frm.Mode)
	p.Printf("  State:  %s", frm.State)
	if frm.Topic != "" {
		p.Printf("  Topic:  %s", frm.Topic)
	}
	p.Printf("  Turns:  %d of %d", frm.TurnCount, frm.TurnCeiling)
	if len(frm.Tags) > 0 {
		p.Printf("  Tags:   %s", strings.Join(frm.Tags, ", "))
	}
	if frm.Description != "" {
		p.Printf("")
		p.Printf("  %s", frm.Description)
	}

	p.Printf("")
	p.Section("Participants")
	names := make(map[string]string, len(parts))
	for _, pt := range parts {
		names[pt.ID] = pt.DisplayName
		switch pt.Kind {
		case forum.KindHuman:
			p.Printf("  %s (you)", pt.DisplayName)
		default:
			if len(pt.Expertise) > 0 {
				p.Printf("  %s: %s", pt.DisplayName, strings.Join(pt.Expertise, ", "))
			} else {
				p.Printf("  %s", pt.DisplayName)
			}
		}
	}

	p.Printf("")
	p.Section("Recent messages")
	if len(msgs) == 0 {
		p.Infof("No messages yet")
		return nil
	}
	out := c.Root().Writer
	for _, m := range msgs {
		name := names[m.SenderID]
		if name == "" {
			name = m.SenderID
		}
		_, _ = fmt.Fprintf(out, "  %s: %s\n", p.Bold(name), m.Content)
	}

	return nil
}
