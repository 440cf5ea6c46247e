package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/printer"
	"github.com/hay-kot/symposium/internal/styles"
)

type LsCmd struct {
	flags    *Flags
	jsonOut  bool
	showEnds bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags) *LsCmd {
	return &LsCmd{flags: flags}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "ls",
		Usage:       "List forums",
		UsageText:   "symposium ls [options]",
		Description: "Displays a table of forums with their mode, state, turn count, and last activity.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOut,
			},
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"a"},
				Usage:       "include ended forums",
				Destination: &cmd.showEnds,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	forums, err := cmd.flags.Service.ListForums(ctx)
	if err != nil {
		return fmt.Errorf("list forums: %w", err)
	}

	if !cmd.showEnds {
		open := forums[:0]
		for _, f := range forums {
			if f.State != forum.StateEnded {
				open = append(open, f)
			}
		}
		forums = open
	}

	if cmd.jsonOut {
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(forums)
	}

	if len(forums) == 0 {
		p.Infof("No forums found")
		p.Printf("Run 'symposium new' to start one")
		return nil
	}

	out := c.Root().Writer
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tMODE\tSTATE\tTURNS\tACTIVITY")

	for _, f := range forums {
		name := f.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			f.ID,
			name,
			f.Mode,
			stateCell(f.State),
			f.TurnCount,
			f.TurnCeiling,
			timeAgo(f.LastActivity),
		)
	}

	return w.Flush()
}

var (
	lsActiveStyle  = lipgloss.NewStyle().Foreground(styles.ColorGreen)
	lsWaitingStyle = lipgloss.NewStyle().Foreground(styles.ColorYellow)
	lsCreatedStyle = lipgloss.NewStyle().Foreground(styles.ColorBlue)
	lsEndedStyle   = lipgloss.NewStyle().Foreground(styles.ColorGray)
)

func stateCell(s forum.State) string {
	switch s {
	case forum.StateActive:
		return lsActiveStyle.Render(string(s))
	case forum.StateAwaitingHuman:
		return lsWaitingStyle.Render("awaiting you")
	case forum.StateCreated:
		return lsCreatedStyle.Render(string(s))
	case forum.StateEnded:
		return lsEndedStyle.Render(string(s))
	default:
		return string(s)
	}
}

// timeAgo renders a timestamp as a coarse relative duration.
func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
