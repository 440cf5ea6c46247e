package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/symposium/internal/printer"
)

type ExportCmd struct {
	flags  *Flags
	output string
	render bool
}

// NewExportCmd creates a new export command.
func NewExportCmd(flags *Flags) *ExportCmd {
	return &ExportCmd{flags: flags}
}

// Register adds the export command to the application.
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Export a forum transcript as markdown",
		UsageText: "symposium export <forum> [options]",
		Description: `Writes the full transcript, participants, and latest summary as a
markdown document to stdout or a file.

Use --render to preview the document in the terminal instead.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write to a file instead of stdout",
				Destination: &cmd.output,
			},
			&cli.BoolFlag{
				Name:        "render",
				Aliases:     []string{"r"},
				Usage:       "render the markdown in the terminal",
				Destination: &cmd.render,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	forumID := c.Args().First()
	if forumID == "" {
		return fmt.Errorf("forum ID required\n\nUsage: symposium export <forum>")
	}

	md, err := cmd.flags.Service.Transcript(ctx, forumID)
	if err != nil {
		return fmt.Errorf("export transcript: %w", err)
	}

	if cmd.output != "" {
		if err := os.WriteFile(cmd.output, []byte(md), 0o644); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
		p.Success("Transcript exported", cmd.output)
		return nil
	}

	out := c.Root().Writer

	if cmd.render {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			return fmt.Errorf("build renderer: %w", err)
		}
		rendered, err := r.Render(md)
		if err != nil {
			return fmt.Errorf("render transcript: %w", err)
		}
		_, _ = fmt.Fprint(out, rendered)
		return nil
	}

	_, _ = fmt.Fprint(out, md)
	return nil
}
