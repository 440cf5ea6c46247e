package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/symposium/internal/printer"
)

type PruneCmd struct {
	flags *Flags
	days  int
}

// NewPruneCmd creates a new prune command
func NewPruneCmd(flags *Flags) *PruneCmd {
	return &PruneCmd{flags: flags}
}

// Register adds the prune command to the application
func (cmd *PruneCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "prune",
		Usage:     "Remove ended forums past the retention window",
		UsageText: "symposium prune [--days N]",
		Description: `Deletes ended forums whose last activity is older than the retention
window (forums.retention_days in config, overridable with --days).

Open forums are never touched. Retention of 0 disables pruning.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "days",
				Aliases:     []string{"d"},
				Usage:       "override the retention window in days",
				Destination: &cmd.days,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *PruneCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.days > 0 {
		cmd.flags.Config.Forums.RetentionDays = cmd.days
	}

	if cmd.flags.Config.Forums.RetentionDays <= 0 {
		p.Infof("Retention is disabled (forums.retention_days = 0)")
		p.Printf("Set it in config or pass --days to prune")
		return nil
	}

	count, err := cmd.flags.Service.Prune(ctx)
	if err != nil {
		return fmt.Errorf("prune forums: %w", err)
	}

	if count == 0 {
		p.Infof("No ended forums past the retention window")
		return nil
	}

	p.Successf("Pruned %d forum(s)", count)

	return nil
}
