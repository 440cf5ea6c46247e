package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/printer"
	"github.com/hay-kot/symposium/internal/styles"
	"github.com/hay-kot/symposium/internal/symposium"
)

type NewCmd struct {
	flags    *Flags
	mode     string
	topic    string
	seed     string
	turns    int
	provider string
	model    string
	noInput  bool
}

// NewNewCmd creates a new new command
func NewNewCmd(flags *Flags) *NewCmd {
	return &NewCmd{flags: flags}
}

// Register adds the new command to the application
func (cmd *NewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "new",
		Usage:     "Create a new forum",
		UsageText: "symposium new [options] [name...]",
		Description: `Creates a forum with a panel of personas and an optional opening message.

When no personas are given and stdin is a terminal, an interactive form
collects the mode, panel, and topic. The forum name falls back to the
configured name pattern when omitted.

Example:
  symposium new --persona socrates --persona kant --topic "free will"
  symposium new Evening Debate -m debate -p socrates -p nietzsche --seed "Is morality invented?"`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "mode",
				Aliases:     []string{"m"},
				Usage:       "conversational mode (consensus, debate, exploration)",
				Destination: &cmd.mode,
			},
			&cli.StringSliceFlag{
				Name:    "persona",
				Aliases: []string{"p"},
				Usage:   "persona id or name (repeatable)",
			},
			&cli.StringFlag{
				Name:        "topic",
				Aliases:     []string{"t"},
				Usage:       "opening topic",
				Destination: &cmd.topic,
			},
			&cli.StringFlag{
				Name:        "seed",
				Aliases:     []string{"s"},
				Usage:       "opening human message",
				Destination: &cmd.seed,
			},
			&cli.IntFlag{
				Name:        "turns",
				Usage:       "turn ceiling (defaults from config)",
				Destination: &cmd.turns,
			},
			&cli.StringSliceFlag{
				Name:  "tag",
				Usage: "tag for grouping and search (repeatable)",
			},
			&cli.StringFlag{
				Name:        "provider",
				Usage:       "pin a producer backend for this forum",
				Destination: &cmd.provider,
			},
			&cli.StringFlag{
				Name:        "model",
				Usage:       "pin a model for this forum",
				Destination: &cmd.model,
			},
			&cli.BoolFlag{
				Name:        "no-input",
				Usage:       "never prompt; fail if required options are missing",
				Destination: &cmd.noInput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *NewCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	opts := symposium.CreateOptions{
		Name:        strings.Join(c.Args().Slice(), " "),
		Topic:       cmd.topic,
		Mode:        forum.Mode(cmd.mode),
		Personas:    c.StringSlice("persona"),
		Seed:        cmd.seed,
		Tags:        c.StringSlice("tag"),
		TurnCeiling: cmd.turns,
		Provider:    cmd.provider,
		Model:       cmd.model,
	}

	if len(opts.Personas) == 0 {
		if cmd.noInput || !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("at least one persona is required\n\nUsage: symposium new --persona <id>\n\nRun 'symposium personas ls' to see what is available")
		}
		if err := cmd.runForm(&opts); err != nil {
			return fmt.Errorf("collect forum options: %w", err)
		}
	}

	frm, err := cmd.flags.Service.CreateForum(ctx, opts)
	if err != nil {
		return fmt.Errorf("create forum: %w", err)
	}

	p.Success("Forum created", fmt.Sprintf("%s (%s)", frm.Name, frm.ID))
	p.Printf("Run 'symposium chat %s' to join the discussion", frm.ID)
	return nil
}

// runForm collects missing options interactively. Flag values prefill the
// form so partial invocations only ask for what is absent.
func (cmd *NewCmd) runForm(opts *symposium.CreateOptions) error {
	profiles := cmd.flags.Service.Library().List()
	personaOpts := make([]huh.Option[string], 0, len(profiles))
	for _, prof := range profiles {
		label := prof.Name
		if prof.Era != "" {
			label = fmt.Sprintf("%s (%s)", prof.Name, prof.Era)
		}
		personaOpts = append(personaOpts, huh.NewOption(label, prof.ID))
	}

	mode := string(opts.Mode)
	if mode == "" {
		mode = string(forum.ModeExploration)
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Mode").
			Options(
				huh.NewOption("Exploration", string(forum.ModeExploration)),
				huh.NewOption("Debate", string(forum.ModeDebate)),
				huh.NewOption("Consensus", string(forum.ModeConsensus)),
			).
			Value(&mode),
		huh.NewMultiSelect[string]().
			Title("Panel").
			Options(personaOpts...).
			Validate(func(ids []string) error {
				if len(ids) == 0 {
					return fmt.Errorf("pick at least one persona")
				}
				return nil
			}).
			Value(&opts.Personas),
		huh.NewInput().
			Title("Topic").
			Placeholder("what should they talk about?").
			Value(&opts.Topic),
		huh.NewText().
			Title("Opening message").
			Placeholder("optional; sent as you when the forum opens").
			Value(&opts.Seed),
	)).WithTheme(styles.FormTheme())

	if err := form.Run(); err != nil {
		return err
	}

	opts.Mode = forum.Mode(mode)
	return nil
}
