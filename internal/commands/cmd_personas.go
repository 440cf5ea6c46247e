package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/symposium/internal/core/persona"
	"github.com/hay-kot/symposium/internal/printer"
	"github.com/hay-kot/symposium/internal/styles"
)

type PersonasCmd struct {
	flags   *Flags
	jsonOut bool
	force   bool
}

// NewPersonasCmd creates a new personas command.
func NewPersonasCmd(flags *Flags) *PersonasCmd {
	return &PersonasCmd{flags: flags}
}

// Register adds the personas command to the application.
func (cmd *PersonasCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "personas",
		Usage: "Manage the persona library",
		Description: `Persona commands for the built-in and user-defined library.

User personas live as YAML files under the data directory and override
built-ins with the same id.`,
		Commands: []*cli.Command{
			{
				Name:        "ls",
				Usage:       "List available personas",
				UsageText:   "symposium personas ls",
				Description: "Displays every persona the library can resolve, built-in and user-defined.",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOut,
					},
				},
				Action: cmd.runLs,
			},
			{
				Name:        "show",
				Usage:       "Show a persona profile",
				UsageText:   "symposium personas show <id>",
				Description: "Displays a persona's full profile, including traits and expertise.",
				Action:      cmd.runShow,
			},
			{
				Name:        "new",
				Usage:       "Scaffold a new persona YAML file",
				UsageText:   "symposium personas new",
				Description: "Collects a profile interactively and writes it to the personas directory.",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "force",
						Usage:       "overwrite an existing file",
						Destination: &cmd.force,
					},
				},
				Action: cmd.runNew,
			},
		},
	})

	return app
}

func (cmd *PersonasCmd) runLs(ctx context.Context, c *cli.Command) error {
	profiles := cmd.flags.Service.Library().List()

	if cmd.jsonOut {
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(profiles)
	}

	out := c.Root().Writer
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tERA\tEXPERTISE")

	for _, p := range profiles {
		expertise := strings.Join(p.Expertise, ", ")
		if len(expertise) > 50 {
			expertise = expertise[:47] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Era, expertise)
	}

	return w.Flush()
}

func (cmd *PersonasCmd) runShow(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("persona ID required\n\nUsage: symposium personas show <id>")
	}

	prof, ok := cmd.flags.Service.Library().Resolve(id)
	if !ok {
		return fmt.Errorf("unknown persona %q", id)
	}

	title := prof.Name
	if prof.Era != "" {
		title = fmt.Sprintf("%s (%s)", prof.Name, prof.Era)
	}
	p.Section(title)
	if prof.Description != "" {
		p.Printf("  %s", prof.Description)
		p.Printf("")
	}
	if len(prof.Expertise) > 0 {
		p.Printf("  Expertise: %s", strings.Join(prof.Expertise, ", "))
	}
	if prof.Style != "" {
		p.Printf("  Style:     %s", prof.Style)
	}
	if prof.Method != "" {
		p.Printf("  Method:    %s", prof.Method)
	}

	if len(prof.Traits) > 0 {
		p.Printf("")
		p.Section("Traits")
		names := make([]string, 0, len(prof.Traits))
		width := 0
		for name := range prof.Traits {
			names = append(names, name)
			if len(name) > width {
				width = len(name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			p.Printf("  %-*s %s %.1f", width, name, traitBar(prof.Traits[name]), prof.Traits[name])
		}
	}

	if len(prof.KeyIdeas) > 0 {
		p.Printf("")
		p.Section("Key ideas")
		for _, idea := range prof.KeyIdeas {
			p.Printf("  - %s", idea)
		}
	}

	if len(prof.Quotes) > 0 {
		p.Printf("")
		p.Section("Quotes")
		for _, q := range prof.Quotes {
			p.Printf("  %q", q)
		}
	}

	return nil
}

// traitBar renders a 0..1 trait value as a ten-segment bar.
func traitBar(v float64) string {
	filled := int(v*10 + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func (cmd *PersonasCmd) runNew(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	prof := persona.Profile{
		Traits: map[string]float64{
			"analytical": 0.5,
			"assertive":  0.5,
			"creative":   0.5,
		},
	}
	var expertise string

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("ID").
			Placeholder("lowercase identifier, e.g. hypatia").
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("id is required")
				}
				if strings.ContainsAny(s, " \t") {
					return fmt.Errorf("id cannot contain whitespace")
				}
				return nil
			}).
			Value(&prof.ID),
		huh.NewInput().
			Title("Name").
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("name is required")
				}
				return nil
			}).
			Value(&prof.Name),
		huh.NewInput().
			Title("Era").
			Placeholder("e.g. Ancient Greece, 470-399 BCE").
			Value(&prof.Era),
		huh.NewText().
			Title("Description").
			Value(&prof.Description),
		huh.NewInput().
			Title("Expertise").
			Placeholder("comma separated, e.g. ethics, logic").
			Value(&expertise),
		huh.NewInput().
			Title("Style").
			Placeholder("how they speak").
			Value(&prof.Style),
		huh.NewInput().
			Title("Method").
			Placeholder("how they reason").
			Value(&prof.Method),
	)).WithTheme(styles.FormTheme())

	if err := form.Run(); err != nil {
		return fmt.Errorf("collect persona: %w", err)
	}

	for _, tag := range strings.Split(expertise, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			prof.Expertise = append(prof.Expertise, strings.ToLower(tag))
		}
	}

	if err := prof.Validate(); err != nil {
		return fmt.Errorf("invalid persona: %w", err)
	}

	dir := cmd.flags.Config.PersonasDir()
	path := filepath.Join(dir, prof.ID+".yml")
	if _, err := os.Stat(path); err == nil && !cmd.force {
		return fmt.Errorf("persona file %s already exists (use --force to overwrite)", path)
	}

	data, err := yaml.Marshal(prof)
	if err != nil {
		return fmt.Errorf("encode persona: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create personas directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write persona file: %w", err)
	}

	p.Success("Persona created", path)
	p.Printf("Traits default to neutral; edit the file to tune them")
	return nil
}
