package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/symposium/internal/core/config"
	"github.com/hay-kot/symposium/internal/printer"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "symposium config validate [options]",
				Description: "Validates the configuration file, checking provider credentials, engine thresholds, template syntax, and file paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.flags.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	result := cmd.flags.Config.ValidateDeep(cmd.flags.ConfigPath)

	if cmd.format == "json" {
		return cmd.outputJSON(c, result)
	}

	return cmd.outputText(ctx, result)
}

func (cmd *ConfigValidateCmd) outputJSON(c *cli.Command, result *config.ValidationResult) error {
	out := struct {
		Valid    bool                       `json:"valid"`
		Errors   []config.ValidationError   `json:"errors,omitempty"`
		Warnings []config.ValidationWarning `json:"warnings,omitempty"`
		Checks   []config.ValidationCheck   `json:"checks,omitempty"`
	}{
		Valid:    result.IsValid(),
		Errors:   result.Errors,
		Warnings: result.Warnings,
		Checks:   result.Checks,
	}

	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	if !result.IsValid() {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *ConfigValidateCmd) outputText(ctx context.Context, result *config.ValidationResult) error {
	p := printer.Ctx(ctx)

	for _, check := range result.Checks {
		p.CheckItem(check.Category, check.Message)
		for _, detail := range check.Details {
			p.Printf("      %s", detail)
		}
	}

	for _, warn := range result.Warnings {
		label := warn.Category
		if warn.Item != "" {
			label += " (" + warn.Item + ")"
		}
		p.WarnItem(label, warn.Message)
	}

	for _, err := range result.Errors {
		label := err.Category
		if err.Item != "" {
			label += " (" + err.Item + ")"
		}
		p.FailItem(label, err.Message)
		if err.Fix != "" {
			p.Printf("      fix: %s", err.Fix)
		}
	}

	p.Printf("")
	if result.IsValid() {
		if len(result.Warnings) > 0 {
			p.Successf("Configuration is valid (%d warning(s))", len(result.Warnings))
		} else {
			p.Successf("Configuration is valid")
		}
		return nil
	}

	p.Errorf("%d error(s), %d warning(s)", result.ErrorCount(), len(result.Warnings))
	return cli.Exit("", 1)
}
