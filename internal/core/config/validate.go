package config

import (
	"fmt"
	"io"
	"os"
	"text/template"
)

// ValidationResult holds the outcome of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
	Checks   []ValidationCheck
}

// ValidationError represents a configuration error.
type ValidationError struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidationCheck represents a successful validation check.
type ValidationCheck struct {
	Category string   `json:"category"`
	Message  string   `json:"message"`
	Details  []string `json:"details,omitempty"`
}

// IsValid returns true if there are no errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ErrorCount returns the number of errors.
func (r *ValidationResult) ErrorCount() int {
	return len(r.Errors)
}

// NameTemplateData defines available fields for forum name patterns.
type NameTemplateData struct {
	Topic string
	Mode  string
	Date  string
}

// HookTemplateData defines available fields for lifecycle hook commands.
type HookTemplateData struct {
	ID    string
	Name  string
	Mode  string
	Topic string
}

// ValidateDeep performs comprehensive validation of the configuration.
// Unlike Validate(), this checks template syntax, API key presence, and
// file access.
func (c *Config) ValidateDeep(configPath string) *ValidationResult {
	result := &ValidationResult{}

	c.validateFileAccess(result, configPath)
	c.validateProviders(result)
	c.validateEngine(result)
	c.validateNamePattern(result)
	c.validateHooks(result)

	return result
}

// validateFileAccess checks the config file, data directory, and personas
// directory.
func (c *Config) validateFileAccess(result *ValidationResult, configPath string) {
	details := []string{}

	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil {
			details = append(details, fmt.Sprintf("Config file: %s (found)", configPath))
			if info.IsDir() {
				result.Errors = append(result.Errors, ValidationError{
					Category: "File Access",
					Item:     "config file",
					Message:  fmt.Sprintf("%s is a directory, not a file", configPath),
				})
			}
		} else if os.IsNotExist(err) {
			details = append(details, fmt.Sprintf("Config file: %s (not found, using defaults)", configPath))
		} else {
			result.Errors = append(result.Errors, ValidationError{
				Category: "File Access",
				Item:     "config file",
				Message:  fmt.Sprintf("cannot access %s: %v", configPath, err),
			})
		}
	}

	if c.DataDir != "" {
		if info, err := os.Stat(c.DataDir); err == nil {
			if !info.IsDir() {
				result.Errors = append(result.Errors, ValidationError{
					Category: "File Access",
					Item:     "data_dir",
					Message:  fmt.Sprintf("%s exists but is not a directory", c.DataDir),
				})
			} else {
				details = append(details, fmt.Sprintf("Data directory: %s (exists)", c.DataDir))
			}
		} else if os.IsNotExist(err) {
			details = append(details, fmt.Sprintf("Data directory: %s (will be created)", c.DataDir))
		} else {
			result.Errors = append(result.Errors, ValidationError{
				Category: "File Access",
				Item:     "data_dir",
				Message:  fmt.Sprintf("cannot access %s: %v", c.DataDir, err),
			})
		}
	}

	if info, err := os.Stat(c.PersonasDir()); err == nil && info.IsDir() {
		details = append(details, fmt.Sprintf("Personas directory: %s (exists)", c.PersonasDir()))
	} else {
		details = append(details, fmt.Sprintf("Personas directory: %s (not found, built-ins only)", c.PersonasDir()))
	}

	if len(details) > 0 {
		result.Checks = append(result.Checks, ValidationCheck{
			Category: "File Access",
			Message:  "File paths validated",
			Details:  details,
		})
	}
}

// validateProviders checks the backend selection and credentials.
func (c *Config) validateProviders(result *ValidationResult) {
	p := c.Providers

	switch p.Provider {
	case ProviderTemplate:
		result.Checks = append(result.Checks, ValidationCheck{
			Category: "Providers",
			Message:  "Offline template provider selected; no credentials needed",
		})
	case ProviderOpenAI, ProviderAnthropic:
		details := []string{fmt.Sprintf("Provider: %s", p.Provider)}
		if p.Model != "" {
			details = append(details, fmt.Sprintf("Model: %s", p.Model))
		} else {
			details = append(details, "Model: provider default")
		}

		if p.APIKey() == "" {
			env := "OPENAI_API_KEY"
			if p.Provider == ProviderAnthropic {
				env = "ANTHROPIC_API_KEY"
			}
			result.Errors = append(result.Errors, ValidationError{
				Category: "Providers",
				Item:     "api key",
				Message:  fmt.Sprintf("no API key configured for %s", p.Provider),
				Fix:      fmt.Sprintf("Set %s or providers.%s_api_key", env, p.Provider),
			})
		} else {
			details = append(details, "API key: configured")
		}

		result.Checks = append(result.Checks, ValidationCheck{
			Category: "Providers",
			Message:  "Remote provider configured",
			Details:  details,
		})
	default:
		result.Errors = append(result.Errors, ValidationError{
			Category: "Providers",
			Item:     "provider",
			Message:  fmt.Sprintf("unknown provider %q", p.Provider),
			Fix:      "Use template, openai, or anthropic",
		})
	}
}

// validateEngine sanity-checks the threshold ordering. Values outside the
// usual ordering are legal but usually a mistake.
func (c *Config) validateEngine(result *ValidationResult) {
	e := c.Engine

	if e.RelaxedFloor > e.CrowdThreshold {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Category: "Engine",
			Item:     "relaxed_floor",
			Message:  "relaxed_floor exceeds crowd_threshold; the fallback pass will be stricter than the normal one",
		})
	}
	if e.CrowdThreshold > e.SmallThreshold {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Category: "Engine",
			Item:     "crowd_threshold",
			Message:  "crowd_threshold exceeds small_threshold; large forums will be harder to activate than small ones",
		})
	}

	result.Checks = append(result.Checks, ValidationCheck{
		Category: "Engine",
		Message:  "Selection tuning validated",
		Details: []string{
			fmt.Sprintf("Turn ceiling: %d", e.TurnCeiling),
			fmt.Sprintf("Thresholds: crowd %.2f, small %.2f, relaxed %.2f", e.CrowdThreshold, e.SmallThreshold, e.RelaxedFloor),
			fmt.Sprintf("Draw weights: top %.2f, second %.2f", e.TopWeight, e.SecondWeight),
		},
	})
}

// validateNamePattern checks template syntax for the forum name pattern.
func (c *Config) validateNamePattern(result *ValidationResult) {
	if err := validateTemplate(c.Forums.NamePattern, NameTemplateData{}); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Category: "Forums",
			Item:     "name_pattern",
			Message:  fmt.Sprintf("template error: %v", err),
			Fix:      "Check template syntax. Available variables: {{.Topic}}, {{.Mode}}, {{.Date}}",
		})
		return
	}

	result.Checks = append(result.Checks, ValidationCheck{
		Category: "Forums",
		Message:  "Name pattern is a valid template",
		Details:  []string{fmt.Sprintf("Pattern: %s", c.Forums.NamePattern)},
	})
}

// validateHooks checks template syntax for lifecycle hook commands.
func (c *Config) validateHooks(result *ValidationResult) {
	hooks := map[string][]string{
		"on_forum_create": c.Hooks.OnForumCreate,
		"on_forum_end":    c.Hooks.OnForumEnd,
	}

	total := 0
	details := []string{}
	for _, name := range []string{"on_forum_create", "on_forum_end"} {
		for i, cmd := range hooks[name] {
			total++
			if err := validateTemplate(cmd, HookTemplateData{}); err != nil {
				result.Errors = append(result.Errors, ValidationError{
					Category: "Hooks",
					Item:     fmt.Sprintf("%s command %d", name, i),
					Message:  fmt.Sprintf("template error: %v", err),
					Fix:      "Check template syntax. Available variables: {{.ID}}, {{.Name}}, {{.Mode}}, {{.Topic}}",
				})
			} else {
				details = append(details, fmt.Sprintf("%s command %d: valid template", name, i))
			}
		}
	}

	if total == 0 {
		result.Checks = append(result.Checks, ValidationCheck{
			Category: "Hooks",
			Message:  "No hooks defined",
		})
		return
	}

	if len(details) > 0 {
		result.Checks = append(result.Checks, ValidationCheck{
			Category: "Hooks",
			Message:  fmt.Sprintf("%d hook command(s) defined", total),
			Details:  details,
		})
	}
}

// validateTemplate checks if a template string is valid.
func validateTemplate(tmplStr string, data any) error {
	t, err := template.New("").Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return err
	}

	// Dry-run execute to catch missing key errors
	// We pass empty/zero data so missing keys are caught
	return t.Execute(io.Discard, data)
}
