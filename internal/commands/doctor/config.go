package doctor

import (
	"context"

	"github.com/hay-kot/symposium/internal/core/config"
)

// ConfigCheck validates the configuration file.
type ConfigCheck struct {
	config     *config.Config
	configPath string
}

// NewConfigCheck creates a new configuration check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{
		config:     cfg,
		configPath: configPath,
	}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.config == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Config loaded",
			Status: StatusFail,
			Detail: "configuration not loaded",
		})
		return result
	}

	deep := c.config.ValidateDeep(c.configPath)

	if deep.IsValid() && len(deep.Warnings) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "Config valid",
			Status: StatusPass,
		})
		return result
	}

	for _, e := range deep.Errors {
		label := e.Category
		if e.Item != "" {
			label += " (" + e.Item + ")"
		}
		detail := e.Message
		if e.Fix != "" {
			detail += "; fix: " + e.Fix
		}
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusFail,
			Detail: detail,
		})
	}

	for _, w := range deep.Warnings {
		label := w.Category
		if w.Item != "" {
			label += " (" + w.Item + ")"
		}
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusWarn,
			Detail: w.Message,
		})
	}

	return result
}
