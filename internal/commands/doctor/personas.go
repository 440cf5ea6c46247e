package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hay-kot/symposium/internal/core/persona"
)

// PersonasCheck validates user persona files in the personas directory.
type PersonasCheck struct {
	dir string
}

// NewPersonasCheck creates a new persona directory check.
func NewPersonasCheck(dir string) *PersonasCheck {
	return &PersonasCheck{dir: dir}
}

func (c *PersonasCheck) Name() string {
	return "Personas"
}

func (c *PersonasCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		result.Items = append(result.Items, CheckItem{
			Label:  "Personas directory",
			Status: StatusPass,
			Detail: "no user personas; built-ins only",
		})
		return result
	}

	pattern := filepath.Join(c.dir, "**", "*.{yml,yaml}")
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithNoFollow())
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Scan personas",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}
	sort.Strings(matches)

	valid := 0
	for _, path := range matches {
		if _, err := persona.LoadFile(path); err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  filepath.Base(path),
				Status: StatusFail,
				Detail: err.Error(),
			})
			continue
		}
		valid++
	}

	if valid > 0 || len(matches) == 0 {
		detail := fmt.Sprintf("%d valid persona file(s)", valid)
		if len(matches) == 0 {
			detail = "directory exists but holds no persona files"
		}
		result.Items = append(result.Items, CheckItem{
			Label:  "User personas",
			Status: StatusPass,
			Detail: detail,
		})
	}

	return result
}
