package persona

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// LoadDir loads user persona definitions from every .yml/.yaml file under
// dir (recursively) into the library. Files load in path order so overrides
// are deterministic. A missing directory is not an error; a malformed file
// is.
func (l *Library) LoadDir(dir string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	pattern := filepath.Join(dir, "**", "*.{yml,yaml}")
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithNoFollow())
	if err != nil {
		return 0, fmt.Errorf("glob personas: %w", err)
	}
	sort.Strings(matches)

	loaded := 0
	for _, path := range matches {
		p, err := LoadFile(path)
		if err != nil {
			return loaded, err
		}
		l.Add(p)
		loaded++
	}
	return loaded, nil
}

// LoadFile reads and validates a single persona definition.
func LoadFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read persona %s: %w", path, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse persona %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid persona %s: %w", path, err)
	}
	return p, nil
}
