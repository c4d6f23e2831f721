package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserConfigName is the editable portal config kept in the portal home.
const UserConfigName = "config.yml"

// Bootstrap makes sure home holds an editable portal config and returns its path.
// On first start the shipped template is checked and copied byte for byte, so
// its comments survive; without a template the built-in defaults are written.
// An existing file is never touched: admin edits from /admin/settings live there.
func Bootstrap(home, shipped string) (string, error) {
	if err := os.MkdirAll(home, 0o755); err != nil {
		return "", fmt.Errorf("create portal home %s: %w", home, err)
	}
	path := filepath.Join(home, UserConfigName)
	switch _, err := os.Stat(path); {
	case err == nil:
		return path, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("portal config %s: %w", path, err)
	}

	b, err := os.ReadFile(shipped)
	if errors.Is(err, os.ErrNotExist) {
		return path, writeAtomic(path, Defaults())
	}
	if err != nil {
		return "", fmt.Errorf("read config template %s: %w", shipped, err)
	}
	var tmpl Config
	if err := yaml.Unmarshal(b, &tmpl); err != nil {
		return "", fmt.Errorf("config template %s is not valid YAML: %w", shipped, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write portal config %s: %w", path, err)
	}
	return path, nil
}
