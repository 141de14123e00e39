package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteExample writes the default configuration to path as a starting
// point for deployments.
func WriteExample(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}
	return nil
}
