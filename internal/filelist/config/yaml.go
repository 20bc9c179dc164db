package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/dimasma0305/filelist/internal/filelist/errors"
)

// readYAML decodes the file at path into opts. Unknown keys are rejected so
// that a misspelled option does not silently fall back to its default.
func readYAML(path string, opts *Options) error {
	//nolint:gosec // G304: config path is built from the project directory
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("file read error: %w", err)
	}
	if err := yaml.UnmarshalStrict(b, opts); err != nil {
		return errors.Wrapf(errors.ErrInvalidConfig, "%s: %v", path, err)
	}
	return nil
}

func writeYAML(path string, opts Options) error {
	out, err := yaml.Marshal(opts)
	if err != nil {
		return fmt.Errorf("error marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("file write error: %w", err)
	}
	return nil
}
