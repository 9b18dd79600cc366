package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyConvert = "convert"
	keyLogging = "logging"
)

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// the target Config. Each section present in the overlay is decoded over the
// target's current values, so keys missing from the overlay keep their
// previous value. Unknown keys are ignored.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	for key, node := range overlay {
		switch key {
		case keyConvert:
			v := target.Convert
			if err = node.Decode(&v); err != nil {
				return fmt.Errorf("applying overlay section %q: %w", key, err)
			}
			target.Convert = v
		case keyLogging:
			v := target.Logging
			if err = node.Decode(&v); err != nil {
				return fmt.Errorf("applying overlay section %q: %w", key, err)
			}
			target.Logging = v
		}
	}

	return nil
}
