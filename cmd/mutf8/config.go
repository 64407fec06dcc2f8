package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/mutf8/errors"
)

// Config holds settings shared by all commands. It can be loaded from a
// TOML file with -config; flags given on the command line win.
type Config struct {
	Format  string `toml:"format"`
	Color   string `toml:"color"`
	Raw     bool   `toml:"raw"`
	Framed  bool   `toml:"framed"`
	Verbose bool   `toml:"verbose"`
}

const (
	formatText = "text"
	formatJSON = "json"

	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

func DefaultConfig() Config {
	return Config{
		Format: formatText,
		Color:  colorAuto,
	}
}

// LoadConfig reads a TOML config file on top of the defaults. Unknown keys
// are rejected; values are checked by Validate once flags are applied.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot read %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown keys in %s: %s", path, strings.Join(keys, ", ")))
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Format {
	case formatText, formatJSON:
	default:
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown format %q (want text or json)", c.Format))
	}
	switch c.Color {
	case colorAuto, colorAlways, colorNever:
	default:
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown color mode %q (want auto, always or never)", c.Color))
	}
	if c.Raw && c.Format == formatJSON {
		return errors.InvalidInput(errors.PhaseConfig, "raw output cannot be combined with json format")
	}
	return nil
}

// Styled reports whether output should carry terminal styling.
func (c Config) Styled(isTerminal bool) bool {
	switch c.Color {
	case colorAlways:
		return true
	case colorNever:
		return false
	}
	return isTerminal && c.Format == formatText
}
