package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultConfigFile is read from the working directory when --config is
// not given.
const DefaultConfigFile = "chainq.yaml"

// EnvPrefix prefixes environment overrides: CHAINQ_FORMAT, CHAINQ_STRICT, ...
const EnvPrefix = "CHAINQ_"

// Name generator choices for identifiers the parser makes up.
const (
	NamesSequential = "sequential"
	NamesUUID       = "uuid"
)

// ValidNames defines the allowed name generator choices.
var ValidNames = []string{NamesSequential, NamesUUID}

// Config holds the settings shared by all commands.
type Config struct {
	Format  string `koanf:"format"`
	Verbose bool   `koanf:"verbose"`
	Names   string `koanf:"names"`
	Strict  bool   `koanf:"strict"` // treat model validation warnings as errors

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// LoadConfig layers configuration sources.
// Precedence (highest to lowest): flags > env vars > config file > defaults
//
// Only flags the user set explicitly override lower layers. An explicit
// cfgFile must exist; the default file is optional.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"format":  "text",
		"verbose": false,
		"names":   NamesSequential,
		"strict":  false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := cfgFile
	if used == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			used = DefaultConfigFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: CHAINQ_NAMES -> names
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if !slices.Contains(ValidFormats, c.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", c.Format, ValidFormats)
	}
	if !slices.Contains(ValidNames, c.Names) {
		return fmt.Errorf("invalid names %q: must be one of %v", c.Names, ValidNames)
	}
	return nil
}
