package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// Tunables are the knobs shared by the tunables file, the environment and
// the command line.
type Tunables struct {
	// FlushMargin is the number of lines read after an Exit before the
	// process buffer is flushed.
	FlushMargin int `yaml:"flush_margin" env:"ETRACE_FLUSH_MARGIN"`
	// SplitThreshold caps the file path bytes per output record; 0 disables
	// splitting.
	SplitThreshold int64  `yaml:"split_threshold" env:"ETRACE_SPLIT_THRESHOLD"`
	SiblingPipes   bool   `yaml:"sibling_pipes" env:"ETRACE_SIBLING_PIPES"`
	ContJoiner     string `yaml:"cont_joiner" env:"ETRACE_CONT_JOINER"`
	Filter         string `yaml:"filter" env:"ETRACE_FILTER"`
	StatFiles      bool   `yaml:"stat_files" env:"ETRACE_STAT_FILES"`
}

// Defaults returns the built-in tunables.
func Defaults() Tunables {
	return Tunables{
		FlushMargin:  10000,
		SiblingPipes: true,
		StatFiles:    true,
	}
}

type tunablesFile struct {
	Tunables   `yaml:",inline"`
	Attributes []CustomAttribute `yaml:"attributes"`
}

var joinerEscapes = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\0`, "\x00")

// Load layers the tunables file (when ConfigFile is set) and the environment
// under the command-line flags. A nil environ reads the process environment.
func (c *Config) Load(fs afero.Fs, environ map[string]string) error {
	t := Defaults()
	var fileAttrs []CustomAttribute

	if c.ConfigFile != "" {
		data, err := afero.ReadFile(fs, c.ConfigFile)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		f := tunablesFile{Tunables: t}
		if err := yaml.UnmarshalStrict(data, &f); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", c.ConfigFile, err)
		}
		t = f.Tunables
		fileAttrs = f.Attributes
	}

	if err := env.ParseWithOptions(&t, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	if c.set["flush_margin"] {
		t.FlushMargin = c.flags.FlushMargin
	}
	if c.set["split_threshold"] {
		t.SplitThreshold = c.flags.SplitThreshold
	}
	if c.set["filter"] {
		t.Filter = c.flags.Filter
	}
	if c.set["sibling_pipes"] {
		t.SiblingPipes = c.flags.SiblingPipes
	}
	if c.set["stat_files"] {
		t.StatFiles = c.flags.StatFiles
	}
	t.ContJoiner = joinerEscapes.Replace(t.ContJoiner)

	if t.FlushMargin < 0 {
		return fmt.Errorf("flush margin must not be negative, got %d", t.FlushMargin)
	}
	if t.SplitThreshold < 0 {
		return fmt.Errorf("split threshold must not be negative, got %d", t.SplitThreshold)
	}

	c.Tunables = t
	c.Attributes = append(fileAttrs, c.flagAttrs...)
	return nil
}
