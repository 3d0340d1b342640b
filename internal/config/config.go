// Package config assembles the run configuration from built-in defaults, an
// optional YAML tunables file, ETRACE_* environment variables and the
// command line, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultInput     = ".nfsdb"
	DefaultOutput    = ".nfsdb.json"
	DefaultRawOutput = ".nfsdb.raw.json"
)

// ErrHelp is returned by ParseArgs when usage was requested.
var ErrHelp = errors.New("help requested")

// CustomAttribute is a span attribute computed from an entry.
type CustomAttribute struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
}

// Config holds the parsed command-line configuration.
type Config struct {
	Input     string
	Output    string
	RawOutput string
	// Raw enables the raw event log.
	Raw bool

	Stats    bool
	Progress bool
	Verbose  bool

	// ConfigFile is the optional YAML tunables file.
	ConfigFile string

	// Spans exports every written entry as an OTLP span.
	Spans   bool
	TraceID string

	Tunables   Tunables
	Attributes []CustomAttribute

	flags     Tunables
	flagAttrs []CustomAttribute
	set       map[string]bool
}

// Usage returns the help text.
func Usage(programName string) string {
	return fmt.Sprintf(`Usage: %s [<tracer_log> [<output_json> [-r [<raw_json>]]]] [options]

Defaults: %s %s, raw log %s

Options:
  -c <lines>          flush margin in lines before a deferred exit is handled
  -s <bytes>          split entries whose file paths exceed this many bytes
  -t                  print statistics
  -f <expr>           keep only entries matching the expression
  -r [<raw_json>]     also write the raw event log
  --config <yaml>     tunables file
  --no-sibling-pipes  disable the stdout/stdin check between siblings
  --no-stat           do not stat accessed files
  --no-progress       hide the progress bar
  --spans             export entries as OTLP spans
  --trace-id <id>     trace id for exported spans (hashed unless 32 hex chars)
  --attr <name=expr>  custom span attribute, repeatable
  -v, --verbose       debug logging
  -h, --help          show this help
`, programName, DefaultInput, DefaultOutput, DefaultRawOutput)
}

// ParseArgs parses command-line arguments and returns a Config with the
// built-in defaults applied. Call Load to layer the tunables file and the
// environment underneath the flags.
func ParseArgs(args []string) (*Config, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no arguments provided")
	}

	cfg := &Config{
		Progress: true,
		Tunables: Defaults(),
		set:      make(map[string]bool),
	}
	var positional []string

	for i := 1; i < len(args); i++ {
		arg := args[i]

		// value returns the argument of an option, either glued to a
		// short flag (-c500) or in the next slot.
		value := func(flag string) (string, error) {
			if rest := strings.TrimPrefix(arg, flag); rest != "" && len(flag) == 2 {
				return rest, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", flag)
			}
			i++
			return args[i], nil
		}

		switch {
		case arg == "-h" || arg == "--help":
			return nil, ErrHelp
		case strings.HasPrefix(arg, "-c"):
			v, err := value("-c")
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid value passed to -c: %q", v)
			}
			cfg.flags.FlushMargin = n
			cfg.set["flush_margin"] = true
		case strings.HasPrefix(arg, "-s"):
			v, err := value("-s")
			if err != nil {
				return nil, err
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid value passed to -s: %q", v)
			}
			cfg.flags.SplitThreshold = n
			cfg.set["split_threshold"] = true
		case arg == "-t":
			cfg.Stats = true
		case arg == "-f":
			v, err := value("-f")
			if err != nil {
				return nil, err
			}
			cfg.flags.Filter = v
			cfg.set["filter"] = true
		case arg == "-r":
			cfg.Raw = true
			if len(positional) >= 2 && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				cfg.RawOutput = args[i]
			}
		case arg == "--config":
			v, err := value("--config")
			if err != nil {
				return nil, err
			}
			cfg.ConfigFile = v
		case arg == "--no-sibling-pipes":
			cfg.flags.SiblingPipes = false
			cfg.set["sibling_pipes"] = true
		case arg == "--no-stat":
			cfg.flags.StatFiles = false
			cfg.set["stat_files"] = true
		case arg == "--no-progress":
			cfg.Progress = false
		case arg == "--spans":
			cfg.Spans = true
		case arg == "--trace-id":
			v, err := value("--trace-id")
			if err != nil {
				return nil, err
			}
			cfg.TraceID = v
		case arg == "--attr":
			v, err := value("--attr")
			if err != nil {
				return nil, err
			}
			attr, err := parseCustomAttribute(v)
			if err != nil {
				return nil, err
			}
			cfg.flagAttrs = append(cfg.flagAttrs, attr)
		case arg == "-v" || arg == "--verbose":
			cfg.Verbose = true
		case strings.HasPrefix(arg, "-") && arg != "-":
			return nil, fmt.Errorf("unknown option %q", arg)
		default:
			positional = append(positional, arg)
		}
	}

	if len(positional) > 2 {
		return nil, fmt.Errorf("unexpected argument %q", positional[2])
	}
	cfg.Input = DefaultInput
	cfg.Output = DefaultOutput
	if len(positional) > 0 {
		cfg.Input = positional[0]
	}
	if len(positional) > 1 {
		cfg.Output = positional[1]
	}
	if cfg.Raw && cfg.RawOutput == "" {
		cfg.RawOutput = DefaultRawOutput
	}
	cfg.Attributes = cfg.flagAttrs

	return cfg, nil
}

func parseCustomAttribute(s string) (CustomAttribute, error) {
	name, expression, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.TrimSpace(expression) == "" {
		return CustomAttribute{}, fmt.Errorf("invalid attribute %q, expected name=expression", s)
	}
	return CustomAttribute{Name: name, Expression: expression}, nil
}
