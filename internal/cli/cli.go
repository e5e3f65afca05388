// Package cli parses the global command line into an Options value.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/arbor/internal/display"
	"github.com/vk/arbor/internal/errs"
	"github.com/vk/arbor/internal/model"
)

// Options holds the global command-line options and the parsed subcommand.
type Options struct {
	Config    string
	Chdir     string
	ColorMode display.ColorMode
	Root      string
	Variables []string
	Quiet     bool
	Verbose   bool
	LogFormat string
	LogLevel  string

	Command model.Command
	Args    []string
}

// stringList collects a repeatable flag's values.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// Usage writes the top-level help text.
func Usage(output io.Writer) {
	fmt.Fprint(output, `arbor - cultivate collections of working trees

Usage:
  arbor [options] <command> [arguments]

Commands:
  cmd <query> <name>...    Run configured commands over resolved trees
  eval <expr> [tree] [garden]
                           Evaluate an expression
  exec <query> <command>...
                           Run a command over resolved trees
  init [--force] [path]    Write a starter configuration
  ls [query]               List resolved trees
  plant [-o file] <path>...
                           Record existing worktrees in the configuration
  shell <query>            Open a shell in the first resolved tree
  <name> [query]           Run the configured command <name>

Queries match garden, group, and tree names with glob patterns. Prefix a
query with ':' to match gardens only, '%' for groups, or '@' for trees.

Options:
`)
}

// Parse processes the global arguments. The boolean result reports a clean
// early exit (help was requested).
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	flagSet := flag.NewFlagSet("arbor", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		Usage(output)
		flagSet.PrintDefaults()
	}

	opts := &Options{}
	var vars stringList
	colorFlag := flagSet.String("color", "auto", "Color mode ("+display.ColorModeNames+").")
	flagSet.StringVar(&opts.Config, "config", "", "Path to the configuration file.")
	flagSet.StringVar(&opts.Config, "c", "", "Path to the configuration file (shorthand).")
	flagSet.StringVar(&opts.Chdir, "chdir", "", "Change directories before searching for configuration files.")
	flagSet.StringVar(&opts.Chdir, "C", "", "Change directories before searching for configuration files (shorthand).")
	flagSet.StringVar(&opts.Root, "root", "", "Override the configured root path.")
	flagSet.StringVar(&opts.Root, "r", "", "Override the configured root path (shorthand).")
	flagSet.Var(&vars, "set", "Set a variable using a name=value expression (repeatable).")
	flagSet.Var(&vars, "s", "Set a variable using a name=value expression (shorthand).")
	flagSet.BoolVar(&opts.Quiet, "quiet", false, "Suppress progress output.")
	flagSet.BoolVar(&opts.Quiet, "q", false, "Suppress progress output (shorthand).")
	flagSet.BoolVar(&opts.Verbose, "verbose", false, "Include tree paths in progress output.")
	flagSet.BoolVar(&opts.Verbose, "v", false, "Include tree paths in progress output (shorthand).")
	flagSet.StringVar(&opts.LogFormat, "log-format", "text", "Log output format: 'text' or 'json'.")
	flagSet.StringVar(&opts.LogLevel, "log-level", "warn", "Log level: 'debug', 'info', 'warn', or 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, errs.Usage("%s", err.Error())
	}
	opts.Variables = vars

	mode, ok := display.ParseColorMode(strings.ToLower(*colorFlag))
	if !ok {
		return nil, false, errs.Usage("invalid color mode %q: use one of %s", *colorFlag, display.ColorModeNames)
	}
	opts.ColorMode = mode

	switch strings.ToLower(opts.LogFormat) {
	case "text", "json":
	default:
		return nil, false, errs.Usage("invalid log-format: must be 'text' or 'json'")
	}
	switch strings.ToLower(opts.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, errs.Usage("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	opts.Command = model.ParseCommand(rest[0])
	opts.Args = rest[1:]

	return opts, false, nil
}
