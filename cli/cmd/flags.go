// Package cmd provides the commands of the gopherline binary.
package cmd

import "github.com/urfave/cli/v2"

// Exit codes.
const (
	exitSuccess       = 0
	exitUsage         = 1 // bad flags, config, input or storage
	exitDecodeFailure = 2 // bad line under the strict policy
	exitEncodeFailure = 3 // entry cannot be encoded
)

// Shared flags.
var (
	// ConfigFlag points at a gopherline.yaml; without it ./gopherline.yaml
	// is used when present.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to config file (default: ./gopherline.yaml if present)",
	}

	// InputFlag selects the input file; "-" is stdin.
	InputFlag = &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "Input file, - for stdin",
		Value:   "-",
	}

	// FramesFlag switches input or output to msgpack frames.
	FramesFlag = &cli.BoolFlag{
		Name:  "frames",
		Usage: "Use length-prefixed msgpack frames instead of text",
	}

	// FormatFlag selects output format.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml, wire",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Browse the result interactively (decode only)",
	}

	// LogLevelFlag sets the minimum log level.
	LogLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level: debug, info, warn, error",
	}
)

// OutputFlags returns the flags shared by commands that render results.
// --tui is included everywhere so unsupported commands can reject it
// explicitly instead of failing with "flag provided but not defined".
func OutputFlags() []cli.Flag {
	return []cli.Flag{FormatFlag, TUIFlag}
}
