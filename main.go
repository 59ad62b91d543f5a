package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mcncl/toonvert/internal/config"
	"github.com/mcncl/toonvert/internal/convert"
	"github.com/mcncl/toonvert/internal/errors"
	"github.com/mcncl/toonvert/internal/toon"
)

// CLI defines the command-line interface
var CLI struct {
	Config  string           `help:"Path to config file." type:"path"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`

	Encode EncodeCmd `cmd:"" help:"Convert a JSON file to TOON."`
	Decode DecodeCmd `cmd:"" help:"Convert a TOON file to JSON."`
	Read   ReadCmd   `cmd:"" help:"Read a TOON file, optionally extracting a field."`
	Get    GetCmd    `cmd:"" help:"Get a specific field value (for shell scripts)."`
}

// Context holds the runtime context passed to command Run methods
type Context struct {
	Config *config.Config
	Stdout io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

// EncodeCmd converts JSON to TOON.
type EncodeCmd struct {
	Input     string `arg:"" help:"JSON file to convert ('-' reads stdin)."`
	Output    string `arg:"" optional:"" help:"Write the TOON output here instead of printing it."`
	Indent    int    `help:"Spaces per indentation level (overrides config)." placeholder:"N"`
	Delimiter string `help:"Delimiter for inline arrays and tabular rows (overrides config)."`
}

func (c *EncodeCmd) Run(app *Context) error {
	opts := encodeOptions(app.Config)
	if c.Indent > 0 {
		opts.Indent = c.Indent
	}
	if c.Delimiter != "" {
		opts.Delimiter = c.Delimiter
	}
	conv := convert.New(opts, decodeOptions(app.Config, true))
	result, err := conv.EncodeFile(c.Input, c.Output)
	if err != nil {
		return err
	}
	fmt.Fprintln(app.Stdout, result)
	return nil
}

// DecodeCmd converts TOON to pretty-printed JSON.
type DecodeCmd struct {
	Input  string `arg:"" help:"TOON file to convert ('-' reads stdin)."`
	Output string `arg:"" optional:"" help:"Write the JSON output here instead of printing it."`
	Strict bool   `help:"Strict TOON validation." default:"true" negatable:""`
}

func (c *DecodeCmd) Run(app *Context) error {
	conv := convert.New(encodeOptions(app.Config), decodeOptions(app.Config, c.Strict))
	result, err := conv.DecodeFile(c.Input, c.Output)
	if err != nil {
		return err
	}
	fmt.Fprintln(app.Stdout, result)
	return nil
}

// ReadCmd prints a TOON document as JSON, or a single field from it.
type ReadCmd struct {
	Input  string `arg:"" help:"TOON file to read ('-' reads stdin)."`
	Field  string `arg:"" optional:"" help:"Dotted path of a field to extract, e.g. style.tone."`
	Strict bool   `help:"Strict TOON validation." default:"true" negatable:""`
}

func (c *ReadCmd) Run(app *Context) error {
	conv := convert.New(encodeOptions(app.Config), decodeOptions(app.Config, c.Strict))
	result, err := conv.ReadFile(c.Input, c.Field)
	if err != nil {
		return err
	}
	fmt.Fprintln(app.Stdout, result)
	return nil
}

// GetCmd is ReadCmd with a mandatory field argument.
type GetCmd struct {
	Input  string `arg:"" help:"TOON file to read ('-' reads stdin)."`
	Field  string `arg:"" help:"Dotted path of the field to print."`
	Strict bool   `help:"Strict TOON validation." default:"true" negatable:""`
}

func (c *GetCmd) Run(app *Context) error {
	conv := convert.New(encodeOptions(app.Config), decodeOptions(app.Config, c.Strict))
	result, err := conv.GetField(c.Input, c.Field)
	if err != nil {
		return err
	}
	fmt.Fprintln(app.Stdout, result)
	return nil
}

func main() {
	// Parse CLI arguments with Kong
	parser := kong.Must(&CLI,
		kong.Name("toonvert"),
		kong.Description("Convert between JSON and TOON, and extract fields from TOON documents"),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("toonvert version %s", Version)},
	)

	ctx, err := parser.Parse(os.Args[1:])
	// On bad arguments this prints the usage text and exits with status 1
	parser.FatalIfErrorf(err)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	setupColor(cfg)

	err = ctx.Run(&Context{Config: cfg, Stdout: os.Stdout})
	if err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", color.RedString("%s", errors.UserFriendlyError(err)))
		os.Exit(1)
	}
}

// loadConfig loads the explicit --config file, or the nearest .toonvert.yml
// found walking up from the working directory, or built-in defaults.
func loadConfig() (*config.Config, error) {
	if CLI.Config != "" {
		return config.LoadConfig(CLI.Config)
	}
	if path := config.FindConfigFile(); path != "" {
		return config.LoadConfig(path)
	}
	return config.NewConfig(), nil
}

// setupColor applies the config's color policy. Colors only ever touch
// stderr, so piped document output stays clean either way.
func setupColor(cfg *config.Config) {
	switch cfg.Output.Color {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default: // auto
		color.NoColor = os.Getenv("NO_COLOR") != "" || !isatty.IsTerminal(os.Stderr.Fd())
	}
}

func encodeOptions(cfg *config.Config) toon.EncodeOptions {
	return toon.EncodeOptions{
		Indent:    cfg.Encode.Indent,
		Delimiter: cfg.Encode.Delimiter,
	}
}

func decodeOptions(cfg *config.Config, strict bool) toon.DecodeOptions {
	return toon.DecodeOptions{
		Strict:    cfg.Decode.Strict && strict,
		Delimiter: cfg.Encode.Delimiter,
	}
}
