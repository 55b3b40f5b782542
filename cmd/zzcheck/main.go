// Command zzcheck runs the lifetime and pointer-safety analyzer over a
// flattened zz module.
//
// Usage:
//
//	zzcheck [options] <module.json>
//	cat module.json | zzcheck [options]
//
// Options:
//
//	--config <file>     Use specific config file
//	--no-config         Ignore config files
//	--strict            Promote warnings to errors for the exit code
//	--format text|json  Diagnostic output format (default: text)
//	--no-snippets       Omit source line snippets from text output
//	--source <file>     Source file to pull snippet lines from
//	--ignore <stem>     Suppress diagnostics whose message starts with stem
//	                    (may be repeated)
//
// zzcheck reads a module.json produced by a front end (lexer, parser,
// name resolver, module flattener) that this repository does not itself
// implement: the analyzer's only input is an already-resolved AST.
// zzcheck exits 0 if the module is clean and 9 if any diagnostic counts
// as an error.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/fadedbee/zz/internal/config"
	"github.com/fadedbee/zz/internal/srcview"
	"github.com/fadedbee/zz/internal/wire"
	"github.com/fadedbee/zz/pkg/api"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// exitLifetimeError is the exit code other compiler stages key off to
// tell a lifetime violation apart from an I/O or usage failure.
const exitLifetimeError = 9

func main() {
	app := &cli.App{
		Name:      "zzcheck",
		Usage:     "lifetime and pointer-safety analyzer for flattened zz modules",
		Version:   fmt.Sprintf("%s (%s)", version, commit),
		ArgsUsage: "[module.json]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "use specific config `file`"},
			&cli.BoolFlag{Name: "no-config", Usage: "ignore config files"},
			&cli.BoolFlag{Name: "strict", Usage: "promote warnings to errors for the exit code"},
			&cli.StringFlag{Name: "format", Usage: "diagnostic output format: text or json"},
			&cli.BoolFlag{Name: "no-snippets", Usage: "omit source line snippets from text output"},
			&cli.StringFlag{Name: "source", Usage: "source `file` to pull snippet lines from"},
			&cli.StringSliceFlag{Name: "ignore", Usage: "suppress diagnostics whose message starts with `stem`"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log := logrus.WithField("component", "cmd/zzcheck")

	data, err := readModuleInput(c)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	module, err := wire.DecodeModule(data)
	if err != nil {
		return fmt.Errorf("decoding module: %w", err)
	}

	opts, err := resolveOptions(c)
	if err != nil {
		return err
	}
	log.Debugf("checking module %s with strict=%v format=%s", module.Name, opts.Strict, opts.OutputFormat)

	result := api.CheckWithOptions(module, api.CheckOptions{
		Strict:         opts.Strict,
		IgnoreMessages: opts.IgnoreMessages,
	})

	src := ""
	if opts.SourceSnippets {
		if sourcePath := c.String("source"); sourcePath != "" {
			b, err := os.ReadFile(sourcePath)
			if err != nil {
				return fmt.Errorf("reading source: %w", err)
			}
			src = string(b)
		}
	}

	if err := printResult(os.Stdout, result, opts.OutputFormat, src); err != nil {
		return err
	}

	if result.HasErrors() {
		os.Exit(exitLifetimeError)
	}
	return nil
}

func readModuleInput(c *cli.Context) ([]byte, error) {
	if c.Args().Len() > 0 {
		return os.ReadFile(c.Args().Get(0))
	}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		cli.ShowAppHelp(c)
		return nil, fmt.Errorf("no input module specified")
	}
	return io.ReadAll(os.Stdin)
}

func resolveOptions(c *cli.Context) (config.Options, error) {
	var cfg *config.Config
	if !c.Bool("no-config") {
		var err error
		if configFile := c.String("config"); configFile != "" {
			cfg, err = config.LoadFile(configFile)
			if err != nil {
				return config.Options{}, fmt.Errorf("loading config file %s: %w", configFile, err)
			}
		} else {
			startDir, _ := os.Getwd()
			if c.Args().Len() > 0 {
				startDir = filepath.Dir(c.Args().Get(0))
			}
			cfg, _, err = config.Load(startDir)
			if err != nil {
				return config.Options{}, fmt.Errorf("loading config: %w", err)
			}
		}
	}

	cliOpts := config.MergeOptions{}
	if c.Bool("strict") {
		v := true
		cliOpts.Strict = &v
	}
	if format := c.String("format"); format != "" {
		cliOpts.OutputFormat = &format
	}
	if c.Bool("no-snippets") {
		v := false
		cliOpts.SourceSnippets = &v
	}
	if stems := c.StringSlice("ignore"); len(stems) > 0 {
		cliOpts.IgnoreMessages = stems
	}

	return cfg.Merge(cliOpts), nil
}

func printResult(w io.Writer, result api.CheckResult, format, src string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	var idx *srcview.Index
	if src != "" {
		idx = srcview.NewIndex(src)
	}
	for _, d := range result.Diagnostics {
		fmt.Fprintf(w, "%s: %s\n", d.Severity, d.Message)
		for _, s := range d.Spans {
			fmt.Fprintf(w, "  --> %s:%d:%d: %s\n", s.File, s.Line, s.Column, s.Label)
			if line := idx.Line(s.Line); line != "" {
				fmt.Fprintf(w, "   | %s\n", line)
			}
		}
	}
	return nil
}
