package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/raymyers/tacky-cc/pkg/compiler"
	"github.com/raymyers/tacky-cc/pkg/diag"
)

var version = "0.1.0"

// ErrStageConflict is returned when more than one stop flag is given.
var ErrStageConflict = errors.New("at most one of --lex, --parse, --validate, --tacky, --codegen, -S may be given")

// options holds the parsed command line.
type options struct {
	stops   map[compiler.Stage]*bool
	debug   bool
	verbose bool
}

// stop returns the stage selected by the flags, defaulting to emission.
func (o *options) stop() (compiler.Stage, error) {
	var chosen compiler.Stage
	for _, s := range compiler.Stages() {
		if !*o.stops[s] {
			continue
		}
		if chosen != 0 {
			return 0, ErrStageConflict
		}
		chosen = s
	}
	if chosen == 0 {
		chosen = compiler.Emit
	}
	return chosen, nil
}

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// singleDashFlags lists the long flags also accepted with one dash
var singleDashFlags = []string{"lex", "parse", "validate", "tacky", "codegen", "debug", "verbose"}

// normalizeFlags converts single-dash long flags like -tacky to --tacky
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		result[i] = arg
		for _, name := range singleDashFlags {
			if arg == "-"+name {
				result[i] = "--" + name
				break
			}
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &options{stops: make(map[compiler.Stage]*bool)}
	rootCmd := &cobra.Command{
		Use:   "tacky-cc [file]",
		Short: "tacky-cc compiles a C subset to TACKY and a thin assembly IR",
		Long: `tacky-cc is a compiler for a C subset. It parses, validates and
lowers a translation unit to the TACKY three-address IR, then to a thin
assembly IR. Each stage can be stopped after and dumped.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			stop, err := opts.stop()
			if err != nil {
				fmt.Fprintf(errOut, "tacky-cc: %v\n", err)
				return err
			}
			return compileFile(args[0], stop, opts, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.Flags()
	stopFlag := func(stage compiler.Stage, name, short, usage string) {
		opts.stops[stage] = flags.BoolP(name, short, false, usage)
	}
	stopFlag(compiler.Lex, "lex", "", "Stop after lexing")
	stopFlag(compiler.Parse, "parse", "", "Stop after parsing")
	stopFlag(compiler.Validate, "validate", "", "Stop after semantic analysis")
	stopFlag(compiler.Tacky, "tacky", "", "Stop after lowering to TACKY")
	stopFlag(compiler.Codegen, "codegen", "", "Stop after assembly generation")
	stopFlag(compiler.Emit, "emit", "S", "Write the assembly IR to a .s file")
	flags.BoolVar(&opts.debug, "debug", false, "Print the last stage's artifact and write it next to the input")
	flags.BoolVar(&opts.verbose, "verbose", false, "Log stage progress")

	return rootCmd
}

// compileFile runs the pipeline on filename and writes the requested
// artifacts.
func compileFile(filename string, stop compiler.Stage, opts *options, out, errOut io.Writer) error {
	source, err := os.ReadFile(filename)
	if err != nil {
		err = errors.Wrapf(err, "read %s", filename)
		fmt.Fprintf(errOut, "tacky-cc: %v\n", err)
		return err
	}

	copts := compiler.Options{Stop: stop, Debug: opts.debug || stop == compiler.Emit}
	if opts.verbose {
		fmt.Fprintf(errOut, "tacky-cc: compiling %s\n", filename)
		copts.OnStage = func(s compiler.Stage) {
			fmt.Fprintf(errOut, "tacky-cc: %s done\n", s)
		}
	}

	res, err := compiler.Compile(source, copts)
	if err != nil {
		reportError(errOut, filename, err)
		return err
	}

	if opts.debug {
		fmt.Fprint(out, res.Dump)
	}
	if opts.debug || stop == compiler.Emit {
		path := artifactFilename(filename, stop)
		if err := writeArtifact(path, res.Dump); err != nil {
			fmt.Fprintf(errOut, "tacky-cc: %v\n", err)
			return err
		}
		if opts.verbose {
			fmt.Fprintf(errOut, "tacky-cc: wrote %s\n", path)
		}
	}
	return nil
}

// reportError prints a diagnostic prefixed with the file name. Internal
// errors also carry their stack trace in verbose form.
func reportError(errOut io.Writer, filename string, err error) {
	var d *diag.Error
	if errors.As(err, &d) && d.Kind == diag.KindInternal {
		fmt.Fprintf(errOut, "tacky-cc: %s: %+v\n", filename, err)
		return
	}
	fmt.Fprintf(errOut, "tacky-cc: %s:%v\n", filename, err)
}
