package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"path/filepath"

	"github.com/google/subcommands"
	"github.com/pkg/errors"
	"its-hmny.dev/nand2tetris/pkg/driver"
)

// compileCmd runs the Jack -> VM pass (C1/C2/C3) on its own, writing one '.vm' file per
// class next to its source, exactly like the standalone 'jack_compiler' binary.
type compileCmd struct{ verbose bool }

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Compile Jack sources into VM modules" }
func (*compileCmd) Usage() string {
	return "compile <file|dir>...\n  Compile Jack class files (or a directory of them) into '.vm' modules.\n"
}
func (c *compileCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.verbose, "verbose", false, "Logs every discovered input file to stderr")
}

func (c *compileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	TUs, err := driver.Discover(f.Args(), ".jack")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", errors.Wrap(err, "input discovery failed"))
		return subcommands.ExitFailure
	}
	if len(TUs) < 1 {
		fmt.Fprintf(os.Stderr, "ERROR: no '.jack' files found among the given inputs\n")
		return subcommands.ExitUsageError
	}
	driver.LogDiscovered(c.verbose, "n2t compile", TUs)

	program, err := driver.ParseJackFiles(TUs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", errors.Wrap(err, "parsing pass failed"))
		return subcommands.ExitFailure
	}

	vmProgram, err := driver.CompileJack(program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", errors.Wrap(err, "compile pass failed"))
		return subcommands.ExitFailure
	}

	compiled, err := driver.GenerateVm(vmProgram)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", errors.Wrap(err, "codegen pass failed"))
		return subcommands.ExitFailure
	}

	for _, tu := range TUs {
		name := driver.ModuleName(tu)
		module, ok := compiled[name]
		if !ok {
			fmt.Fprintf(os.Stderr, "ERROR: no compiled module for class '%s'\n", name)
			return subcommands.ExitFailure
		}

		output, err := os.Create(filepath.Join(filepath.Dir(tu), name+".vm"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %+v\n", errors.Wrap(err, "unable to open output file"))
			return subcommands.ExitFailure
		}
		for _, line := range module {
			fmt.Fprintf(output, "%s\n", line)
		}
		output.Close()
	}

	return subcommands.ExitSuccess
}
