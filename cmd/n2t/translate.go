package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/pkg/errors"
	"its-hmny.dev/nand2tetris/pkg/driver"
)

// translateCmd runs the VM -> Asm pass (C4) on its own, mirroring the standalone
// 'vm_translator' binary but accepting a directory of '.vm' files as well.
type translateCmd struct {
	output    string
	bootstrap bool
	verbose   bool
}

func (*translateCmd) Name() string     { return "translate" }
func (*translateCmd) Synopsis() string { return "Translate VM modules into Hack assembly" }
func (*translateCmd) Usage() string {
	return "translate -output out.asm <file|dir>...\n  Translate VM bytecode files (or a directory of them) into Hack assembly.\n"
}
func (c *translateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "output", "", "The compiled assembly output (.asm)")
	f.BoolVar(&c.bootstrap, "bootstrap", false, "Includes bootstrap code in the final .asm file")
	f.BoolVar(&c.verbose, "verbose", false, "Logs every discovered input file to stderr")
}

func (c *translateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.output == "" {
		fmt.Fprintf(os.Stderr, "ERROR: -output is required\n")
		return subcommands.ExitUsageError
	}

	TUs, err := driver.Discover(f.Args(), ".vm")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", errors.Wrap(err, "input discovery failed"))
		return subcommands.ExitFailure
	}
	if len(TUs) < 1 {
		fmt.Fprintf(os.Stderr, "ERROR: no '.vm' files found among the given inputs\n")
		return subcommands.ExitUsageError
	}
	driver.LogDiscovered(c.verbose, "n2t translate", TUs)

	program, err := driver.ParseVmFiles(TUs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", errors.Wrap(err, "parsing pass failed"))
		return subcommands.ExitFailure
	}

	asmProgram, err := driver.TranslateVm(program, c.bootstrap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", errors.Wrap(err, "translate pass failed"))
		return subcommands.ExitFailure
	}

	compiled, err := driver.GenerateAsm(asmProgram)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", errors.Wrap(err, "codegen pass failed"))
		return subcommands.ExitFailure
	}

	output, err := os.Create(c.output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", errors.Wrap(err, "unable to open output file"))
		return subcommands.ExitFailure
	}
	defer output.Close()
	for _, line := range compiled {
		fmt.Fprintf(output, "%s\n", line)
	}

	return subcommands.ExitSuccess
}
