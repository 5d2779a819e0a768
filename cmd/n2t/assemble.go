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

// assembleCmd runs the Asm -> Hack pass (C5) on its own, mirroring the standalone
// 'hack_assembler' binary but accepting a directory of '.asm' files as well.
type assembleCmd struct {
	output  string
	verbose bool
}

func (*assembleCmd) Name() string     { return "assemble" }
func (*assembleCmd) Synopsis() string { return "Assemble Hack assembly into machine code" }
func (*assembleCmd) Usage() string {
	return "assemble -output out.hack <file|dir>...\n  Assemble Hack assembly files (or a directory of them) into '.hack' binary text.\n"
}
func (c *assembleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "output", "", "The compiled binary output (.hack)")
	f.BoolVar(&c.verbose, "verbose", false, "Logs every discovered input file to stderr")
}

func (c *assembleCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.output == "" {
		fmt.Fprintf(os.Stderr, "ERROR: -output is required\n")
		return subcommands.ExitUsageError
	}

	TUs, err := driver.Discover(f.Args(), ".asm")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", errors.Wrap(err, "input discovery failed"))
		return subcommands.ExitFailure
	}
	if len(TUs) < 1 {
		fmt.Fprintf(os.Stderr, "ERROR: no '.asm' files found among the given inputs\n")
		return subcommands.ExitUsageError
	}
	driver.LogDiscovered(c.verbose, "n2t assemble", TUs)

	asmProgram, err := driver.ParseAsmFiles(TUs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", errors.Wrap(err, "parsing pass failed"))
		return subcommands.ExitFailure
	}

	hackProgram, table, err := driver.AssembleAsm(asmProgram)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", errors.Wrap(err, "assemble pass failed"))
		return subcommands.ExitFailure
	}

	compiled, err := driver.GenerateHack(hackProgram, table)
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
