package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"github.com/pkg/errors"
	"its-hmny.dev/nand2tetris/pkg/asm"
	"its-hmny.dev/nand2tetris/pkg/driver"
	"its-hmny.dev/nand2tetris/pkg/vm"
)

// buildCmd chains every pass the inputs need, picking the starting stage from the
// extension of the files found (Jack, VM or Asm) and running through to '.hack' binary
// text in one shot, per Driver (C6). The bootstrap prologue is prepended exactly once
// when the pipeline starts from Jack or VM sources, since a standalone Hack program needs
// 'SP' initialized and 'Sys.init' called before anything else runs.
type buildCmd struct {
	output    string
	bootstrap bool
	verbose   bool
}

func (*buildCmd) Name() string     { return "build" }
func (*buildCmd) Synopsis() string { return "Run the full Jack/VM/Asm -> Hack pipeline" }
func (*buildCmd) Usage() string {
	return "build -output out.hack <file|dir>...\n" +
		"  Runs every pass the given inputs need (detected from their extension) and\n" +
		"  produces a single Hack binary text file.\n"
}
func (c *buildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "output", "", "The compiled binary output (.hack)")
	f.BoolVar(&c.bootstrap, "bootstrap", true, "Includes bootstrap code when starting from Jack or VM sources")
	f.BoolVar(&c.verbose, "verbose", false, "Logs every discovered input file to stderr")
}

func (c *buildCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.output == "" {
		fmt.Fprintf(os.Stderr, "ERROR: -output is required\n")
		return subcommands.ExitUsageError
	}
	inputs := f.Args()

	asmProgram, err := c.buildAsm(inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", err)
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

// buildAsm detects which suffix of the pipeline the given inputs need by looking for
// '.jack', then '.vm', then '.asm' files among them (in that order, since a Jack input
// implies every earlier stage already ran) and runs every pass up to Asm in-memory.
func (c *buildCmd) buildAsm(inputs []string) (asm.Program, error) {
	// 'driver.Discover' keeps explicitly named files whatever their extension, so the
	// result is narrowed here to the extension of the stage being probed.
	discover := func(ext string) ([]string, error) {
		TUs, err := driver.Discover(inputs, ext)
		matching := []string{}
		for _, tu := range TUs {
			if filepath.Ext(tu) == ext {
				matching = append(matching, tu)
			}
		}
		return matching, err
	}

	if TUs, err := discover(".jack"); err != nil {
		return nil, errors.Wrap(err, "input discovery failed")
	} else if len(TUs) > 0 {
		driver.LogDiscovered(c.verbose, "n2t build", TUs)
		program, err := driver.ParseJackFiles(TUs)
		if err != nil {
			return nil, errors.Wrap(err, "parsing pass failed")
		}
		vmProgram, err := driver.CompileJack(program)
		if err != nil {
			return nil, errors.Wrap(err, "compile pass failed")
		}
		return c.buildAsmFromVm(vmProgram)
	}

	if TUs, err := discover(".vm"); err != nil {
		return nil, errors.Wrap(err, "input discovery failed")
	} else if len(TUs) > 0 {
		driver.LogDiscovered(c.verbose, "n2t build", TUs)
		vmProgram, err := driver.ParseVmFiles(TUs)
		if err != nil {
			return nil, errors.Wrap(err, "parsing pass failed")
		}
		return c.buildAsmFromVm(vmProgram)
	}

	TUs, err := discover(".asm")
	if err != nil {
		return nil, errors.Wrap(err, "input discovery failed")
	}
	if len(TUs) < 1 {
		return nil, fmt.Errorf("no '.jack', '.vm' or '.asm' files found among the given inputs")
	}
	driver.LogDiscovered(c.verbose, "n2t build", TUs)
	asmProgram, err := driver.ParseAsmFiles(TUs)
	if err != nil {
		return nil, errors.Wrap(err, "parsing pass failed")
	}
	return asmProgram, nil
}

func (c *buildCmd) buildAsmFromVm(program vm.Program) (asm.Program, error) {
	asmProgram, err := driver.TranslateVm(program, c.bootstrap)
	if err != nil {
		return nil, errors.Wrap(err, "translate pass failed")
	}
	return asmProgram, nil
}
