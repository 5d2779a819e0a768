package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/teris-io/cli"
	"its-hmny.dev/nand2tetris/pkg/driver"
)

var Description = strings.ReplaceAll(`
The Hack Assembler takes assembly language code written in the Hack assembly language
and translates it into machine code that can be executed by the Hack computer. The process
involves parsing the assembly code, resolving symbols, and generating machine code.
`, "\n", " ")

var HackAssembler = cli.New(Description).
	WithArg(cli.NewArg("input", "The assembler (.asm) file or directory to be compiled")).
	WithArg(cli.NewArg("output", "The compiled binary output (.hack)")).
	WithOption(cli.NewOption("verbose", "Logs every discovered input file to stderr").
		WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 2 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}
	_, verbose := options["verbose"]

	// Discovers every '.asm' translation unit among the given file/directory.
	TUs, err := driver.Discover(args[:1], ".asm")
	if err != nil {
		fmt.Printf("ERROR: %+v\n", errors.Wrap(err, "input discovery failed"))
		return -1
	}
	if len(TUs) < 1 {
		fmt.Printf("ERROR: no '.asm' files found among the given inputs\n")
		return -1
	}
	driver.LogDiscovered(verbose, "hack_assembler", TUs)

	output, err := os.Create(args[1])
	if err != nil {
		fmt.Printf("ERROR: %+v\n", errors.Wrap(err, "unable to open output file"))
		return -1
	}
	defer output.Close()

	// Parses every translation unit and concatenates them into a single 'asm.Program'.
	asmProgram, err := driver.ParseAsmFiles(TUs)
	if err != nil {
		fmt.Printf("ERROR: %+v\n", errors.Wrap(err, "parsing pass failed"))
		return -1
	}

	// Lowers the asm.Program to an in-memory/IR representation of its Hack counterpart 'hack.Program'.
	hackProgram, table, err := driver.AssembleAsm(asmProgram)
	if err != nil {
		fmt.Printf("ERROR: %+v\n", errors.Wrap(err, "lowering pass failed"))
		return -1
	}

	// Iterates over each instruction and spits out the relative textual representation.
	compiled, err := driver.GenerateHack(hackProgram, table)
	if err != nil {
		fmt.Printf("ERROR: %+v\n", errors.Wrap(err, "codegen pass failed"))
		return -1
	}

	for _, comp := range compiled {
		line := fmt.Sprintf("%s\n", comp)
		output.Write([]byte(line))
	}

	return 0
}

func main() { os.Exit(HackAssembler.Run(os.Args, os.Stdout)) }
