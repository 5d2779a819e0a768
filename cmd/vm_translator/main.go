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
The VM Translator translates programs (composed of multiple modules/files) written in
the VM language into Hack assembly code that can be further elaborated. The VM language
is a higher-level (bytecode'like) language tailored for use with the Hack computer arch.
`, "\n", " ")

var VmTranslator = cli.New(Description).
	// 'AsOptional()' allows to have more than one input .vm file
	WithArg(cli.NewArg("inputs", "The bytecode (.vm) files or directories to be compiled").
		AsOptional().WithType(cli.TypeString)).
	WithOption(cli.NewOption("output", "The compiled binary output (.asm)").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("bootstrap", "Includes bootstrap code in the final .asm file").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("verbose", "Logs every discovered input file to stderr").
		WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 || options["output"] == "" {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}
	_, verbose := options["verbose"]

	output, err := os.Create(options["output"])
	if err != nil {
		fmt.Printf("ERROR: %+v\n", errors.Wrap(err, "unable to open output file"))
		return -1
	}
	defer output.Close()

	// Discovers every '.vm' translation unit among the given files/directories.
	TUs, err := driver.Discover(args, ".vm")
	if err != nil {
		fmt.Printf("ERROR: %+v\n", errors.Wrap(err, "input discovery failed"))
		return -1
	}
	if len(TUs) < 1 {
		fmt.Printf("ERROR: no '.vm' files found among the given inputs\n")
		return -1
	}
	driver.LogDiscovered(verbose, "vm_translator", TUs)

	// Parses every translation unit into the in-memory 'vm.Program' that is lowered and
	// code-generated as a single monolithic unit.
	program, err := driver.ParseVmFiles(TUs)
	if err != nil {
		fmt.Printf("ERROR: %+v\n", errors.Wrap(err, "parsing pass failed"))
		return -1
	}

	// When the user opts in to include the 'bootstrap' code as the first instructions of
	// the translated program, the Lowerer itself takes care of setting 'SP' to 256 and
	// calling 'Sys.init'.
	_, bootstrap := options["bootstrap"]

	// Lowers the vm.Program to an in-memory/IR representation of its Asm counterpart 'asm.Program'.
	asmProgram, err := driver.TranslateVm(program, bootstrap)
	if err != nil {
		fmt.Printf("ERROR: %+v\n", errors.Wrap(err, "lowering pass failed"))
		return -1
	}

	// Iterates over each instruction and spits out the relative textual representation.
	compiled, err := driver.GenerateAsm(asmProgram)
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

func main() { os.Exit(VmTranslator.Run(os.Args, os.Stdout)) }
