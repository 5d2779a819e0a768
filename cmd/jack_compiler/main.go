package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"its-hmny.dev/nand2tetris/pkg/driver"

	"github.com/pkg/errors"
	"github.com/teris-io/cli"
)

var Description = strings.ReplaceAll(`
The Jack Compiler compiles programs (composed of multiple classes/files) written in
the Jack language into VM modules that can be further elaborated. The Jack language
is a higher-level OOP language tailored for use with the Hack computer architecture.
`, "\n", " ")

var JackCompiler = cli.New(Description).
	// 'AsOptional()' allows to have more than one input .jack file
	WithArg(cli.NewArg("inputs", "The source (.jack) files or directories to be compiled").
		AsOptional().WithType(cli.TypeString)).
	WithOption(cli.NewOption("verbose", "Logs every discovered input file to stderr").
		WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}
	_, verbose := options["verbose"]

	// Discovers every '.jack' translation unit among the given files/directories (the
	// directory case is walked non-recursively, one flat folder per Jack project).
	TUs, err := driver.Discover(args, ".jack")
	if err != nil {
		fmt.Printf("ERROR: %+v\n", errors.Wrap(err, "input discovery failed"))
		return -1
	}
	if len(TUs) < 1 {
		fmt.Printf("ERROR: no '.jack' files found among the given inputs\n")
		return -1
	}
	driver.LogDiscovered(verbose, "jack_compiler", TUs)

	// Parses every translation unit into the in-memory 'jack.Program' (a class per file).
	program, err := driver.ParseJackFiles(TUs)
	if err != nil {
		fmt.Printf("ERROR: %+v\n", errors.Wrap(err, "parsing pass failed"))
		return -1
	}

	// Lowers the jack.Program to an in-memory/IR representation of its Vm counterpart 'vm.Program'.
	vmProgram, err := driver.CompileJack(program)
	if err != nil {
		fmt.Printf("ERROR: %+v\n", errors.Wrap(err, "lowering pass failed"))
		return -1
	}

	// Iterates over each instruction and spits out the relative textual representation.
	compiled, err := driver.GenerateVm(vmProgram)
	if err != nil {
		fmt.Printf("ERROR: %+v\n", errors.Wrap(err, "codegen pass failed"))
		return -1
	}

	for _, tu := range TUs {
		name := driver.ModuleName(tu)
		module, ok := compiled[name]
		if !ok {
			fmt.Printf("ERROR: Unable to compile module for class file '%s'\n", tu)
			return -1
		}

		output, err := os.Create(filepath.Join(filepath.Dir(tu), name+".vm"))
		if err != nil {
			fmt.Printf("ERROR: %+v\n", errors.Wrap(err, "unable to open output file"))
			return -1
		}

		for _, ops := range module {
			line := fmt.Sprintf("%s\n", ops)
			output.Write([]byte(line))
		}
		output.Close()
	}

	return 0
}

func main() { os.Exit(JackCompiler.Run(os.Args, os.Stdout)) }
