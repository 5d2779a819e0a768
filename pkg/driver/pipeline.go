package driver

import (
	"fmt"

	"its-hmny.dev/nand2tetris/pkg/asm"
	"its-hmny.dev/nand2tetris/pkg/hack"
	"its-hmny.dev/nand2tetris/pkg/jack"
	"its-hmny.dev/nand2tetris/pkg/vm"
)

// CompileJack lowers a parsed 'jack.Program' into its 'vm.Program' counterpart. This is
// pass one of the Jack front-end: class/subroutine bodies become stack-machine bytecode.
func CompileJack(program jack.Program) (vm.Program, error) {
	lowerer := jack.NewLowerer(program)
	vmProgram, err := lowerer.Lowerer()
	if err != nil {
		return nil, fmt.Errorf("jack lowering pass failed: %w", err)
	}
	return vmProgram, nil
}

// TranslateVm lowers a 'vm.Program' into its 'asm.Program' counterpart. When 'bootstrap'
// is set the bootstrap prologue (SP = 256, call Sys.init) is prepended exactly once, as
// required for a multi-file program that is meant to run standalone on the Hack platform.
func TranslateVm(program vm.Program, bootstrap bool) (asm.Program, error) {
	var lowerer vm.Lowerer
	if bootstrap {
		lowerer = vm.NewLowererWithBootstrap(program)
	} else {
		lowerer = vm.NewLowerer(program)
	}

	asmProgram, err := lowerer.Lowerer()
	if err != nil {
		return nil, fmt.Errorf("vm lowering pass failed: %w", err)
	}
	return asmProgram, nil
}

// AssembleAsm lowers an 'asm.Program' into its 'hack.Program' counterpart plus the symbol
// table resolved along the way (labels, predefined symbols and newly allocated variables).
func AssembleAsm(program asm.Program) (hack.Program, hack.SymbolTable, error) {
	lowerer := asm.NewLowerer(program)
	hackProgram, table, err := lowerer.Lower()
	if err != nil {
		return nil, nil, fmt.Errorf("asm lowering pass failed: %w", err)
	}
	return hackProgram, table, nil
}

// GenerateVm renders a 'vm.Program' back to its textual form, one VM module per class.
func GenerateVm(program vm.Program) (map[string][]string, error) {
	codegen := vm.NewCodeGenerator(program)
	generated, err := codegen.Generate()
	if err != nil {
		return nil, fmt.Errorf("vm codegen pass failed: %w", err)
	}
	return generated, nil
}

// GenerateAsm renders an 'asm.Program' back to its textual assembly form.
func GenerateAsm(program asm.Program) ([]string, error) {
	codegen := asm.NewCodeGenerator(program)
	generated, err := codegen.Generate()
	if err != nil {
		return nil, fmt.Errorf("asm codegen pass failed: %w", err)
	}
	return generated, nil
}

// GenerateHack renders a 'hack.Program' to its final 16-bit binary text form.
func GenerateHack(program hack.Program, table hack.SymbolTable) ([]string, error) {
	codegen := hack.NewCodeGenerator(program, table)
	generated, err := codegen.Generate()
	if err != nil {
		return nil, fmt.Errorf("hack codegen pass failed: %w", err)
	}
	return generated, nil
}
