package driver

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"its-hmny.dev/nand2tetris/pkg/asm"
	"its-hmny.dev/nand2tetris/pkg/jack"
	"its-hmny.dev/nand2tetris/pkg/vm"
)

// ModuleName strips the directory and extension from a translation unit's path, the same
// scheme every 'cmd/*' binary uses to key its in-memory 'Program' maps.
func ModuleName(tu string) string {
	filename, extension := path.Base(tu), path.Ext(tu)
	return strings.TrimSuffix(filename, extension)
}

// ParseJackFiles reads and parses every '.jack' translation unit in 'TUs' into a
// 'jack.Program', keyed by class name.
func ParseJackFiles(TUs []string) (jack.Program, error) {
	program := jack.Program{}

	for _, tu := range TUs {
		content, err := os.ReadFile(tu)
		if err != nil {
			return nil, fmt.Errorf("unable to open input file '%s': %w", tu, err)
		}

		parser := jack.NewParser(bytes.NewReader(content))
		class, err := parser.Parse()
		if err != nil {
			return nil, fmt.Errorf("unable to parse '%s': %w", tu, err)
		}
		program[ModuleName(tu)] = class
	}

	return program, nil
}

// ParseVmFiles reads and parses every '.vm' translation unit in 'TUs' into a 'vm.Program',
// keyed by file basename (the convention 'cmd/vm_translator' already follows).
func ParseVmFiles(TUs []string) (vm.Program, error) {
	program := vm.Program{}

	for _, tu := range TUs {
		content, err := os.ReadFile(tu)
		if err != nil {
			return nil, fmt.Errorf("unable to open input file '%s': %w", tu, err)
		}

		parser := vm.NewParser(bytes.NewReader(content))
		module, err := parser.Parse()
		if err != nil {
			return nil, fmt.Errorf("unable to parse '%s': %w", tu, err)
		}
		program[filepath.Base(tu)] = module
	}

	return program, nil
}

// ParseAsmFiles reads and parses every '.asm' translation unit in 'TUs' into a single
// 'asm.Program'. Unlike Jack and VM modules, Asm statements carry no module boundary of
// their own, so every file's statements are concatenated into one flat program.
func ParseAsmFiles(TUs []string) (asm.Program, error) {
	program := asm.Program{}

	for _, tu := range TUs {
		content, err := os.ReadFile(tu)
		if err != nil {
			return nil, fmt.Errorf("unable to open input file '%s': %w", tu, err)
		}

		parser := asm.NewParser(bytes.NewReader(content))
		parsed, err := parser.Parse()
		if err != nil {
			return nil, fmt.Errorf("unable to parse '%s': %w", tu, err)
		}
		program = append(program, parsed...)
	}

	return program, nil
}
