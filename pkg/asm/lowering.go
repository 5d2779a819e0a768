package asm

import (
	"fmt"
	"strconv"

	"its-hmny.dev/nand2tetris/pkg/hack"
)

// ----------------------------------------------------------------------------
// Asm Lowerer

// The Lowerer takes an 'asm.Program' and produces its 'hack.Program' counterpart, plus
// the 'hack.SymbolTable' mapping every label declaration to the ROM address it resolves to.
//
// Labels carry no instruction of their own: each 'asm.LabelDecl' is recorded against the
// instruction count accumulated so far (its would-be ROM address) and then dropped, since
// by the time a program reaches 'hack.Program' it is a flat, label-free instruction stream.
type Lowerer struct{ program Program }

// Initializes and returns to the caller a brand new 'Lowerer' struct.
// Requires the argument Program to be not nil nor empty.
func NewLowerer(p Program) Lowerer {
	return Lowerer{program: p}
}

// Triggers the lowering process. It iterates instruction by instruction and dispatches to
// the specialized handler based on the instruction's dynamic type (much like a recursive
// descent parser but for lowering); label declarations feed the symbol table instead of
// the instruction stream.
func (l *Lowerer) Lower() (hack.Program, hack.SymbolTable, error) {
	if len(l.program) == 0 {
		return nil, nil, fmt.Errorf("the given 'program' is empty")
	}

	instructions := make([]hack.Instruction, 0, len(l.program))
	table := hack.SymbolTable{}

	for _, statement := range l.program {
		switch typed := statement.(type) {
		case AInstruction:
			inst, err := l.HandleAInst(typed)
			if err != nil {
				return nil, nil, err
			}
			instructions = append(instructions, inst)

		case CInstruction:
			inst, err := l.HandleCInst(typed)
			if err != nil {
				return nil, nil, err
			}
			instructions = append(instructions, inst)

		case LabelDecl:
			table[typed.Name] = uint16(len(instructions))

		default:
			return nil, nil, fmt.Errorf("unrecognized instruction '%T'", statement)
		}
	}

	return instructions, table, nil
}

// Specialized function to convert an 'asm.AInstruction' to a 'hack.AInstruction'.
//
// The location kind is resolved in the following priority order: built-in symbol first,
// then a raw numeric literal, and finally a user-defined label left for the codegen phase
// to resolve against the 'hack.SymbolTable' (allocating a new variable slot if unseen).
func (Lowerer) HandleAInst(inst AInstruction) (hack.Instruction, error) {
	if _, found := hack.BuiltInTable[inst.Location]; found {
		return hack.AInstruction{LocType: hack.BuiltIn, LocName: inst.Location}, nil
	}
	if _, err := strconv.ParseInt(inst.Location, 10, 64); err == nil {
		return hack.AInstruction{LocType: hack.Raw, LocName: inst.Location}, nil
	}
	return hack.AInstruction{LocType: hack.Label, LocName: inst.Location}, nil
}

// Specialized function to convert an 'asm.CInstruction' to a 'hack.CInstruction'.
//
// 'Dest' and 'Jump' are both optional and independent of each other, so both are carried
// over as-is (possibly empty) instead of forcing an either/or choice between them.
func (Lowerer) HandleCInst(inst CInstruction) (hack.Instruction, error) {
	if inst.Comp == "" {
		return nil, fmt.Errorf("'Comp' sub-instruction should always be provided")
	}

	return hack.CInstruction{Comp: inst.Comp, Dest: inst.Dest, Jump: inst.Jump}, nil
}
