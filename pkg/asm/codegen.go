package asm

import (
	"errors"
	"fmt"
	"strconv"

	"its-hmny.dev/nand2tetris/pkg/hack"
)

// ----------------------------------------------------------------------------
// Code Generator

// Pretty-prints a set of 'asm.Statement' back to their Hack assembly textual form.
//
// This is the inverse of 'Parser': given the same 'asm.Program' it always produces
// assembly that, re-parsed and re-assembled, yields the same Hack binary — so it has
// to mirror the grammar exactly, including the fact that 'Dest' and 'Jump' on a single
// C Instruction are independent and may both be present at once (e.g. 'D=D-1;JGT').
type CodeGenerator struct {
	program []Statement // The set of statements to convert to assembly text
}

// Initializes and returns to the caller a brand new 'CodeGenerator' struct.
// Requires that argument Program 'p' (what we want to translate) is non-nil.
func NewCodeGenerator(p []Statement) CodeGenerator {
	return CodeGenerator{program: p}
}

// Translate each statement in the 'program' field to the Asm textual format.
func (cg *CodeGenerator) Generate() ([]string, error) {
	lines := make([]string, 0, len(cg.program))

	for _, statement := range cg.program {
		var line string
		var err error

		switch typed := statement.(type) {
		case AInstruction:
			line, err = cg.GenerateAInst(typed)
		case CInstruction:
			line, err = cg.GenerateCInst(typed)
		case LabelDecl:
			line, err = cg.GenerateLabelDecl(typed)
		}

		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// Specialized function to convert an A Instruction to the Asm format.
func (CodeGenerator) GenerateAInst(stmt AInstruction) (string, error) {
	if stmt.Location == "" {
		return "", errors.New("unable to produce an A Instruction with an empty location")
	}
	if num, err := strconv.ParseInt(stmt.Location, 10, 64); err == nil && (num < 0 || num >= int64(hack.MaxAddressableMemory)) {
		return "", fmt.Errorf("raw address '%s' is out of bounds", stmt.Location)
	}

	return fmt.Sprintf("@%s", stmt.Location), nil
}

// Specialized function to convert a C Instruction to the Asm format.
//
// 'Dest' and 'Jump' are both optional and independent: a C Instruction may carry either,
// both or neither alongside its mandatory 'Comp'. The textual form grows a 'dest='
// prefix and/or a ';jump' suffix around 'Comp' depending on which of the two are set.
func (cg *CodeGenerator) GenerateCInst(stmt CInstruction) (string, error) {
	if stmt.Comp == "" {
		return "", errors.New("expected 'comp' directive in C Instruction")
	}

	line := stmt.Comp
	if stmt.Dest != "" {
		line = fmt.Sprintf("%s=%s", stmt.Dest, line)
	}
	if stmt.Jump != "" {
		line = fmt.Sprintf("%s;%s", line, stmt.Jump)
	}

	return line, nil
}

// Specialized function to convert a Label Declaration to the Asm format.
func (CodeGenerator) GenerateLabelDecl(stmt LabelDecl) (string, error) {
	if stmt.Name == "" {
		return "", errors.New("unable to produce an empty label declaration")
	}
	if _, found := hack.BuiltInTable[stmt.Name]; found {
		return "", fmt.Errorf("unable to override built-in label '%s'", stmt.Name)
	}

	return fmt.Sprintf("(%s)", stmt.Name), nil
}
