package vm

import (
	"fmt"
)

// ----------------------------------------------------------------------------
// Code Generator

// maxSegmentOffset bounds the two fixed-size memory segments: 'pointer' only ever
// addresses 'this'/'that' (offsets 0-1), 'temp' only the 8 general purpose registers
// R5-R12 (offsets 0-7). Every other segment is effectively unbounded at this stage.
var maxSegmentOffset = map[SegmentType]uint16{
	Pointer: 1,
	Temp:    7,
}

// CodeGenerator pretty-prints a 'vm.Program' (one instruction stream per module) back
// to its VM-language textual form, grouped by originating module name.
type CodeGenerator struct {
	program Program
}

// Initializes and returns to the caller a brand new 'CodeGenerator' struct.
// Requires that argument Program 'p' (what we want to translate) is non-nil.
func NewCodeGenerator(p Program) CodeGenerator {
	return CodeGenerator{program: p}
}

// Translates every instruction of every module to its VM-language textual form.
func (cg *CodeGenerator) Generate() (map[string][]string, error) {
	out := make(map[string][]string, len(cg.program))

	for module, operations := range cg.program {
		lines := make([]string, 0, len(operations))

		for _, operation := range operations {
			line, err := cg.generateOne(operation)
			if err != nil {
				return nil, fmt.Errorf("module '%s': %w", module, err)
			}
			lines = append(lines, line)
		}

		out[module] = lines
	}

	return out, nil
}

// generateOne dispatches a single operation to its specialized handler based on its
// dynamic type.
func (cg *CodeGenerator) generateOne(operation Operation) (string, error) {
	switch typed := operation.(type) {
	case MemoryOp:
		return cg.GenerateMemoryOp(typed)
	case ArithmeticOp:
		return cg.GenerateArithmeticOp(typed)
	case LabelDecl:
		return cg.GenerateLabelDecl(typed)
	case GotoOp:
		return cg.GenerateGotoOp(typed)
	case FuncDecl:
		return cg.GenerateFuncDecl(typed)
	case ReturnOp:
		return cg.GenerateReturnOp(typed)
	case FuncCallOp:
		return cg.GenerateFuncCallOp(typed)
	default:
		return "", fmt.Errorf("unrecognized operation '%T'", operation)
	}
}

// Specialized function to convert a 'MemoryOp' operation to the VM format.
func (CodeGenerator) GenerateMemoryOp(op MemoryOp) (string, error) {
	if limit, bounded := maxSegmentOffset[op.Segment]; bounded && op.Offset > limit {
		return "", fmt.Errorf("invalid '%s' offset, got %d (max %d)", op.Segment, op.Offset, limit)
	}

	return fmt.Sprintf("%s %s %d", op.Operation, op.Segment, op.Offset), nil
}

// Specialized function to convert an 'ArithmeticOp' operation to the VM format.
func (CodeGenerator) GenerateArithmeticOp(op ArithmeticOp) (string, error) {
	return string(op.Operation), nil
}

// Specialized function to convert a 'LabelDecl' operation to the VM format.
func (CodeGenerator) GenerateLabelDecl(op LabelDecl) (string, error) {
	if op.Name == "" {
		return "", fmt.Errorf("unable to produce an empty label declaration")
	}

	return fmt.Sprintf("label %s", op.Name), nil
}

// Specialized function to convert a 'GotoOp' operation to the VM format.
func (CodeGenerator) GenerateGotoOp(op GotoOp) (string, error) {
	if op.Label == "" {
		return "", fmt.Errorf("unable to produce a jump with an empty label")
	}

	return fmt.Sprintf("%s %s", op.Jump, op.Label), nil
}

// Specialized function to convert a 'FuncDecl' operation to the VM format.
func (CodeGenerator) GenerateFuncDecl(op FuncDecl) (string, error) {
	if op.Name == "" {
		return "", fmt.Errorf("unable to produce an empty function declaration")
	}

	return fmt.Sprintf("function %s %d", op.Name, op.NLocal), nil
}

// Specialized function to convert a 'ReturnOp' operation to the VM format.
func (CodeGenerator) GenerateReturnOp(ReturnOp) (string, error) {
	return "return", nil
}

// Specialized function to convert a 'FuncCallOp' operation to the VM format.
func (CodeGenerator) GenerateFuncCallOp(op FuncCallOp) (string, error) {
	if op.Name == "" {
		return "", fmt.Errorf("unable to produce an empty function call")
	}

	return fmt.Sprintf("call %s %d", op.Name, op.NArgs), nil
}
