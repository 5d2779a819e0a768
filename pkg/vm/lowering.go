package vm

import (
	"fmt"
	"sort"
	"strings"

	"its-hmny.dev/nand2tetris/pkg/asm"
)

// ----------------------------------------------------------------------------
// Memory map

// Maps the 4 "pointer" segments to the Hack register that holds their base address.
var segmentRegister = map[SegmentType]string{
	Local:    "LCL",
	Argument: "ARG",
	This:     "THIS",
	That:     "THAT",
}

// Maps each binary arithmetic/bitwise op to the 'comp' mnemonic that computes it, given that
// D already holds the second operand (the one pushed last) and A points to the first one.
var binaryOpComp = map[ArithOpType]string{
	Add: "D+M",
	Sub: "M-D",
	And: "D&M",
	Or:  "D|M",
}

// Maps each unary op to the 'comp' mnemonic that computes it in place on the stack's top.
var unaryOpComp = map[ArithOpType]string{
	Neg: "-M",
	Not: "!M",
}

// Maps each comparison op to the jump mnemonic that fires when (first operand - second) satisfies it.
var comparisonJump = map[ArithOpType]string{
	Eq: "JEQ",
	Gt: "JGT",
	Lt: "JLT",
}

// ----------------------------------------------------------------------------
// Vm Lowerer

// The Lowerer takes a 'vm.Program' (one or more parsed modules) and produces its 'asm.Program'
// counterpart. Unlike the Asm and Hack lowerers this one works off of the typed representation
// directly (no raw AST survives past the parsing phase) since by this point every operation is
// already a well-formed 'vm.Operation' and the only job left is expanding it to Hack assembly.
//
// Modules are lowered in (deterministic) alphabetical order of their key so that re-running the
// lowerer on the same 'vm.Program' always produces byte-identical output, a 'map' iteration order
// otherwise would not give us that guarantee.
type Lowerer struct {
	program   Program
	bootstrap bool // Whether to prepend the SP init + call to Sys.init

	currentModule   string // Basename (sans '.vm') of the module currently being lowered
	currentFunction string // Fully qualified name of the function currently being lowered

	nCmp  uint // Monotonic counter, used to keep comparison (eq/gt/lt) labels unique
	nCall uint // Monotonic counter, used to keep call return-address labels unique
}

// Initializes and returns to the caller a brand new 'Lowerer' struct.
// Requires the argument Program to be not nil nor empty.
func NewLowerer(p Program) Lowerer {
	return Lowerer{program: p}
}

// Same as 'NewLowerer' but also instructs the Lowerer to prepend the bootstrap sequence (sets
// 'SP' to 256 and calls 'Sys.init') ahead of every other lowered instruction. This is the Hack
// equivalent of the CRT0 startup code that runs before any user-defined '_start'/'main'.
func NewLowererWithBootstrap(p Program) Lowerer {
	return Lowerer{program: p, bootstrap: true}
}

// Triggers the lowering process. It iterates module by module (in alphabetical order) and, for
// each one, operation by operation, dispatching to the specialized handler based on the dynamic
// type of the 'vm.Operation' (much like a recursive descend parser but for lowering).
func (l *Lowerer) Lowerer() (asm.Program, error) {
	if len(l.program) == 0 {
		return nil, fmt.Errorf("the given 'program' is empty")
	}

	program := asm.Program{}

	if l.bootstrap {
		program = append(program, l.lowerBootstrap()...)
	}

	modules := make([]string, 0, len(l.program))
	for name := range l.program {
		modules = append(modules, name)
	}
	sort.Strings(modules)

	for _, name := range modules {
		l.currentModule = strings.TrimSuffix(name, ".vm")
		l.currentFunction = l.currentModule

		for _, op := range l.program[name] {
			inst, err := l.lowerOperation(op)
			if err != nil {
				return nil, fmt.Errorf("module '%s': %w", name, err)
			}
			program = append(program, inst...)
		}
	}

	return program, nil
}

// Dispatches a single 'vm.Operation' to its specialized handler based on its dynamic type.
func (l *Lowerer) lowerOperation(op Operation) ([]asm.Instruction, error) {
	switch tOp := op.(type) {
	case MemoryOp:
		return l.lowerMemoryOp(tOp)
	case ArithmeticOp:
		return l.lowerArithmeticOp(tOp)
	case LabelDecl:
		return []asm.Instruction{asm.LabelDecl{Name: l.qualify(tOp.Name)}}, nil
	case GotoOp:
		return l.lowerGotoOp(tOp)
	case FuncDecl:
		return l.lowerFuncDecl(tOp), nil
	case FuncCallOp:
		return l.lowerFuncCallOp(tOp), nil
	case ReturnOp:
		return l.lowerReturnOp(), nil
	default:
		return nil, fmt.Errorf("unrecognized operation '%T'", op)
	}
}

// The bootstrap sequence: initializes 'SP' to 256 (the stack base, right after the 16
// registers and the static area at 16-255) and then calls 'Sys.init' with no arguments, exactly as 'call Sys.init 0' would.
func (l *Lowerer) lowerBootstrap() []asm.Instruction {
	l.currentFunction = "Bootstrap"

	inst := []asm.Instruction{
		asm.AInstruction{Location: "256"},
		asm.CInstruction{Dest: "D", Comp: "A"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "D"},
	}

	return append(inst, l.lowerFuncCallOp(FuncCallOp{Name: "Sys.init", NArgs: 0})...)
}

// Qualifies a 'LabelDecl'/'GotoOp' target to the function it's declared in, this mirrors the
// official VM spec where a 'label'/'goto' is only visible within the enclosing function and
// two functions are free to reuse the same label text without clashing once lowered to Asm.
func (l *Lowerer) qualify(label string) string {
	return fmt.Sprintf("%s$%s", l.currentFunction, label)
}

// ----------------------------------------------------------------------------
// Stack primitives

// Pushes the current value of 'D' onto the stack and advances 'SP'.
func pushD() []asm.Instruction {
	return []asm.Instruction{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "M+1"},
	}
}

// Retreats 'SP' and loads the popped value into 'D'.
func popD() []asm.Instruction {
	return []asm.Instruction{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "M-1"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Dest: "D", Comp: "M"},
	}
}

// ----------------------------------------------------------------------------
// Memory Op

// Specialized function to lower a 'vm.MemoryOp' to its 'asm.Instruction' counterpart(s).
func (l *Lowerer) lowerMemoryOp(op MemoryOp) ([]asm.Instruction, error) {
	switch op.Segment {
	case Constant:
		if op.Operation != Push {
			return nil, fmt.Errorf("segment 'constant' only supports 'push', got '%s'", op.Operation)
		}
		return append([]asm.Instruction{
			asm.AInstruction{Location: fmt.Sprint(op.Offset)},
			asm.CInstruction{Dest: "D", Comp: "A"},
		}, pushD()...), nil

	case Local, Argument, This, That:
		return l.lowerIndirectSegment(op, segmentRegister[op.Segment])

	case Temp:
		if op.Offset > 7 {
			return nil, fmt.Errorf("'temp' segment offset out of bounds: %d", op.Offset)
		}
		return l.lowerDirectSegment(op.Operation, fmt.Sprint(5+op.Offset))

	case Pointer:
		if op.Offset > 1 {
			return nil, fmt.Errorf("'pointer' segment offset out of bounds: %d", op.Offset)
		}
		location := "THIS"
		if op.Offset == 1 {
			location = "THAT"
		}
		return l.lowerDirectSegment(op.Operation, location)

	case Static:
		location := fmt.Sprintf("%s.%d", l.currentModule, op.Offset)
		return l.lowerDirectSegment(op.Operation, location)

	default:
		return nil, fmt.Errorf("unrecognized segment '%s'", op.Segment)
	}
}

// Lowers push/pop to the segments that are a direct RAM location (temp, pointer, static): the
// value lives at a single, statically known address, no base register indirection is needed.
func (Lowerer) lowerDirectSegment(operation OperationType, location string) ([]asm.Instruction, error) {
	switch operation {
	case Push:
		return append([]asm.Instruction{
			asm.AInstruction{Location: location},
			asm.CInstruction{Dest: "D", Comp: "M"},
		}, pushD()...), nil

	case Pop:
		return append(popD(),
			asm.AInstruction{Location: location},
			asm.CInstruction{Dest: "M", Comp: "D"},
		), nil

	default:
		return nil, fmt.Errorf("unrecognized OperationType '%s'", operation)
	}
}

// Lowers push/pop to the segments addressed through a base register plus offset (local,
// argument, this, that): the real address has to be computed as '*base + offset' first.
func (Lowerer) lowerIndirectSegment(op MemoryOp, base string) ([]asm.Instruction, error) {
	switch op.Operation {
	case Push:
		return append([]asm.Instruction{
			asm.AInstruction{Location: base},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.AInstruction{Location: fmt.Sprint(op.Offset)},
			asm.CInstruction{Dest: "A", Comp: "D+A"},
			asm.CInstruction{Dest: "D", Comp: "M"},
		}, pushD()...), nil

	case Pop:
		inst := []asm.Instruction{
			asm.AInstruction{Location: base},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.AInstruction{Location: fmt.Sprint(op.Offset)},
			asm.CInstruction{Dest: "D", Comp: "D+A"},
			asm.AInstruction{Location: "R13"},
			asm.CInstruction{Dest: "M", Comp: "D"},
		}
		inst = append(inst, popD()...)
		return append(inst,
			asm.AInstruction{Location: "R13"},
			asm.CInstruction{Dest: "A", Comp: "M"},
			asm.CInstruction{Dest: "M", Comp: "D"},
		), nil

	default:
		return nil, fmt.Errorf("unrecognized OperationType '%s'", op.Operation)
	}
}

// ----------------------------------------------------------------------------
// Arithmetic Op

// Specialized function to lower a 'vm.ArithmeticOp' to its 'asm.Instruction' counterpart(s).
//
// Binary/bitwise ops and unary ops compute their result in a single pass. Comparisons need a
// conditional jump since the Hack ALU has no "set on condition" output, so each one gets a pair
// of uniquely-named labels to branch the boolean result (0 or -1, i.e. all bits set) into place.
func (l *Lowerer) lowerArithmeticOp(op ArithmeticOp) ([]asm.Instruction, error) {
	if comp, found := binaryOpComp[op.Operation]; found {
		return []asm.Instruction{
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "AM", Comp: "M-1"},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.CInstruction{Dest: "A", Comp: "A-1"},
			asm.CInstruction{Dest: "M", Comp: comp},
		}, nil
	}

	if comp, found := unaryOpComp[op.Operation]; found {
		return []asm.Instruction{
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "A", Comp: "M-1"},
			asm.CInstruction{Dest: "M", Comp: comp},
		}, nil
	}

	if jump, found := comparisonJump[op.Operation]; found {
		l.nCmp++
		mnemonic := strings.ToUpper(string(op.Operation))
		trueLabel := fmt.Sprintf("%s$%s.true.%d", l.currentFunction, mnemonic, l.nCmp)
		endLabel := fmt.Sprintf("%s$%s.end.%d", l.currentFunction, mnemonic, l.nCmp)

		return []asm.Instruction{
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "AM", Comp: "M-1"},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.CInstruction{Dest: "A", Comp: "A-1"},
			asm.CInstruction{Dest: "D", Comp: "M-D"},
			asm.AInstruction{Location: trueLabel},
			asm.CInstruction{Comp: "D", Jump: jump},
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "A", Comp: "M-1"},
			asm.CInstruction{Dest: "M", Comp: "0"},
			asm.AInstruction{Location: endLabel},
			asm.CInstruction{Comp: "0", Jump: "JMP"},
			asm.LabelDecl{Name: trueLabel},
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "A", Comp: "M-1"},
			asm.CInstruction{Dest: "M", Comp: "-1"},
			asm.LabelDecl{Name: endLabel},
		}, nil
	}

	return nil, fmt.Errorf("unrecognized ArithOpType '%s'", op.Operation)
}

// ----------------------------------------------------------------------------
// Branching Ops

// Specialized function to lower a 'vm.GotoOp' to its 'asm.Instruction' counterpart(s).
func (l *Lowerer) lowerGotoOp(op GotoOp) ([]asm.Instruction, error) {
	label := l.qualify(op.Label)

	switch op.Jump {
	case Unconditional:
		return []asm.Instruction{
			asm.AInstruction{Location: label},
			asm.CInstruction{Comp: "0", Jump: "JMP"},
		}, nil

	case Conditional:
		return append(popD(),
			asm.AInstruction{Location: label},
			asm.CInstruction{Comp: "D", Jump: "JNE"},
		), nil

	default:
		return nil, fmt.Errorf("unrecognized JumpType '%s'", op.Jump)
	}
}

// ----------------------------------------------------------------------------
// Function Ops

// Specialized function to lower a 'vm.FuncDecl' to its 'asm.Instruction' counterpart(s).
//
// Emits the function's entry label followed by 'NLocal' unrolled "push constant 0" so that
// every local variable slot is zero-initialized by the time the function body starts executing.
func (l *Lowerer) lowerFuncDecl(op FuncDecl) []asm.Instruction {
	l.currentFunction = op.Name

	inst := []asm.Instruction{asm.LabelDecl{Name: op.Name}}
	for i := uint8(0); i < op.NLocal; i++ {
		inst = append(inst,
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "A", Comp: "M"},
			asm.CInstruction{Dest: "M", Comp: "0"},
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "M", Comp: "M+1"},
		)
	}
	return inst
}

// Specialized function to lower a 'vm.FuncCallOp' to its 'asm.Instruction' counterpart(s).
//
// Pushes the five-word call frame (return address, then the caller's LCL/ARG/THIS/THAT), then
// repositions 'ARG'/'LCL' for the callee and jumps to it. The return address is a freshly minted
// label, unique per call-site, declared right after the jump so execution resumes there once
// the callee eventually runs a matching 'ReturnOp'.
func (l *Lowerer) lowerFuncCallOp(op FuncCallOp) []asm.Instruction {
	l.nCall++
	retLabel := fmt.Sprintf("%s$ret.%d", l.currentFunction, l.nCall)

	inst := []asm.Instruction{
		asm.AInstruction{Location: retLabel},
		asm.CInstruction{Dest: "D", Comp: "A"},
	}
	inst = append(inst, pushD()...)

	for _, reg := range []string{"LCL", "ARG", "THIS", "THAT"} {
		inst = append(inst,
			asm.AInstruction{Location: reg},
			asm.CInstruction{Dest: "D", Comp: "M"},
		)
		inst = append(inst, pushD()...)
	}

	return append(inst,
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: fmt.Sprint(uint16(op.NArgs) + 5)},
		asm.CInstruction{Dest: "D", Comp: "D-A"},
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Dest: "M", Comp: "D"},
		asm.AInstruction{Location: op.Name},
		asm.CInstruction{Comp: "0", Jump: "JMP"},
		asm.LabelDecl{Name: retLabel},
	)
}

// Specialized function to lower a 'vm.ReturnOp' to its 'asm.Instruction' counterpart(s).
//
// Saves 'LCL' (the callee's frame base) in 'R13', computes the return address from it into
// 'R14' before the frame is torn down (since 'ReturnOp' may be the last reference to the
// caller-provided return address), places the caller's return value at '*ARG', repositions 'SP'
// right after it, restores 'THAT'/'THIS'/'ARG'/'LCL' by walking 'R13' backwards, and finally
// jumps to the address saved in 'R14'.
func (l *Lowerer) lowerReturnOp() []asm.Instruction {
	inst := []asm.Instruction{
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "R13"},
		asm.CInstruction{Dest: "M", Comp: "D"},

		asm.AInstruction{Location: "5"},
		asm.CInstruction{Dest: "A", Comp: "D-A"},
		asm.CInstruction{Dest: "D", Comp: "M"},
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Dest: "M", Comp: "D"},
	}

	inst = append(inst, popD()...)
	inst = append(inst,
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Dest: "M", Comp: "D"},

		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Dest: "D", Comp: "M+1"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Dest: "M", Comp: "D"},
	)

	for _, reg := range []string{"THAT", "THIS", "ARG", "LCL"} {
		inst = append(inst,
			asm.AInstruction{Location: "R13"},
			asm.CInstruction{Dest: "AM", Comp: "M-1"},
			asm.CInstruction{Dest: "D", Comp: "M"},
			asm.AInstruction{Location: reg},
			asm.CInstruction{Dest: "M", Comp: "D"},
		)
	}

	return append(inst,
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Dest: "A", Comp: "M"},
		asm.CInstruction{Comp: "0", Jump: "JMP"},
	)
}
