package vm

// ----------------------------------------------------------------------------
// General information

// This section contains some general information about the VM intermediate language.
//
// We declare a shared 'Operation' interface for every macro operation available for the
// language and we define some other useful top-level struct such as Program and Module.
// Is important to note that a VM program can be composed of multiple translation units
// that can be also referenced as file or modules or also classes.

// A VM Program is just a set of multiple modules/files, in the VM spec each Jack class is
// translated to its own .vm file (just like Java .class file) that can be handled as its
// own translation unit during the compilation or lowering phases. It's keyed by module name
// (the file basename; the Lowerer strips a trailing '.vm' when it derives static names).
type Program map[string]Module

// A VM Module is just a linear list of VM operations/instructions
type Module []Operation

// Used to put together all operation in the VM language (Memory, Arithmetic, ... ops).
type Operation interface{}

// ----------------------------------------------------------------------------
// Memory Op

// In memory representation of a Memory operation for the VM language.
//
// In the VM intermediate language there are only two possible memory operation on the stack.
// We could either push a new value taken from the specified segment location on the stack's
// top or take the stack's top and saves its value at the specified segment location.
type MemoryOp struct {
	Operation OperationType // The type of operation, either 'push' or 'pop'
	Segment   SegmentType   // The named memory segment to use (this, that, temp, ...)
	Offset    uint16        // The specific location/offset inside of the memory segment
}

type OperationType string // Enum to manage the operation allowed for a MemoryOp

const (
	Push OperationType = "push"
	Pop  OperationType = "pop"
)

type SegmentType string // Enum to manage the segment accessible for a MemoryOp

const (
	Temp     SegmentType = "temp"     // Real segment used to store intermediate computations
	Constant SegmentType = "constant" // Virtual segment used to access numeric constant

	Local    SegmentType = "local"    // Real segment used to store local function variables
	Static   SegmentType = "static"   // Real segment used to store shared/static variables
	Argument SegmentType = "argument" // Real segment used to store function's argument

	This    SegmentType = "this"    // Virtual segment used to point to a specific memory location
	That    SegmentType = "that"    // Virtual segment used to point to a specific memory location
	Pointer SegmentType = "pointer" // Real segment w/ 2 location used to set the 'this' and 'that' pointers
)

// ----------------------------------------------------------------------------
// Arithmetic Op

// In memory representation of a Arithmetic operation for the VM language.
//
// In the VM intermediate language there are just a handful of operation available.
// In particular each operation acts directly on the top of the stack, of course we have both unary
// and binary operation, the specific management of each op will be handled in the codegen phase.
type ArithmeticOp struct{ Operation ArithOpType }

type ArithOpType string // Enum to manage the operation allowed for an ArithmeticOp

const (
	Eq ArithOpType = "eq" // Comparison operations
	Gt ArithOpType = "gt"
	Lt ArithOpType = "lt"

	Add ArithOpType = "add" // Arithmetic operations
	Sub ArithOpType = "sub"
	Neg ArithOpType = "neg"

	Not ArithOpType = "not" // Bitwise operations
	And ArithOpType = "and"
	Or  ArithOpType = "or"
)

// ----------------------------------------------------------------------------
// Branching Ops

// In memory representation of a label declaration, marks a location in the module that
// a 'GotoOp' can target. It does not itself occupy a code address: it only binds a name
// to whatever instruction comes immediately after it.
type LabelDecl struct{ Name string }

// In memory representation of a (un)conditional jump to a previously declared 'LabelDecl'.
//
// An unconditional jump ('goto') always transfers control to 'Label'. A conditional one
// ('if-goto') first pops the stack's top and only jumps if that value is not false (0).
type GotoOp struct {
	Jump  JumpType // Either 'Unconditional' or 'Conditional'
	Label string   // The target label, scoped to the enclosing function
}

type JumpType string // Enum to manage the jump kind allowed for a GotoOp

const (
	Unconditional JumpType = "goto"
	Conditional   JumpType = "if-goto"
)

// ----------------------------------------------------------------------------
// Function Ops

// In memory representation of a function declaration, marks the entry point of a callable
// unit and states how many local variables the callee needs allocated (and zeroed) upfront.
type FuncDecl struct {
	Name   string // Fully qualified name, in the form 'Class.subroutine'
	NLocal uint8  // The number of local variables to allocate (and zero-init) on entry
}

// In memory representation of a function call, transfers control to 'Name' after arranging
// the five-word call frame (return address, saved LCL/ARG/THIS/THAT) on the stack.
type FuncCallOp struct {
	Name  string // Fully qualified name of the callee, in the form 'Class.subroutine'
	NArgs uint8  // The number of arguments already pushed onto the stack by the caller
}

// In memory representation of a function return, restores the caller's frame and transfers
// control back to the return address saved by the matching 'FuncCallOp'.
type ReturnOp struct{}
