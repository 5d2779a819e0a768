package jack

import (
	"fmt"
	"sort"
	"strconv"

	"its-hmny.dev/nand2tetris/pkg/utils"
	"its-hmny.dev/nand2tetris/pkg/vm"
)

// ----------------------------------------------------------------------------
// Jack Lowerer

// The Lowerer takes a 'jack.Program' and produces its 'vm.Program' counterpart.
//
// Since we get a tree-like struct we are able to traverse it using a Depth First Search (DFS)
// algorithm on it: for each node visited we produce the 'vm.Operation' list that implements
// it, validating along the way.
//
// Classes are lowered in (deterministic) alphabetical order of their name, same rationale as
// 'vm.Lowerer' lowering modules in alphabetical order: a Go map iterates in random order, and
// 'if'/'while' label uniqueness rides on a monotonic counter ('nLabel') whose value at any
// point in the traversal depends on how many labels were minted before it — randomize the
// traversal order and the same source would lower to different (if still correct) VM label
// names on every run.
type Lowerer struct {
	classes utils.OrderedMap[string, Class]
	scopes  ScopeTable

	currentClass string // Name of the class whose body is currently being lowered
	nLabel       uint   // Monotonic counter, keeps 'if'/'while' branch labels unique
}

// Initializes and returns to the caller a brand new 'Lowerer' struct.
// Requires the argument Program to be not nil nor empty.
func NewLowerer(p Program) Lowerer {
	entries := make([]utils.MapEntry[string, Class], 0, len(p))
	for _, class := range p {
		entries = append(entries, utils.MapEntry[string, Class]{Key: class.Name, Value: class})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	return Lowerer{classes: utils.NewOrderedMapFromList(entries)}
}

// Triggers the lowering process. It iterates class by class (in alphabetical order) and then
// statement by statement, dispatching to the specialized handler based on the dynamic type of
// the node being visited (much like a recursive descent parser but for lowering).
func (l *Lowerer) Lowerer() (vm.Program, error) {
	if l.classes.Size() == 0 {
		return nil, fmt.Errorf("the given 'program' is empty or nil")
	}

	program := vm.Program{}

	for _, name := range l.classes.Keys() {
		class, _ := l.classes.Get(name)

		operations, err := l.lowerClass(class)
		if err != nil {
			return nil, fmt.Errorf("class '%s': %w", name, err)
		}
		program[name] = vm.Module(operations)
	}

	return program, nil
}

// Specialized function to lower a 'jack.Class' node to its 'vm.Operation' list: its static/
// field declarations feed the scope table (they emit no code of their own), its subroutines
// each become one VM function.
func (l *Lowerer) lowerClass(class Class) ([]vm.Operation, error) {
	l.currentClass = class.Name
	l.scopes.PushClassScope(class.Name)
	defer l.scopes.PopClassScope()

	operations := []vm.Operation{}

	for _, field := range class.Fields.Entries() {
		ops, err := l.lowerVarStmt(VarStmt{Vars: []Variable{field}})
		if err != nil {
			return nil, fmt.Errorf("field '%s': %w", field.Name, err)
		}
		operations = append(operations, ops...)
	}

	for _, subroutine := range class.Subroutines.Entries() {
		ops, err := l.lowerSubroutine(subroutine)
		if err != nil {
			return nil, fmt.Errorf("subroutine '%s': %w", subroutine.Name, err)
		}
		operations = append(operations, ops...)
	}

	return operations, nil
}

// Specialized function to lower a 'jack.Subroutine' node to its 'vm.Operation' list.
//
// 'Method' subroutines implicitly receive the object instance as their first argument (the
// 'this' pointer to be); 'Constructor' subroutines instead allocate their own instance memory
// and set 'this' to point at it, following Jack's convention of the constructor owning
// allocation rather than the caller.
func (l *Lowerer) lowerSubroutine(subroutine Subroutine) ([]vm.Operation, error) {
	l.scopes.PushSubRoutineScope(subroutine.Name)
	defer l.scopes.PopSubroutineScope()

	if subroutine.Type == Method {
		// Placeholder entry: reserves argument slot 0 for the instance pointer that the
		// prelude below pops into 'this'; never resolved back to by name.
		l.scopes.RegisterVariable(Variable{Name: "__obj", VarType: Parameter, DataType: DataType{Main: Object}})
	}
	for _, arg := range subroutine.Arguments {
		// Shadows any previous declaration in scope instead of erroring, same as Go's own
		// block-scoping rules for re-declared names.
		l.scopes.RegisterVariable(arg)
	}

	body := []vm.Operation{}
	for _, stmt := range subroutine.Statements {
		ops, err := l.lowerStatement(stmt)
		if err != nil {
			return nil, fmt.Errorf("statement %T: %w", stmt, err)
		}
		body = append(body, ops...)
	}

	decl := vm.FuncDecl{Name: l.scopes.GetScope(), NLocal: uint8(l.scopes.local.entries.Count())}

	switch subroutine.Type {
	case Constructor:
		prelude, err := l.lowerConstructorPrelude()
		if err != nil {
			return nil, err
		}
		return append(append([]vm.Operation{decl}, prelude...), body...), nil

	case Method:
		prelude := []vm.Operation{
			vm.MemoryOp{Operation: vm.Push, Segment: vm.Argument, Offset: 0},
			vm.MemoryOp{Operation: vm.Pop, Segment: vm.Pointer, Offset: 0},
		}
		return append(append([]vm.Operation{decl}, prelude...), body...), nil

	default:
		return append([]vm.Operation{decl}, body...), nil
	}
}

// lowerConstructorPrelude emits the allocation sequence every Jack constructor opens with:
// one word per declared field (not counting static ones), handed to 'Memory.alloc', whose
// result becomes the new instance's 'this' pointer.
func (l *Lowerer) lowerConstructorPrelude() ([]vm.Operation, error) {
	class, exists := l.classes.Get(l.currentClass)
	if !exists {
		return nil, fmt.Errorf("class '%s' not found", l.currentClass)
	}

	var nFields uint16
	for _, field := range class.Fields.Entries() {
		if field.VarType == Field {
			nFields++
		}
	}

	return []vm.Operation{
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: nFields},
		vm.FuncCallOp{Name: "Memory.alloc", NArgs: 1},
		vm.MemoryOp{Operation: vm.Pop, Segment: vm.Pointer, Offset: 0},
	}, nil
}

// Dispatches a single 'jack.Statement' to its specialized handler based on its dynamic type.
func (l *Lowerer) lowerStatement(stmt Statement) ([]vm.Operation, error) {
	switch typed := stmt.(type) {
	case DoStmt:
		return l.lowerDoStmt(typed)
	case VarStmt:
		return l.lowerVarStmt(typed)
	case LetStmt:
		return l.lowerLetStmt(typed)
	case IfStmt:
		return l.lowerIfStmt(typed)
	case WhileStmt:
		return l.lowerWhileStmt(typed)
	case ReturnStmt:
		return l.lowerReturnStmt(typed)
	default:
		return nil, fmt.Errorf("unrecognized statement: %T", stmt)
	}
}

// Specialized function to lower a 'jack.DoStmt' to its 'vm.Operation' list. A 'do' statement
// discards whatever its call returns, so the lone VM-level return value is popped into a
// scratch slot right away.
func (l *Lowerer) lowerDoStmt(statement DoStmt) ([]vm.Operation, error) {
	ops, err := l.lowerFuncCallExpr(statement.FuncCall)
	if err != nil {
		return nil, fmt.Errorf("function call: %w", err)
	}
	return append(ops, vm.MemoryOp{Operation: vm.Pop, Segment: vm.Temp, Offset: 0}), nil
}

// Specialized function to lower a 'jack.VarStmt' to its 'vm.Operation' list. Declarations
// only affect the scope table and emit no instructions of their own.
func (l *Lowerer) lowerVarStmt(statement VarStmt) ([]vm.Operation, error) {
	for _, variable := range statement.Vars {
		l.scopes.RegisterVariable(variable)
	}
	return []vm.Operation{}, nil
}

// Specialized function to lower a 'jack.LetStmt' to its 'vm.Operation' list. The LHS kind
// decides how the RHS result is stored: for a scoped variable the RHS is evaluated and popped
// straight to its segment; for an array cell the target address (index + base) is computed
// first, then the RHS is evaluated and stored through the pointer/offset dance.
func (l *Lowerer) lowerLetStmt(statement LetStmt) ([]vm.Operation, error) {
	rhsOps, err := l.lowerExpression(statement.Rhs)
	if err != nil {
		return nil, fmt.Errorf("RHS expression: %w", err)
	}

	switch lhs := statement.Lhs.(type) {
	case VarExpr:
		offset, variable, err := l.scopes.ResolveVariable(lhs.Var)
		if err != nil {
			return nil, fmt.Errorf("LHS variable: %w", err)
		}

		segment, err := segmentFor(variable.VarType)
		if err != nil {
			return nil, err
		}
		return append(rhsOps, vm.MemoryOp{Operation: vm.Pop, Segment: segment, Offset: offset}), nil

	case ArrayExpr:
		baseOps, err := l.lowerVarExpr(VarExpr{Var: lhs.Var})
		if err != nil {
			return nil, fmt.Errorf("LHS array base: %w", err)
		}
		indexOps, err := l.lowerExpression(lhs.Index)
		if err != nil {
			return nil, fmt.Errorf("LHS array index: %w", err)
		}

		refOps := append(append(indexOps, baseOps...), vm.ArithmeticOp{Operation: vm.Add})
		writeOps := []vm.Operation{
			vm.MemoryOp{Operation: vm.Pop, Segment: vm.Temp, Offset: 0},
			vm.MemoryOp{Operation: vm.Pop, Segment: vm.Pointer, Offset: 1},
			vm.MemoryOp{Operation: vm.Push, Segment: vm.Temp, Offset: 0},
			vm.MemoryOp{Operation: vm.Pop, Segment: vm.That, Offset: 0},
		}
		return append(append(refOps, rhsOps...), writeOps...), nil

	default:
		return nil, fmt.Errorf("LHS expression must be 'VarExpr' or 'ArrayExpr', got: %T", statement.Lhs)
	}
}

// segmentFor resolves which VM memory segment backs a given variable kind.
func segmentFor(kind VarType) (vm.SegmentType, error) {
	switch kind {
	case Local:
		return vm.Local, nil
	case Parameter:
		return vm.Argument, nil
	case Field:
		return vm.This, nil
	case Static:
		return vm.Static, nil
	default:
		return "", fmt.Errorf("variable type '%s' is not supported", kind)
	}
}

// Specialized function to lower a 'jack.WhileStmt' to its 'vm.Operation' list. Two labels
// (start/end) bracket the loop, suffixed with 'nLabel' and 'nLabel+1' respectively, so nested
// or sibling loops in the same function never collide.
func (l *Lowerer) lowerWhileStmt(statement WhileStmt) ([]vm.Operation, error) {
	condOps, err := l.lowerExpression(statement.Condition)
	if err != nil {
		return nil, fmt.Errorf("condition: %w", err)
	}

	blockOps, err := l.lowerBlock(statement.Block)
	if err != nil {
		return nil, fmt.Errorf("loop body: %w", err)
	}

	startLabel, endLabel := fmt.Sprintf("WHILE_START_%d", l.nLabel), fmt.Sprintf("WHILE_END_%d", l.nLabel+1)
	defer func() { l.nLabel += 2 }()

	ops := []vm.Operation{vm.LabelDecl{Name: startLabel}}
	ops = append(ops, condOps...)
	ops = append(ops, vm.ArithmeticOp{Operation: vm.Not}, vm.GotoOp{Label: endLabel, Jump: vm.Conditional})
	ops = append(ops, blockOps...)
	ops = append(ops, vm.GotoOp{Label: startLabel, Jump: vm.Unconditional}, vm.LabelDecl{Name: endLabel})

	return ops, nil
}

// Specialized function to lower a 'jack.IfStmt' to its 'vm.Operation' list.
//
// An 'if' without an 'else' block is compiled as a single conditional skip over the 'then' block. One
// with an 'else' needs a two-way fork instead, since the 'then' block must itself jump past
// the 'else' block once it completes.
func (l *Lowerer) lowerIfStmt(statement IfStmt) ([]vm.Operation, error) {
	condOps, err := l.lowerExpression(statement.Condition)
	if err != nil {
		return nil, fmt.Errorf("condition: %w", err)
	}
	thenOps, err := l.lowerBlock(statement.ThenBlock)
	if err != nil {
		return nil, fmt.Errorf("'then' block: %w", err)
	}
	elseOps, err := l.lowerBlock(statement.ElseBlock)
	if err != nil {
		return nil, fmt.Errorf("'else' block: %w", err)
	}

	if len(elseOps) == 0 {
		elseLabel := fmt.Sprintf("ELSE_%d", l.nLabel)
		defer func() { l.nLabel += 1 }()

		ops := append(condOps, vm.ArithmeticOp{Operation: vm.Not}, vm.GotoOp{Label: elseLabel, Jump: vm.Conditional})
		ops = append(ops, thenOps...)
		return append(ops, vm.LabelDecl{Name: elseLabel}), nil
	}

	thenLabel := fmt.Sprintf("THEN_%d", l.nLabel)
	elseLabel := fmt.Sprintf("ELSE_%d", l.nLabel+1)
	endLabel := fmt.Sprintf("END_%d", l.nLabel+2)
	defer func() { l.nLabel += 3 }()

	ops := append(condOps, vm.GotoOp{Label: thenLabel, Jump: vm.Conditional}, vm.GotoOp{Label: elseLabel, Jump: vm.Unconditional})
	ops = append(ops, vm.LabelDecl{Name: thenLabel})
	ops = append(ops, thenOps...)
	ops = append(ops, vm.GotoOp{Label: endLabel, Jump: vm.Unconditional}, vm.LabelDecl{Name: elseLabel})
	ops = append(ops, elseOps...)
	return append(ops, vm.LabelDecl{Name: endLabel}), nil
}

// lowerBlock lowers a statement list in sequence, concatenating the operations it produces.
func (l *Lowerer) lowerBlock(block []Statement) ([]vm.Operation, error) {
	ops := []vm.Operation{}
	for _, stmt := range block {
		stmtOps, err := l.lowerStatement(stmt)
		if err != nil {
			return nil, err
		}
		ops = append(ops, stmtOps...)
	}
	return ops, nil
}

// Specialized function to lower a 'jack.ReturnStmt' to its 'vm.Operation' list. Jack has no
// 'void' value, so a bare 'return' pushes the conventional zero before returning.
func (l *Lowerer) lowerReturnStmt(statement ReturnStmt) ([]vm.Operation, error) {
	if statement.Expr == nil {
		return []vm.Operation{
			vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 0},
			vm.ReturnOp{},
		}, nil
	}

	ops, err := l.lowerExpression(statement.Expr)
	if err != nil {
		return nil, fmt.Errorf("return expression: %w", err)
	}
	return append(ops, vm.ReturnOp{}), nil
}

// Dispatches a single 'jack.Expression' to its specialized handler based on its dynamic type.
func (l *Lowerer) lowerExpression(expr Expression) ([]vm.Operation, error) {
	switch typed := expr.(type) {
	case VarExpr:
		return l.lowerVarExpr(typed)
	case LiteralExpr:
		return l.lowerLiteralExpr(typed)
	case ArrayExpr:
		return l.lowerArrayExpr(typed)
	case UnaryExpr:
		return l.lowerUnaryExpr(typed)
	case BinaryExpr:
		return l.lowerBinaryExpr(typed)
	case FuncCallExpr:
		return l.lowerFuncCallExpr(typed)
	default:
		return nil, fmt.Errorf("unrecognized expression: %T", expr)
	}
}

// Specialized function to lower a 'jack.VarExpr' to its 'vm.Operation' list: 'this' reads
// the instance pointer directly, every other name is resolved against the scope table first.
func (l *Lowerer) lowerVarExpr(expression VarExpr) ([]vm.Operation, error) {
	if expression.Var == "this" {
		return []vm.Operation{vm.MemoryOp{Operation: vm.Push, Segment: vm.Pointer, Offset: 0}}, nil
	}

	offset, variable, err := l.scopes.ResolveVariable(expression.Var)
	if err != nil {
		return nil, fmt.Errorf("variable '%s': %w", expression.Var, err)
	}

	segment, err := segmentFor(variable.VarType)
	if err != nil {
		return nil, err
	}
	return []vm.Operation{vm.MemoryOp{Operation: vm.Push, Segment: segment, Offset: offset}}, nil
}

// Specialized function to lower a 'jack.LiteralExpr' to its 'vm.Operation' list. Numeric,
// boolean, char and null literals each compile to a single 'push constant' ('true' adds a
// 'not' after it); string literals
// expand into a 'String.new' call followed by one 'String.appendChar' per character.
func (l *Lowerer) lowerLiteralExpr(expression LiteralExpr) ([]vm.Operation, error) {
	switch expression.Type.Main {
	case Int:
		value, err := strconv.ParseUint(expression.Value, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("integer literal '%s': %w", expression.Value, err)
		}
		return []vm.Operation{vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: uint16(value)}}, nil

	case Bool:
		value, err := strconv.ParseBool(expression.Value)
		if err != nil {
			return nil, fmt.Errorf("boolean literal '%s': %w", expression.Value, err)
		}
		// Jack has no native boolean word, 'true'/'false' are just '-1'/'0' (all bits set /
		// unset), and since 'push constant' takes no negative value '-1' is built as 'not 0'.
		ops := []vm.Operation{vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 0}}
		if value {
			ops = append(ops, vm.ArithmeticOp{Operation: vm.Not})
		}
		return ops, nil

	case Char:
		if len(expression.Value) != 1 {
			return nil, fmt.Errorf("char literal '%s' must be exactly one character", expression.Value)
		}
		return []vm.Operation{vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: uint16(expression.Value[0])}}, nil

	case Object:
		if expression.Value != "null" {
			return nil, fmt.Errorf("object literals are not supported, got '%s'", expression.Value)
		}
		return []vm.Operation{vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 0}}, nil

	case String:
		ops := []vm.Operation{
			vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: uint16(len(expression.Value))},
			vm.FuncCallOp{Name: "String.new", NArgs: 1},
		}
		for _, char := range expression.Value {
			ops = append(ops,
				vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: uint16(char)},
				vm.FuncCallOp{Name: "String.appendChar", NArgs: 2},
			)
		}
		return ops, nil

	default:
		return nil, fmt.Errorf("unrecognized literal expression type: %s", expression.Type)
	}
}

// Specialized function to lower a 'jack.ArrayExpr' to its 'vm.Operation' list: computes
// 'base + index' into the 'that' pointer and pushes whatever that cell holds.
func (l *Lowerer) lowerArrayExpr(expression ArrayExpr) ([]vm.Operation, error) {
	baseOps, err := l.lowerVarExpr(VarExpr{Var: expression.Var})
	if err != nil {
		return nil, fmt.Errorf("array base: %w", err)
	}
	indexOps, err := l.lowerExpression(expression.Index)
	if err != nil {
		return nil, fmt.Errorf("array index: %w", err)
	}

	return append(append(indexOps, baseOps...),
		vm.ArithmeticOp{Operation: vm.Add},
		vm.MemoryOp{Operation: vm.Pop, Segment: vm.Pointer, Offset: 1},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.That, Offset: 0},
	), nil
}

// Specialized function to lower a 'jack.UnaryExpr' to its 'vm.Operation' list.
func (l *Lowerer) lowerUnaryExpr(expression UnaryExpr) ([]vm.Operation, error) {
	ops, err := l.lowerExpression(expression.Rhs)
	if err != nil {
		return nil, fmt.Errorf("operand: %w", err)
	}

	switch expression.Type {
	case Negation:
		return append(ops, vm.ArithmeticOp{Operation: vm.Neg}), nil
	case BoolNot:
		return append(ops, vm.ArithmeticOp{Operation: vm.Not}), nil
	default:
		return nil, fmt.Errorf("unrecognized unary expression type: %s", expression.Type)
	}
}

// binaryOpArithmetic maps a binary operator to the single 'vm.ArithOpType' that implements
// it directly on the stack (no helper function call needed).
var binaryOpArithmetic = map[ExprType]vm.ArithOpType{
	Plus: vm.Add, Minus: vm.Sub,
	BoolOr: vm.Or, BoolAnd: vm.And,
	Equal: vm.Eq, LessThan: vm.Lt, GreatThan: vm.Gt,
}

// Specialized function to lower a 'jack.BinaryExpr' to its 'vm.Operation' list. Division and
// multiplication have no native Hack ALU support, so they fall back to a runtime OS call.
func (l *Lowerer) lowerBinaryExpr(expression BinaryExpr) ([]vm.Operation, error) {
	lhsOps, err := l.lowerExpression(expression.Lhs)
	if err != nil {
		return nil, fmt.Errorf("LHS operand: %w", err)
	}
	rhsOps, err := l.lowerExpression(expression.Rhs)
	if err != nil {
		return nil, fmt.Errorf("RHS operand: %w", err)
	}
	operands := append(lhsOps, rhsOps...)

	if op, found := binaryOpArithmetic[expression.Type]; found {
		return append(operands, vm.ArithmeticOp{Operation: op}), nil
	}

	switch expression.Type {
	case Divide:
		return append(operands, vm.FuncCallOp{Name: "Math.divide", NArgs: 2}), nil
	case Multiply:
		return append(operands, vm.FuncCallOp{Name: "Math.multiply", NArgs: 2}), nil
	default:
		return nil, fmt.Errorf("unrecognized binary expression type: %s", expression.Type)
	}
}

// Specialized function to lower a 'jack.FuncCallExpr' to its 'vm.Operation' list.
//
// Three call shapes exist: a bare call to a subroutine of the current class (passing 'this'
// only when the target is a method), an explicit call through a variable holding an object
// reference (pushes that variable as the 'this' argument), and a call qualified by a class
// name, which is either a 'function'/'constructor' (no 'this' to pass) or, when the class
// part actually names an in-scope variable, falls back to the explicit-instance case above.
func (l *Lowerer) lowerFuncCallExpr(expression FuncCallExpr) ([]vm.Operation, error) {
	argsInit := []vm.Operation{}
	for _, expr := range expression.Arguments {
		ops, err := l.lowerExpression(expr)
		if err != nil {
			return nil, fmt.Errorf("argument: %w", err)
		}
		argsInit = append(argsInit, ops...)
	}
	argsLen := uint8(len(expression.Arguments))

	if !expression.IsExtCall {
		return l.lowerInstanceCall(expression, argsInit, argsLen)
	}
	if _, variable, _ := l.scopes.ResolveVariable(expression.Var); variable != (Variable{}) {
		return l.lowerExplicitInstanceCall(expression, variable, argsInit, argsLen)
	}
	return l.lowerStaticCall(expression, argsInit, argsLen)
}

// lowerInstanceCall handles a bare 'subroutine(args)' call to a subroutine of the current
// class: a 'method' target gets 'this' ('pointer 0') pushed as its first argument, while a
// 'function'/'constructor' target is called with the given arguments only, without 'this'.
func (l *Lowerer) lowerInstanceCall(expression FuncCallExpr, argsInit []vm.Operation, argsLen uint8) ([]vm.Operation, error) {
	class, exists := l.classes.Get(l.currentClass)
	if !exists {
		return nil, fmt.Errorf("class definition not found for '%s'", l.currentClass)
	}
	routine, exists := class.Subroutines.Get(expression.FuncName)
	if !exists {
		return nil, fmt.Errorf("subroutine '%s' not found in class '%s'", expression.FuncName, l.currentClass)
	}

	fName := fmt.Sprintf("%s.%s", l.currentClass, expression.FuncName)
	if routine.Type == Method {
		thisOp := vm.MemoryOp{Operation: vm.Push, Segment: vm.Pointer, Offset: 0}
		return append([]vm.Operation{thisOp}, append(argsInit, vm.FuncCallOp{Name: fName, NArgs: argsLen + 1})...), nil
	}
	return append(argsInit, vm.FuncCallOp{Name: fName, NArgs: argsLen}), nil
}

// lowerExplicitInstanceCall handles 'variable.subroutine(args)' where 'variable' resolves
// in scope to an object reference: the variable's current value becomes the 'this' argument.
func (l *Lowerer) lowerExplicitInstanceCall(expression FuncCallExpr, variable Variable, argsInit []vm.Operation, argsLen uint8) ([]vm.Operation, error) {
	if variable.DataType.Main != Object {
		return nil, fmt.Errorf("variable '%s' is not an object", expression.Var)
	}

	thisArg, err := l.lowerVarExpr(VarExpr{Var: expression.Var})
	if err != nil {
		return nil, fmt.Errorf("instance pointer: %w", err)
	}

	fName := fmt.Sprintf("%s.%s", variable.DataType.Subtype, expression.FuncName)
	return append(append(thisArg, argsInit...), vm.FuncCallOp{Name: fName, NArgs: argsLen + 1}), nil
}

// lowerStaticCall handles 'Class.subroutine(args)' where 'Class' is not an in-scope variable.
// For a class of the program only 'function'/'constructor' subroutines can be reached this
// way, since a 'method' always needs a 'this' to operate on. A class outside the program
// (e.g. an OS class such as 'Output') is called as 'Class.subroutine' with the given
// arguments, without any check against its declaration.
func (l *Lowerer) lowerStaticCall(expression FuncCallExpr, argsInit []vm.Operation, argsLen uint8) ([]vm.Operation, error) {
	class, isClass := l.classes.Get(expression.Var)
	if !isClass {
		fName := fmt.Sprintf("%s.%s", expression.Var, expression.FuncName)
		return append(argsInit, vm.FuncCallOp{Name: fName, NArgs: argsLen}), nil
	}

	routine, exists := class.Subroutines.Get(expression.FuncName)
	if !exists {
		return nil, fmt.Errorf("subroutine '%s' not found in class '%s'", expression.FuncName, class.Name)
	}

	switch routine.Type {
	case Function:
		fName := fmt.Sprintf("%s.%s", class.Name, expression.FuncName)
		return append(argsInit, vm.FuncCallOp{Name: fName, NArgs: argsLen}), nil
	case Constructor:
		fName := fmt.Sprintf("%s.new", class.Name) // Every Jack constructor is named 'new'
		return append(argsInit, vm.FuncCallOp{Name: fName, NArgs: argsLen}), nil
	default:
		return nil, fmt.Errorf("subroutine '%s' in class '%s' is not a function or constructor, got %s", expression.FuncName, class.Name, routine.Type)
	}
}
