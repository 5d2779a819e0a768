package vm_test

import (
	"testing"

	"its-hmny.dev/nand2tetris/pkg/vm"
)

// assertCodegen asserts the success/failure outcome exactly: a case declared to fail
// must actually produce an error, not merely fail to match its expected text.
func assertCodegen(t *testing.T, got string, err error, expected string, wantErr bool) {
	t.Helper()

	switch {
	case wantErr && err == nil:
		t.Fatalf("expected an error, got result %q", got)
	case !wantErr && err != nil:
		t.Fatalf("unexpected error: %v", err)
	case !wantErr && got != expected:
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestGenerateMemoryOp(t *testing.T) {
	codegen := vm.NewCodeGenerator(nil)

	t.Run("well formed", func(t *testing.T) {
		cases := []struct {
			op       vm.MemoryOp
			expected string
		}{
			{vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 5}, "push constant 5"},
			{vm.MemoryOp{Operation: vm.Pop, Segment: vm.Local, Offset: 3}, "pop local 3"},
			{vm.MemoryOp{Operation: vm.Push, Segment: vm.Argument, Offset: 2}, "push argument 2"},
			{vm.MemoryOp{Operation: vm.Pop, Segment: vm.Static, Offset: 1}, "pop static 1"},
			{vm.MemoryOp{Operation: vm.Pop, Segment: vm.Pointer, Offset: 1}, "pop pointer 1"},
			{vm.MemoryOp{Operation: vm.Push, Segment: vm.Temp, Offset: 7}, "push temp 7"},
		}
		for _, c := range cases {
			res, err := codegen.GenerateMemoryOp(c.op)
			assertCodegen(t, res, err, c.expected, false)
		}
	})

	t.Run("out of bounds offset", func(t *testing.T) {
		cases := []vm.MemoryOp{
			{Operation: vm.Push, Segment: vm.Temp, Offset: 8},
			{Operation: vm.Pop, Segment: vm.Pointer, Offset: 2},
		}
		for _, op := range cases {
			res, err := codegen.GenerateMemoryOp(op)
			assertCodegen(t, res, err, "", true)
		}
	})
}

func TestGenerateArithmeticOp(t *testing.T) {
	codegen := vm.NewCodeGenerator(nil)

	cases := map[vm.ArithOpType]string{
		vm.Add: "add", vm.Sub: "sub", vm.Neg: "neg",
		vm.Eq: "eq", vm.Gt: "gt", vm.Lt: "lt",
		vm.And: "and", vm.Or: "or", vm.Not: "not",
	}
	for op, expected := range cases {
		res, err := codegen.GenerateArithmeticOp(vm.ArithmeticOp{Operation: op})
		assertCodegen(t, res, err, expected, false)
	}
}

func TestGenerateLabelDecl(t *testing.T) {
	codegen := vm.NewCodeGenerator(nil)

	t.Run("well formed", func(t *testing.T) {
		for _, name := range []string{"END", "CHECK", "LOOP_START"} {
			res, err := codegen.GenerateLabelDecl(vm.LabelDecl{Name: name})
			assertCodegen(t, res, err, "label "+name, false)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		res, err := codegen.GenerateLabelDecl(vm.LabelDecl{})
		assertCodegen(t, res, err, "", true)
	})
}

func TestGenerateGotoOp(t *testing.T) {
	codegen := vm.NewCodeGenerator(nil)

	t.Run("well formed", func(t *testing.T) {
		cases := []struct {
			op       vm.GotoOp
			expected string
		}{
			{vm.GotoOp{Jump: vm.Unconditional, Label: "END"}, "goto END"},
			{vm.GotoOp{Jump: vm.Conditional, Label: "CHECK"}, "if-goto CHECK"},
			{vm.GotoOp{Jump: vm.Unconditional, Label: "LOOP_START"}, "goto LOOP_START"},
			{vm.GotoOp{Jump: vm.Conditional, Label: "FUNC_RET"}, "if-goto FUNC_RET"},
		}
		for _, c := range cases {
			res, err := codegen.GenerateGotoOp(c.op)
			assertCodegen(t, res, err, c.expected, false)
		}
	})

	t.Run("empty label", func(t *testing.T) {
		for _, jump := range []vm.JumpType{vm.Unconditional, vm.Conditional} {
			res, err := codegen.GenerateGotoOp(vm.GotoOp{Jump: jump})
			assertCodegen(t, res, err, "", true)
		}
	})
}

func TestGenerateFuncDecl(t *testing.T) {
	codegen := vm.NewCodeGenerator(nil)

	t.Run("well formed", func(t *testing.T) {
		cases := []struct {
			op       vm.FuncDecl
			expected string
		}{
			{vm.FuncDecl{Name: "Main", NLocal: 0}, "function Main 0"},
			{vm.FuncDecl{Name: "ComputeSum", NLocal: 2}, "function ComputeSum 2"},
			{vm.FuncDecl{Name: "LoopHandler", NLocal: 10}, "function LoopHandler 10"},
		}
		for _, c := range cases {
			res, err := codegen.GenerateFuncDecl(c.op)
			assertCodegen(t, res, err, c.expected, false)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		res, err := codegen.GenerateFuncDecl(vm.FuncDecl{NLocal: 2})
		assertCodegen(t, res, err, "", true)
	})
}

func TestGenerateReturnOp(t *testing.T) {
	codegen := vm.NewCodeGenerator(nil)

	res, err := codegen.GenerateReturnOp(vm.ReturnOp{})
	assertCodegen(t, res, err, "return", false)
}

func TestGenerateFuncCallOp(t *testing.T) {
	codegen := vm.NewCodeGenerator(nil)

	t.Run("well formed", func(t *testing.T) {
		cases := []struct {
			op       vm.FuncCallOp
			expected string
		}{
			{vm.FuncCallOp{Name: "Main", NArgs: 0}, "call Main 0"},
			{vm.FuncCallOp{Name: "ComputeSum", NArgs: 2}, "call ComputeSum 2"},
			{vm.FuncCallOp{Name: "LoopHandler", NArgs: 10}, "call LoopHandler 10"},
		}
		for _, c := range cases {
			res, err := codegen.GenerateFuncCallOp(c.op)
			assertCodegen(t, res, err, c.expected, false)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		res, err := codegen.GenerateFuncCallOp(vm.FuncCallOp{NArgs: 2})
		assertCodegen(t, res, err, "", true)
	})
}
