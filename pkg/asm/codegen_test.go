package asm_test

import (
	"testing"

	"its-hmny.dev/nand2tetris/pkg/asm"
)

// assertCodegen runs 'fn' and checks both the produced text and whether an error was
// (or wasn't) expected. Unlike a loose "fail only if err contradicts expectation" check,
// this asserts the success/failure outcome exactly, so a case declared to fail actually
// has to fail for the test to pass.
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

func TestGenerateAInst(t *testing.T) {
	codegen := asm.NewCodeGenerator(nil)

	t.Run("raw addresses", func(t *testing.T) {
		cases := map[string]string{"38": "@38", "42": "@42", "64": "@64", "1024": "@1024"}
		for location, expected := range cases {
			res, err := codegen.GenerateAInst(asm.AInstruction{Location: location})
			assertCodegen(t, res, err, expected, false)
		}
	})

	t.Run("out of bounds raw addresses", func(t *testing.T) {
		for _, location := range []string{"32768", "65538", "66500", "70000"} {
			res, err := codegen.GenerateAInst(asm.AInstruction{Location: location})
			assertCodegen(t, res, err, "", true)
		}
	})

	t.Run("built-in locations", func(t *testing.T) {
		cases := map[string]string{
			"SP": "@SP", "LCL": "@LCL", "ARG": "@ARG", "THIS": "@THIS", "THAT": "@THAT",
			"R0": "@R0", "R5": "@R5", "R15": "@R15", "SCREEN": "@SCREEN", "KBD": "@KBD",
		}
		for location, expected := range cases {
			res, err := codegen.GenerateAInst(asm.AInstruction{Location: location})
			assertCodegen(t, res, err, expected, false)
		}
	})

	t.Run("user-defined labels", func(t *testing.T) {
		for _, location := range []string{"Test1", "Test2", "hmny", "n2t", "JUMP"} {
			res, err := codegen.GenerateAInst(asm.AInstruction{Location: location})
			assertCodegen(t, res, err, "@"+location, false)
		}
	})

	t.Run("empty location", func(t *testing.T) {
		res, err := codegen.GenerateAInst(asm.AInstruction{})
		assertCodegen(t, res, err, "", true)
	})
}

func TestGenerateCInst(t *testing.T) {
	codegen := asm.NewCodeGenerator(nil)

	t.Run("jump-only", func(t *testing.T) {
		cases := []struct{ inst asm.CInstruction; expected string }{
			{asm.CInstruction{Comp: "0", Jump: "JGT"}, "0;JGT"},
			{asm.CInstruction{Comp: "-1", Jump: "JEQ"}, "-1;JEQ"},
			{asm.CInstruction{Comp: "D", Jump: "JGE"}, "D;JGE"},
			{asm.CInstruction{Comp: "!M", Jump: "JNE"}, "!M;JNE"},
			{asm.CInstruction{Comp: "-A", Jump: "JLE"}, "-A;JLE"},
		}
		for _, c := range cases {
			res, err := codegen.GenerateCInst(c.inst)
			assertCodegen(t, res, err, c.expected, false)
		}
	})

	t.Run("dest-only", func(t *testing.T) {
		cases := []struct{ inst asm.CInstruction; expected string }{
			{asm.CInstruction{Comp: "D-A", Dest: "M"}, "M=D-A"},
			{asm.CInstruction{Comp: "A-D", Dest: "D"}, "D=A-D"},
			{asm.CInstruction{Comp: "D&A", Dest: "A"}, "A=D&A"},
			{asm.CInstruction{Comp: "D|M", Dest: "MD"}, "MD=D|M"},
			{asm.CInstruction{Comp: "-1", Dest: "AMD"}, "AMD=-1"},
		}
		for _, c := range cases {
			res, err := codegen.GenerateCInst(c.inst)
			assertCodegen(t, res, err, c.expected, false)
		}
	})

	// Dest and Jump are independent: a single C Instruction legitimately carries both at
	// once (e.g. a loop decrement 'D=D-1;JGT'), so the generator must emit both together.
	t.Run("dest and jump together", func(t *testing.T) {
		cases := []struct{ inst asm.CInstruction; expected string }{
			{asm.CInstruction{Comp: "D-1", Dest: "D", Jump: "JGT"}, "D=D-1;JGT"},
			{asm.CInstruction{Comp: "D-A", Dest: "D", Jump: "JLE"}, "D=D-A;JLE"},
			{asm.CInstruction{Comp: "0", Dest: "M", Jump: "JMP"}, "M=0;JMP"},
			{asm.CInstruction{Comp: "M-1", Dest: "AM", Jump: "JNE"}, "AM=M-1;JNE"},
		}
		for _, c := range cases {
			res, err := codegen.GenerateCInst(c.inst)
			assertCodegen(t, res, err, c.expected, false)
		}
	})

	t.Run("missing comp", func(t *testing.T) {
		cases := []asm.CInstruction{
			{Dest: "AM", Jump: "JNE"},
			{Dest: "AMD"},
			{Jump: "JGT"},
			{},
		}
		for _, inst := range cases {
			res, err := codegen.GenerateCInst(inst)
			assertCodegen(t, res, err, "", true)
		}
	})
}

func TestGenerateLabelDecl(t *testing.T) {
	codegen := asm.NewCodeGenerator(nil)

	t.Run("well formed labels", func(t *testing.T) {
		for _, name := range []string{"test123", "ping", "PONG", "TEST", "DUNNO"} {
			res, err := codegen.GenerateLabelDecl(asm.LabelDecl{Name: name})
			assertCodegen(t, res, err, "("+name+")", false)
		}
	})

	t.Run("empty or built-in name", func(t *testing.T) {
		for _, name := range []string{"", "SP", "R1", "LCL", "R15"} {
			res, err := codegen.GenerateLabelDecl(asm.LabelDecl{Name: name})
			assertCodegen(t, res, err, "", true)
		}
	})
}
