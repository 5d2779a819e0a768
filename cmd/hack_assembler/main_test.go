package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeAsmFile(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name+".asm")
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		t.Fatalf("unable to write fixture '%s': %s", path, err)
	}
	return path
}

func TestHackAssemblerAdd(t *testing.T) {
	dir := t.TempDir()
	input := writeAsmFile(t, dir, "Add", `
		@2
		D=A
		@3
		D=D+A
		@0
		M=D
	`)
	output := filepath.Join(dir, "Add.hack")

	status := Handler([]string{input, output}, nil)
	if status != 0 {
		t.Fatalf("expected exit status 0, got %d", status)
	}

	compiled, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("expected output file to be generated: %s", err)
	}

	lines := strings.Split(strings.TrimRight(string(compiled), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 compiled instructions, got %d: %v", len(lines), lines)
	}
	for _, line := range lines {
		if len(line) != 16 {
			t.Fatalf("expected every instruction to be 16 bits, got %q", line)
		}
	}
}

func TestHackAssemblerResolvesLabelsAndVariables(t *testing.T) {
	dir := t.TempDir()
	input := writeAsmFile(t, dir, "Loop", `
		@i
		M=0
		(LOOP)
		@i
		M=M+1
		@i
		D=M
		@16
		D=D-A
		@LOOP
		D;JLT
	`)
	output := filepath.Join(dir, "Loop.hack")

	status := Handler([]string{input, output}, nil)
	if status != 0 {
		t.Fatalf("expected exit status 0, got %d", status)
	}

	compiled, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("expected output file to be generated: %s", err)
	}

	lines := strings.Split(strings.TrimRight(string(compiled), "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 compiled instructions (the LOOP label declares no instruction), got %d: %v", len(lines), lines)
	}
}

func TestHackAssemblerRejectsMissingInput(t *testing.T) {
	dir := t.TempDir()
	if status := Handler([]string{filepath.Join(dir, "missing.asm"), filepath.Join(dir, "missing.hack")}, nil); status == 0 {
		t.Fatalf("expected a non zero exit status for a missing input file")
	}
}
