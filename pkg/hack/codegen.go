package hack

import (
	"fmt"
	"strconv"
)

// ----------------------------------------------------------------------------
// Translation tables

// Lookup tables that back the binary encoding, one per Hack bit-field.
//
//   - 'BuiltInTable' resolves a well-known register/IO name to its fixed RAM address.
//   - 'CompTable'/'DestTable'/'JumpTable' resolve the three C Instruction sub-fields to
//     the 7/3/3-bit opcode the ALU expects, ready to be shifted into place.
var (
	BuiltInTable = map[string]uint16{
		// Virtual Machine specific aliases (see project 7)
		"SP": 0, "LCL": 1, "ARG": 2, "THIS": 3, "THAT": 4,
		// Named general purpose registers
		"R0": 0, "R1": 1, "R2": 2, "R3": 3, "R4": 4, "R5": 5,
		"R6": 6, "R7": 7, "R8": 8, "R9": 9, "R10": 10, "R11": 11,
		"R12": 12, "R13": 13, "R14": 14, "R15": 15,
		// Memory mapped I/O locations
		"SCREEN": 16384, "KBD": 24576,
	}

	CompTable = map[string]uint16{
		// - Constants and identities
		"0": 0b0101010, "1": 0b0111111, "-1": 0b0111010,
		"D": 0b0001100, "A": 0b0110000, "M": 0b1110000,
		// - Binary and numerical negations
		"!D": 0b0001101, "!A": 0b0110001, "!M": 0b1110001,
		"-D": 0b0001111, "-A": 0b0110011, "-M": 0b1110011,
		// - Increment and decrement operations
		"D+1": 0b0011111, "A+1": 0b0110111, "M+1": 0b1110111,
		"D-1": 0b0001110, "A-1": 0b0110010, "M-1": 0b1110010,
		// - Register with register operations
		"D+A": 0b0000010, "D+M": 0b1000010,
		"D-A": 0b0010011, "D-M": 0b1010011,
		"A-D": 0b0000111, "M-D": 0b1000111,
		// - Bitwise register with register operations
		"D&A": 0b0000000, "D&M": 0b1000000,
		"D|A": 0b0010101, "D|M": 0b1010101,
	}

	DestTable = map[string]uint16{
		"": 0b000, "M": 0b001, "D": 0b010, "A": 0b100,
		"MD": 0b011, "AM": 0b101, "AD": 0b110, "AMD": 0b111,
	}

	JumpTable = map[string]uint16{
		"": 0b000, "JGT": 0b001, "JEQ": 0b010, "JGE": 0b011,
		"JLT": 0b100, "JNE": 0b101, "JLE": 0b110, "JMP": 0b111,
	}
)

// cInstField describes one bit-field of a C Instruction: which table resolves its
// mnemonic to an opcode and how far to shift that opcode into the final 16-bit word.
type cInstField struct {
	name  string
	value string
	table map[string]uint16
	shift uint
}

// ----------------------------------------------------------------------------
// Code Generator

// Takes a set of 'hack.Instruction' and spits out their binary counterparts.
//
// A Instructions whose location resolves to a previously unseen label are treated as a
// fresh variable declaration and get the next free RAM word starting at 16, exactly as
// the official assembler does; every other location kind is a straight lookup/parse.
type CodeGenerator struct {
	program    Program     // The set of instructions to convert in Hack binary format
	table      SymbolTable // Mapping to resolve user-defined labels to their underlying address
	nVarOffset uint16      // Next free offset (from 16) to hand out to an unseen variable
}

// Initializes and returns to the caller a brand new 'CodeGenerator' struct.
// Requires both a non-nil Program 'p' (what we want to translate) as well as
// an optionally nullable Symbol Table 'st' used to resolve user defined labels.
func NewCodeGenerator(p Program, st SymbolTable) CodeGenerator {
	return CodeGenerator{program: p, table: st}
}

// Translates every instruction in the 'Program' to its Hack binary (16-bit word) text.
func (cg *CodeGenerator) Generate() ([]string, error) {
	binary := make([]string, 0, len(cg.program))

	for _, instruction := range cg.program {
		var word string
		var err error

		switch typed := instruction.(type) {
		case AInstruction:
			word, err = cg.GenerateAInst(typed)
		case CInstruction:
			word, err = cg.GenerateCInst(typed)
		}

		if err != nil {
			return nil, err
		}
		binary = append(binary, word)
	}

	return binary, nil
}

// Specialized function to convert an A Instruction to the Hack format.
//
// The location is resolved differently depending on its kind ('Raw', 'Label', 'BuiltIn')
// before the same bound check and binary encoding is applied to all three.
func (cg *CodeGenerator) GenerateAInst(inst AInstruction) (string, error) {
	address, err := cg.resolveLocation(inst)
	if err != nil {
		return "", err
	}

	// An A instruction always has the first bit set to zero (the opcode bit), which in turn
	// means only 15 bits are left to address the Hack computer memory: valid addresses run
	// from 0 up to (but excluding) 'MaxAddressableMemory'.
	if address >= MaxAddressableMemory {
		return "", fmt.Errorf("location '%s' resolved to an out-of-bounds address %d", inst.LocName, address)
	}

	return fmt.Sprintf("%016b", address), nil
}

// resolveLocation turns an A Instruction's location into its concrete RAM address,
// allocating a new variable slot the first time an unrecognized label is encountered.
func (cg *CodeGenerator) resolveLocation(inst AInstruction) (uint16, error) {
	switch inst.LocType {
	case Raw:
		num, err := strconv.ParseInt(inst.LocName, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("location '%s' is not a valid raw address: %w", inst.LocName, err)
		}
		return uint16(num), nil

	case BuiltIn:
		address, found := BuiltInTable[inst.LocName]
		if !found {
			return 0, fmt.Errorf("unrecognized built-in location '%s'", inst.LocName)
		}
		return address, nil

	case Label:
		if address, found := cg.table[inst.LocName]; found {
			return address, nil
		}
		address := 16 + cg.nVarOffset
		cg.table[inst.LocName] = address // Future references resolve to the same slot
		cg.nVarOffset++
		return address, nil

	default:
		return 0, fmt.Errorf("unrecognized location type '%d' for '%s'", inst.LocType, inst.LocName)
	}
}

// Specialized function to convert a C Instruction to the Hack format.
//
// Each of the three sub-fields ('Comp', mandatory; 'Dest' and 'Jump', both optional and
// independent of one another) is looked up in its own translation table and OR-ed into
// the final word at its documented bit offset.
func (cg *CodeGenerator) GenerateCInst(inst CInstruction) (string, error) {
	if inst.Comp == "" {
		return "", fmt.Errorf("'Comp' sub-instruction should always be provided")
	}

	command := uint16(0b111 << 13) // The '111' opcode prefix shared by every C Instruction

	fields := []cInstField{
		{"comp", inst.Comp, CompTable, 6},
		{"dest", inst.Dest, DestTable, 3},
		{"jump", inst.Jump, JumpTable, 0},
	}
	for _, field := range fields {
		opcode, found := field.table[field.value]
		if !found {
			return "", fmt.Errorf("unable to translate C instruction, unknown '%s' opcode '%s'", field.name, field.value)
		}
		command |= opcode << field.shift
	}

	return fmt.Sprintf("%016b", command), nil
}
