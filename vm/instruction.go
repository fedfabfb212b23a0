package vm

import (
	"fmt"
	"iter"
	"strings"
	"sync"
)

type Instruction byte

const (
	STOP         Instruction = 0x00
	ADD          Instruction = 0x01
	MUL          Instruction = 0x02
	SUB          Instruction = 0x03
	DIV          Instruction = 0x04
	MOD          Instruction = 0x06
	EXP          Instruction = 0x0a
	LT           Instruction = 0x10
	GT           Instruction = 0x11
	EQ           Instruction = 0x14
	ISZERO       Instruction = 0x15
	AND          Instruction = 0x16
	OR           Instruction = 0x17
	XOR          Instruction = 0x18
	NOT          Instruction = 0x19
	SHL          Instruction = 0x1b
	SHR          Instruction = 0x1c
	CALLDATALOAD Instruction = 0x35
	CALLDATASIZE Instruction = 0x36
	POP          Instruction = 0x50
	MLOAD        Instruction = 0x51
	MSTORE       Instruction = 0x52
	MSTORE8      Instruction = 0x53
	SLOAD        Instruction = 0x54
	SSTORE       Instruction = 0x55
	JUMP         Instruction = 0x56
	JUMPI        Instruction = 0x57
	PC           Instruction = 0x58
	MSIZE        Instruction = 0x59
	JUMPDEST     Instruction = 0x5b
	PUSH0        Instruction = 0x5f
	PUSH1        Instruction = 0x60
	PUSH32       Instruction = 0x7f
	DUP1         Instruction = 0x80
	DUP16        Instruction = 0x8f
	SWAP1        Instruction = 0x90
	SWAP16       Instruction = 0x9f
	RETURN       Instruction = 0xf3
	REVERT       Instruction = 0xfd
)

// definitions is the instruction set, indexed by opcode. Empty slots are
// undefined opcodes.
var definitions = buildDefinitions()

// Definitions returns a copy of the instruction set.
func Definitions() [256]string {
	return definitions
}

func buildDefinitions() [256]string {
	var d [256]string

	copy(d[0x00:], []string{"STOP", "ADD", "MUL", "SUB", "DIV", "SDIV", "MOD", "SMOD",
		"ADDMOD", "MULMOD", "EXP", "SIGNEXTEND"})
	copy(d[0x10:], []string{"LT", "GT", "SLT", "SGT", "EQ", "ISZERO", "AND", "OR",
		"XOR", "NOT", "BYTE", "SHL", "SHR", "SAR"})
	d[0x20] = "KECCAK256"
	copy(d[0x30:], []string{"ADDRESS", "BALANCE", "ORIGIN", "CALLER", "CALLVALUE",
		"CALLDATALOAD", "CALLDATASIZE", "CALLDATACOPY", "CODESIZE", "CODECOPY",
		"GASPRICE", "EXTCODESIZE", "EXTCODECOPY", "RETURNDATASIZE", "RETURNDATACOPY",
		"EXTCODEHASH"})
	copy(d[0x40:], []string{"BLOCKHASH", "COINBASE", "TIMESTAMP", "NUMBER",
		"DIFFICULTY", "GASLIMIT", "CHAINID", "SELFBALANCE", "BASEFEE", "BLOBHASH",
		"BLOBBASEFEE"})
	copy(d[0x50:], []string{"POP", "MLOAD", "MSTORE", "MSTORE8", "SLOAD", "SSTORE",
		"JUMP", "JUMPI", "PC", "MSIZE", "GAS", "JUMPDEST", "TLOAD", "TSTORE", "MCOPY",
		"PUSH0"})
	for i := 0; i < 32; i++ {
		d[int(PUSH1)+i] = fmt.Sprintf("PUSH%d", i+1)
	}
	for i := 0; i < 16; i++ {
		d[int(DUP1)+i] = fmt.Sprintf("DUP%d", i+1)
		d[int(SWAP1)+i] = fmt.Sprintf("SWAP%d", i+1)
	}
	for i := 0; i < 5; i++ {
		d[0xa0+i] = fmt.Sprintf("LOG%d", i)
	}
	copy(d[0xf0:], []string{"CREATE", "CALL", "CALLCODE", "RETURN", "DELEGATECALL",
		"CREATE2"})
	d[0xfa] = "STATICCALL"
	d[0xfd] = "REVERT"
	d[0xfe] = "INVALID"
	d[0xff] = "SELFDESTRUCT"

	return d
}

func (i Instruction) String() string {
	if name := definitions[i]; name != "" {
		return name
	}
	return fmt.Sprintf("0x%02x", byte(i))
}

// Defined reports whether the opcode has a mnemonic in the instruction set.
func (i Instruction) Defined() bool {
	return definitions[i] != ""
}

// PushSize is the number of immediate bytes following the opcode.
func (i Instruction) PushSize() int {
	if i >= PUSH1 && i <= PUSH32 {
		return int(i-PUSH1) + 1
	}
	return 0
}

// Table maps mnemonic text to opcode. It has no mutators, so copies share
// one map safely across goroutines.
type Table struct {
	ops map[string]Instruction
}

// NewTable registers every defined mnemonic of defs in its canonical case
// and fully lowercased.
func NewTable(defs [256]string) Table {
	ops := make(map[string]Instruction, 2*len(defs))
	for op, name := range defs {
		if name == "" {
			continue
		}
		ops[name] = Instruction(op)
		ops[strings.ToLower(name)] = Instruction(op)
	}
	return Table{ops: ops}
}

func (t Table) Lookup(mnemonic string) (Instruction, bool) {
	i, ok := t.ops[mnemonic]
	return i, ok
}

// Len counts registered names, aliases included.
func (t Table) Len() int {
	return len(t.ops)
}

// All yields every registered name and its opcode, in no particular order.
func (t Table) All() iter.Seq2[string, Instruction] {
	return func(yield func(string, Instruction) bool) {
		for name, op := range t.ops {
			if !yield(name, op) {
				return
			}
		}
	}
}

var (
	mnemonicsOnce sync.Once
	mnemonics     Table
)

// Mnemonics returns the process wide table for the instruction set, building
// it on first use.
func Mnemonics() Table {
	mnemonicsOnce.Do(func() {
		mnemonics = NewTable(definitions)
	})
	return mnemonics
}
