package vm

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMnemonics(t *testing.T) {
	table := Mnemonics()
	for op, name := range Definitions() {
		if name == "" {
			assert.False(t, Instruction(op).Defined())
			continue
		}
		got, ok := table.Lookup(name)
		assert.True(t, ok, name)
		assert.Equal(t, Instruction(op), got)

		got, ok = table.Lookup(strings.ToLower(name))
		assert.True(t, ok, name)
		assert.Equal(t, Instruction(op), got)
	}

	_, ok := table.Lookup("Mstore")
	assert.False(t, ok)
}

func TestMnemonics_Shared(t *testing.T) {
	a, b := Mnemonics(), Mnemonics()
	assert.Equal(t, reflect.ValueOf(a.ops).Pointer(), reflect.ValueOf(b.ops).Pointer())

	defined := 0
	for _, name := range Definitions() {
		if name != "" {
			defined++
		}
	}
	assert.Equal(t, 149, defined)
	assert.Equal(t, 2*defined, a.Len())
}

func TestInstruction(t *testing.T) {
	tests := []struct {
		inst     Instruction
		name     string
		pushSize int
	}{
		{STOP, "STOP", 0},
		{MSTORE, "MSTORE", 0},
		{PUSH0, "PUSH0", 0},
		{PUSH1, "PUSH1", 1},
		{PUSH1 + 1, "PUSH2", 2},
		{PUSH32, "PUSH32", 32},
		{DUP16, "DUP16", 0},
		{SWAP1, "SWAP1", 0},
		{Instruction(0x0c), "0x0c", 0},
		{Instruction(0xfe), "INVALID", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.inst.String())
			assert.Equal(t, tt.pushSize, tt.inst.PushSize())
		})
	}
}

func TestDefinitions_ReturnsCopy(t *testing.T) {
	defs := Definitions()
	defs[byte(MSTORE)] = "CHANGED"

	assert.Equal(t, "MSTORE", MSTORE.String())
	assert.Equal(t, "MSTORE", Definitions()[MSTORE])

	// a table built from the copy does not affect the shared one
	custom := NewTable(defs)
	_, ok := custom.Lookup("CHANGED")
	assert.True(t, ok)
	_, ok = Mnemonics().Lookup("CHANGED")
	assert.False(t, ok)
}

func TestTable_All(t *testing.T) {
	var defs [256]string
	defs[0x2a] = "ANSWER"
	got := make(map[string]Instruction)
	for name, op := range NewTable(defs).All() {
		got[name] = op
	}
	assert.Equal(t, map[string]Instruction{"ANSWER": 0x2a, "answer": 0x2a}, got)

	var empty Table
	_, ok := empty.Lookup("ADD")
	assert.False(t, ok)
	assert.Zero(t, empty.Len())
}
