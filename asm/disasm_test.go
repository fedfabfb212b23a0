package asm

import (
	"testing"

	"github.com/krehermann/evmasm/types"
	"github.com/krehermann/evmasm/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisassemble(t *testing.T) {
	code := types.Bytecode{0x60, 0x01, 0x61, 0x00, 0xff, 0x52, 0x0c, 0x5f}
	ops, err := Disassemble(code)
	require.NoError(t, err)

	want := []Op{
		{PC: 0, Instruction: vm.PUSH1, Immediate: []byte{0x01}},
		{PC: 2, Instruction: vm.PUSH1 + 1, Immediate: []byte{0x00, 0xff}},
		{PC: 5, Instruction: vm.MSTORE},
		{PC: 6, Instruction: vm.Instruction(0x0c)},
		{PC: 7, Instruction: vm.PUSH0},
	}
	assert.Equal(t, want, ops)

	text, err := Format(code)
	require.NoError(t, err)
	assert.Equal(t, "PUSH1 01\nPUSH2 00ff\nMSTORE\n0c\nPUSH0\n", text)

	// leading zeros in push data survive a round trip
	back, err := Assemble(text)
	require.NoError(t, err)
	assert.Equal(t, code, back)
}

func TestDisassemble_Truncated(t *testing.T) {
	ops, err := Disassemble([]byte{0x01, 0x62, 0xaa})
	assert.ErrorIs(t, err, ErrTruncatedPush)
	assert.Len(t, ops, 1)
}
