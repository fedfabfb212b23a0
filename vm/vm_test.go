package vm

import (
	"testing"

	"github.com/krehermann/evmasm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVM_Run(t *testing.T) {
	type fields struct {
		data     []byte
		calldata []byte
	}
	tests := []struct {
		name    string
		fields  fields
		wantErr error
		check   func(*testing.T, *VM)
	}{
		{
			name: "add 2 + 4",
			fields: fields{
				data: []byte{byte(PUSH1), 0x02, byte(PUSH1), 0x04, byte(ADD)},
			},
			check: checkStack(word(6)),
		},
		{
			name: "sub wraps",
			fields: fields{
				// 0 - 1
				data: []byte{byte(PUSH1), 0x01, byte(PUSH0), byte(SUB)},
			},
			check: func(t *testing.T, vm *VM) {
				top, err := vm.Stack.Peek()
				require.NoError(t, err)
				assert.Equal(t, word(-1), top)
			},
		},
		{
			name: "mstore then return",
			fields: fields{
				data: []byte{
					byte(PUSH1), 0x01, byte(PUSH1 + 1), 0x03, 0xff, byte(MSTORE),
					byte(PUSH1), 0x20, byte(PUSH0), byte(RETURN),
				},
			},
			check: func(t *testing.T, vm *VM) {
				// the value 1 was stored at offset 0x3ff
				assert.Len(t, vm.Memory(), 0x420)
				assert.Equal(t, make([]byte, 32), vm.Returned())
			},
		},
		{
			name: "mstore8 and mload",
			fields: fields{
				data: []byte{
					byte(PUSH1), 0xab, byte(PUSH1), 0x1f, byte(MSTORE8),
					byte(PUSH0), byte(MLOAD),
				},
			},
			check: checkStack(word(0xab)),
		},
		{
			name: "sstore sload",
			fields: fields{
				data: []byte{
					byte(PUSH1), 0x07, byte(PUSH1), 0x01, byte(SSTORE),
					byte(PUSH1), 0x01, byte(SLOAD),
				},
			},
			check: func(t *testing.T, vm *VM) {
				checkStack(word(7))(t, vm)
				assert.Equal(t, map[Key]types.Word{word(1): word(7)}, vm.State().Snapshot())
			},
		},
		{
			name: "calldata",
			fields: fields{
				data:     []byte{byte(CALLDATASIZE), byte(PUSH0), byte(CALLDATALOAD)},
				calldata: []byte{0x01},
			},
			check: func(t *testing.T, vm *VM) {
				var w types.Word
				w[0] = 0x01
				checkStack(word(1), w)(t, vm)
			},
		},
		{
			name: "jumpi loop counts down",
			fields: fields{
				data: []byte{
					// counter
					byte(PUSH1), 0x03,
					// pc 2, decrement
					byte(JUMPDEST),
					byte(PUSH1), 0x01, byte(SWAP1), byte(SUB),
					byte(DUP1), byte(PUSH1), 0x02, byte(JUMPI),
				},
			},
			check: checkStack(word(0)),
		},
		{
			name: "jump into push data",
			fields: fields{
				data: []byte{byte(PUSH1), 0x04, byte(JUMP), byte(PUSH1), byte(JUMPDEST)},
			},
			wantErr: ErrInvalidJump,
		},
		{
			name: "stop halts",
			fields: fields{
				data: []byte{byte(PUSH0), byte(STOP), byte(POP), byte(POP)},
			},
			check: checkStack(word(0)),
		},
		{
			name: "underflow",
			fields: fields{
				data: []byte{byte(ADD)},
			},
			wantErr: ErrStackUnderflow,
		},
		{
			name: "unsupported opcode",
			fields: fields{
				data: []byte{byte(PUSH0), byte(PUSH0), 0xa0},
			},
			wantErr: ErrInvalidOpcode,
		},
		{
			name: "mstore near max offset",
			fields: fields{
				data: []byte{
					byte(PUSH1), 0x01,
					byte(PUSH1 + 7), 0x7f, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
					byte(MSTORE),
				},
			},
			wantErr: ErrMemoryLimit,
		},
		{
			name: "mload near max offset",
			fields: fields{
				data: []byte{
					byte(PUSH1 + 7), 0x7f, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
					byte(MLOAD),
				},
			},
			wantErr: ErrMemoryLimit,
		},
		{
			name: "return near max offset",
			fields: fields{
				data: []byte{
					byte(PUSH1), 0x01,
					byte(PUSH1 + 7), 0x7f, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
					byte(RETURN),
				},
			},
			wantErr: ErrMemoryLimit,
		},
		{
			name: "revert",
			fields: fields{
				data: []byte{byte(PUSH0), byte(PUSH0), byte(REVERT)},
			},
			wantErr: ErrReverted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := NewVM(tt.fields.data,
				LoggerOpt(zap.Must(zap.NewDevelopment())),
				CalldataOpt(tt.fields.calldata),
			)
			var err error
			assert.NotPanics(t, func() { err = vm.Run() })
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			if tt.check != nil {
				tt.check(t, vm)
			}
		})
	}
}

func TestVM_Tracer(t *testing.T) {
	var pcs []int
	var ops []Instruction
	vm := NewVM([]byte{byte(PUSH1), 0x01, byte(PUSH0), byte(ADD)},
		TracerOpt(func(pc int, inst Instruction, _ *Stack) {
			pcs = append(pcs, pc)
			ops = append(ops, inst)
		}))
	require.NoError(t, vm.Run())
	assert.Equal(t, []int{0, 2, 3}, pcs)
	assert.Equal(t, []Instruction{PUSH1, PUSH0, ADD}, ops)
}

func TestVM_MemoryLimit(t *testing.T) {
	vm := NewVM([]byte{byte(PUSH0), byte(PUSH1), 0xff, byte(MSTORE)}, MemoryLimitOpt(64))
	assert.ErrorIs(t, vm.Run(), ErrMemoryLimit)
}

// checkStack asserts the stack equals want, bottom first.
func checkStack(want ...types.Word) func(*testing.T, *VM) {
	return func(t *testing.T, vm *VM) {
		assert.Equal(t, want, vm.Stack.Words())
	}
}
