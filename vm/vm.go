package vm

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/krehermann/evmasm/types"
	"go.uber.org/zap"
)

var (
	ErrInvalidOpcode = errors.New("invalid opcode")
	ErrInvalidJump   = errors.New("invalid jump destination")
	ErrMemoryLimit   = errors.New("memory limit exceeded")
	ErrReverted      = errors.New("execution reverted")
)

const defaultMemoryLimit = 1 << 20

// Tracer is called before each instruction executes.
type Tracer func(pc int, inst Instruction, stack *Stack)

type VM struct {
	// assembled contract code
	data []byte
	// instruction pointer
	ip        int
	calldata  []byte
	memory    []byte
	memLimit  int
	jumpdests map[int]bool
	returned  []byte

	Stack         *Stack
	contractState *State
	tracer        Tracer
	logger        *zap.Logger
}

type VMOpt func(*VM) *VM

func LoggerOpt(l *zap.Logger) VMOpt {
	return func(vm *VM) *VM {
		vm.logger = l
		return vm
	}
}

func CalldataOpt(b []byte) VMOpt {
	return func(vm *VM) *VM {
		vm.calldata = b
		return vm
	}
}

// StateOpt runs the code against existing storage.
func StateOpt(s *State) VMOpt {
	return func(vm *VM) *VM {
		vm.contractState = s
		return vm
	}
}

func MemoryLimitOpt(n int) VMOpt {
	return func(vm *VM) *VM {
		vm.memLimit = n
		return vm
	}
}

func TracerOpt(t Tracer) VMOpt {
	return func(vm *VM) *VM {
		vm.tracer = t
		return vm
	}
}

func NewVM(data []byte, opts ...VMOpt) *VM {
	vm := &VM{
		data:          data,
		ip:            0,
		memLimit:      defaultMemoryLimit,
		Stack:         NewStack(),
		contractState: NewState(),
		logger:        zap.L(),
	}

	for _, opt := range opts {
		vm = opt(vm)
	}

	vm.logger = vm.logger.Named("vm")
	vm.jumpdests = analyzeJumpdests(data)

	return vm
}

// Run executes until STOP, RETURN, REVERT, an error, or the end of code.
func (vm *VM) Run() error {
	for vm.ip < len(vm.data) {
		inst := Instruction(vm.data[vm.ip])

		vm.logger.Debug("step",
			zap.Int("pc", vm.ip),
			zap.Stringer("op", inst),
			zap.Int("depth", vm.Stack.Len()))
		if vm.tracer != nil {
			vm.tracer(vm.ip, inst, vm.Stack)
		}

		halt, err := vm.Exec(inst)
		if err != nil {
			return fmt.Errorf("vm run at pc %d (%s): %w", vm.ip, inst, err)
		}
		if halt {
			return nil
		}
	}
	return nil
}

// Returned is the data passed to RETURN or REVERT.
func (vm *VM) Returned() []byte {
	return vm.returned
}

func (vm *VM) Memory() []byte {
	return vm.memory
}

func (vm *VM) State() *State {
	return vm.contractState
}

// Exec runs the instruction at ip and advances past it. halt is true once
// execution must stop.
func (vm *VM) Exec(inst Instruction) (halt bool, err error) {
	next := vm.ip + 1

	switch {
	case inst == STOP:
		return true, nil

	case inst == PUSH0:
		err = vm.Stack.Push(types.Word{})

	case inst.PushSize() > 0:
		n := inst.PushSize()
		// past the end of code reads as zero
		imm := make([]byte, n)
		if vm.ip+1 < len(vm.data) {
			copy(imm, vm.data[vm.ip+1:])
		}
		w, _ := types.WordFromBytes(imm)
		err = vm.Stack.Push(w)
		next += n

	case inst >= DUP1 && inst <= DUP16:
		err = vm.Stack.Dup(int(inst-DUP1) + 1)

	case inst >= SWAP1 && inst <= SWAP16:
		err = vm.Stack.Swap(int(inst-SWAP1) + 1)

	case inst == POP:
		_, err = vm.Stack.Pop()

	case inst == PC:
		err = vm.pushUint(uint64(vm.ip))

	case inst == MSIZE:
		err = vm.pushUint(uint64(len(vm.memory)))

	case inst == CALLDATASIZE:
		err = vm.pushUint(uint64(len(vm.calldata)))

	case inst == JUMPDEST:

	case inst == JUMP:
		var dest types.Word
		dest, err = vm.Stack.Pop()
		if err == nil {
			next, err = vm.jumpTarget(dest)
		}

	case inst == JUMPI:
		var args []types.Word
		args, err = vm.Stack.PopN(2)
		if err == nil && !args[1].IsZero() {
			next, err = vm.jumpTarget(args[0])
		}

	case inst == RETURN || inst == REVERT:
		var args []types.Word
		args, err = vm.Stack.PopN(2)
		if err != nil {
			break
		}
		var ret []byte
		ret, err = vm.readMemory(args[0], args[1])
		if err != nil {
			break
		}
		vm.returned = ret
		if inst == REVERT {
			return true, ErrReverted
		}
		return true, nil

	default:
		err = vm.execWordOp(inst)
	}

	if err != nil {
		return true, err
	}
	vm.ip = next
	return false, nil
}

func (vm *VM) execWordOp(inst Instruction) error {
	switch inst {
	case ADD, MUL, SUB, DIV, MOD, EXP, LT, GT, EQ, AND, OR, XOR, SHL, SHR:
		args, err := vm.Stack.PopN(2)
		if err != nil {
			return err
		}
		a, b := args[0].Big(), args[1].Big()
		res := binaryOp(inst, a, b)
		vm.logger.Debug(inst.String(),
			zap.Stringer("a", a),
			zap.Stringer("b", b),
			zap.Stringer("result", res))
		return vm.Stack.Push(types.WordFromBig(res))

	case ISZERO, NOT:
		w, err := vm.Stack.Pop()
		if err != nil {
			return err
		}
		if inst == NOT {
			for i := range w {
				w[i] = ^w[i]
			}
			return vm.Stack.Push(w)
		}
		return vm.Stack.Push(boolWord(w.IsZero()))

	case CALLDATALOAD:
		off, err := vm.Stack.Pop()
		if err != nil {
			return err
		}
		var w types.Word
		if o := off.Big(); o.IsInt64() && o.Int64() < int64(len(vm.calldata)) {
			copy(w[:], vm.calldata[o.Int64():])
		}
		return vm.Stack.Push(w)

	case MLOAD:
		off, err := vm.Stack.Pop()
		if err != nil {
			return err
		}
		b, err := vm.readMemory(off, types.WordFromBig(big.NewInt(types.WORD_BYTE_LEN)))
		if err != nil {
			return err
		}
		w, _ := types.WordFromBytes(b)
		return vm.Stack.Push(w)

	case MSTORE, MSTORE8:
		args, err := vm.Stack.PopN(2)
		if err != nil {
			return err
		}
		size := types.WORD_BYTE_LEN
		val := args[1][:]
		if inst == MSTORE8 {
			size = 1
			val = args[1][types.WORD_BYTE_LEN-1:]
		}
		off, err := vm.expandMemory(args[0], size)
		if err != nil {
			return err
		}
		copy(vm.memory[off:], val)
		return nil

	case SLOAD:
		k, err := vm.Stack.Pop()
		if err != nil {
			return err
		}
		return vm.Stack.Push(vm.contractState.Get(k))

	case SSTORE:
		args, err := vm.Stack.PopN(2)
		if err != nil {
			return err
		}
		vm.logger.Debug("store",
			zap.Stringer("key", args[0]),
			zap.Stringer("val", args[1]))
		return vm.contractState.Put(args[0], args[1])
	}

	return fmt.Errorf("%s: %w", inst, ErrInvalidOpcode)
}

func binaryOp(inst Instruction, a, b *big.Int) *big.Int {
	res := new(big.Int)
	switch inst {
	case ADD:
		res.Add(a, b)
	case MUL:
		res.Mul(a, b)
	case SUB:
		res.Sub(a, b)
	case DIV:
		if b.Sign() != 0 {
			res.Div(a, b)
		}
	case MOD:
		if b.Sign() != 0 {
			res.Mod(a, b)
		}
	case EXP:
		res.Exp(a, b, new(big.Int).Lsh(big.NewInt(1), 256))
	case LT:
		res = boolWord(a.Cmp(b) < 0).Big()
	case GT:
		res = boolWord(a.Cmp(b) > 0).Big()
	case EQ:
		res = boolWord(a.Cmp(b) == 0).Big()
	case AND:
		res.And(a, b)
	case OR:
		res.Or(a, b)
	case XOR:
		res.Xor(a, b)
	// shift amount is the top of stack
	case SHL:
		if a.IsUint64() && a.Uint64() < 256 {
			res.Lsh(b, uint(a.Uint64()))
		}
	case SHR:
		if a.IsUint64() && a.Uint64() < 256 {
			res.Rsh(b, uint(a.Uint64()))
		}
	}
	return res
}

func boolWord(v bool) types.Word {
	var w types.Word
	if v {
		w[types.WORD_BYTE_LEN-1] = 1
	}
	return w
}

func (vm *VM) pushUint(v uint64) error {
	return vm.Stack.Push(types.WordFromBig(new(big.Int).SetUint64(v)))
}

func (vm *VM) jumpTarget(dest types.Word) (int, error) {
	d := dest.Big()
	if !d.IsInt64() || !vm.jumpdests[int(d.Int64())] {
		return 0, fmt.Errorf("%s: %w", d, ErrInvalidJump)
	}
	return int(d.Int64()), nil
}

// expandMemory grows memory to cover [off, off+size) in 32 byte steps and
// returns off.
func (vm *VM) expandMemory(offset types.Word, size int) (int, error) {
	o := offset.Big()
	if size > vm.memLimit || !o.IsInt64() || o.Int64() > int64(vm.memLimit-size) {
		return 0, fmt.Errorf("offset %s size %d: %w", o, size, ErrMemoryLimit)
	}
	off := int(o.Int64())
	if end := off + size; end > len(vm.memory) {
		words := (end + types.WORD_BYTE_LEN - 1) / types.WORD_BYTE_LEN
		grown := make([]byte, words*types.WORD_BYTE_LEN)
		copy(grown, vm.memory)
		vm.memory = grown
	}
	return off, nil
}

func (vm *VM) readMemory(offset, size types.Word) ([]byte, error) {
	s := size.Big()
	if !s.IsInt64() || s.Int64() > int64(vm.memLimit) {
		return nil, fmt.Errorf("size %s: %w", s, ErrMemoryLimit)
	}
	n := int(s.Int64())
	if n == 0 {
		return []byte{}, nil
	}
	off, err := vm.expandMemory(offset, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, vm.memory[off:off+n])
	return out, nil
}

// analyzeJumpdests marks JUMPDEST bytes that are not push data.
func analyzeJumpdests(code []byte) map[int]bool {
	dests := make(map[int]bool)
	for pc := 0; pc < len(code); pc++ {
		inst := Instruction(code[pc])
		if inst == JUMPDEST {
			dests[pc] = true
		}
		pc += inst.PushSize()
	}
	return dests
}
