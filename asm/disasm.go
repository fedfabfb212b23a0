package asm

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/krehermann/evmasm/vm"
)

var ErrTruncatedPush = errors.New("truncated push data")

// Op is one decoded instruction.
type Op struct {
	PC          int
	Instruction vm.Instruction
	// Immediate holds the data bytes of a push.
	Immediate []byte
}

// String renders op so that assembling it yields the same bytes. Undefined
// opcodes are written as raw hex.
func (op Op) String() string {
	if !op.Instruction.Defined() {
		return hex.EncodeToString([]byte{byte(op.Instruction)})
	}
	if len(op.Immediate) > 0 {
		return op.Instruction.String() + " " + hex.EncodeToString(op.Immediate)
	}
	return op.Instruction.String()
}

func Disassemble(code []byte) ([]Op, error) {
	var ops []Op
	for pc := 0; pc < len(code); {
		inst := vm.Instruction(code[pc])
		op := Op{PC: pc, Instruction: inst}
		n := inst.PushSize()
		if pc+1+n > len(code) {
			return ops, fmt.Errorf("disassemble at pc %d: %s needs %d bytes, %d left: %w",
				pc, inst, n, len(code)-pc-1, ErrTruncatedPush)
		}
		if n > 0 {
			op.Immediate = code[pc+1 : pc+1+n]
		}
		ops = append(ops, op)
		pc += 1 + n
	}
	return ops, nil
}

// Format disassembles code into one instruction per line.
func Format(code []byte) (string, error) {
	ops, err := Disassemble(code)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, op := range ops {
		sb.WriteString(op.String())
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
