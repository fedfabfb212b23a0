package asm

import (
	"github.com/krehermann/evmasm/types"
	"github.com/krehermann/evmasm/vm"
	"go.uber.org/zap"
)

// Assembler turns mnemonic text into bytecode. It holds no per-call state and
// is safe for concurrent use.
type Assembler struct {
	table  vm.Table
	logger *zap.Logger
}

type Option func(*Assembler) *Assembler

// WithTable replaces the shared instruction table.
func WithTable(t vm.Table) Option {
	return func(a *Assembler) *Assembler {
		a.table = t
		return a
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Assembler) *Assembler {
		a.logger = l
		return a
	}
}

func New(opts ...Option) *Assembler {
	a := &Assembler{
		table:  vm.Mnemonics(),
		logger: zap.L(),
	}
	for _, opt := range opts {
		a = opt(a)
	}
	a.logger = a.logger.Named("asm")
	return a
}

// Assemble encodes every token of src in order. The first bad token aborts
// the whole assembly and no partial bytecode is returned.
func (a *Assembler) Assemble(src string) (types.Bytecode, error) {
	code := make([]byte, 0, len(src)/2)
	n := 0
	for tok := range Tokens(src) {
		b, err := EncodeToken(tok, a.table)
		if err != nil {
			a.logger.Debug("assemble failed",
				zap.Int("token", n),
				zap.Error(err))
			return nil, err
		}
		code = append(code, b...)
		n++
	}

	a.logger.Debug("assembled",
		zap.Int("tokens", n),
		zap.Int("bytes", len(code)))
	return types.Bytecode(code), nil
}

// Assemble uses the default instruction table.
func Assemble(src string) (types.Bytecode, error) {
	return New().Assemble(src)
}
