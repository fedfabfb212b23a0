package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Bytecode is assembled program text. Callers treat it as opaque: contract
// code for an account or call data for a transaction.
type Bytecode []byte

func BytecodeFromHex(s string) (Bytecode, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("bytecode from hex: %w", err)
	}
	return Bytecode(b), nil
}

func (b Bytecode) String() string {
	return hex.EncodeToString(b)
}

// Hex is the 0x prefixed form used on the wire.
func (b Bytecode) Hex() string {
	return "0x" + b.String()
}

func (b Bytecode) MarshalText() ([]byte, error) {
	return []byte(b.Hex()), nil
}

func (b *Bytecode) UnmarshalText(text []byte) error {
	v, err := BytecodeFromHex(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
