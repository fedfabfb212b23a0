package asm

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/krehermann/evmasm/types"
	"github.com/krehermann/evmasm/vm"
)

const (
	hexPrefix     = "0x"
	decimalPrefix = "0t"
)

// EncodeToken returns the bytes a single token assembles to. Classification
// is tried in order: mnemonic, 0x literal, 0t literal, raw hex bytes.
func EncodeToken(token string, table vm.Table) ([]byte, error) {
	if op, ok := table.Lookup(token); ok {
		return []byte{byte(op)}, nil
	}

	if digits, ok := strings.CutPrefix(token, hexPrefix); ok {
		b, err := hex.DecodeString(digits)
		if err != nil {
			return nil, newError(MalformedHex, token, err)
		}
		if len(b) > types.WORD_BYTE_LEN {
			return nil, newError(OversizedLiteral, token, nil)
		}
		return PushBytes(b), nil
	}

	if digits, ok := strings.CutPrefix(token, decimalPrefix); ok {
		v, err := parseDecimal(digits)
		if err != nil {
			return nil, newError(InvalidDecimal, token, nil)
		}
		b := v.Bytes()
		if len(b) > types.WORD_BYTE_LEN {
			return nil, newError(OversizedLiteral, token, nil)
		}
		return PushBytes(b), nil
	}

	b, err := hex.DecodeString(token)
	if err == nil {
		return b, nil
	}
	if isHexDigits(token) {
		// only the digit count is wrong
		return nil, newError(MalformedHex, token, err)
	}
	return nil, newError(UnrecognizedToken, token, nil)
}

// PushBytes wraps a big-endian value in the shortest push instruction that
// holds it. Leading zero bytes are dropped; zero becomes PUSH0. b must be at
// most 32 bytes.
func PushBytes(b []byte) []byte {
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	if len(b) == 0 {
		return []byte{byte(vm.PUSH0)}
	}

	out := make([]byte, 0, len(b)+1)
	out = append(out, byte(vm.PUSH1)+byte(len(b)-1))
	return append(out, b...)
}

func parseDecimal(s string) (*big.Int, error) {
	if s == "" {
		return nil, InvalidDecimal
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, InvalidDecimal
		}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, InvalidDecimal
	}
	return v, nil
}

func isHexDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
