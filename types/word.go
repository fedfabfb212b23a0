package types

import (
	"fmt"
	"math/big"
)

const WORD_BYTE_LEN = 32

// Word is a 256 bit unsigned value, big-endian.
type Word [WORD_BYTE_LEN]uint8

var wordModulus = new(big.Int).Lsh(big.NewInt(1), 8*WORD_BYTE_LEN)

// WordFromBytes left pads b to 32 bytes.
func WordFromBytes(b []byte) (Word, error) {
	var w Word
	if len(b) > WORD_BYTE_LEN {
		return w, fmt.Errorf("given byte slice len %d exceeds WORD_BYTE_LEN", len(b))
	}
	copy(w[WORD_BYTE_LEN-len(b):], b)
	return w, nil
}

// WordFromBig reduces v modulo 2^256. Negative values wrap as two's complement.
func WordFromBig(v *big.Int) Word {
	var w Word
	new(big.Int).Mod(v, wordModulus).FillBytes(w[:])
	return w
}

func (w Word) Big() *big.Int {
	return new(big.Int).SetBytes(w[:])
}

// Trimmed returns the value without leading zero bytes. Zero is empty.
func (w Word) Trimmed() []byte {
	for i, b := range w {
		if b != 0 {
			return w[i:]
		}
	}
	return []byte{}
}

func (w Word) IsZero() bool {
	return len(w.Trimmed()) == 0
}

func (w Word) String() string {
	return w.Big().String()
}
