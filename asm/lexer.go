package asm

import "iter"

// Lexer splits source text into whitespace separated tokens. A '#' starts a
// comment running to the end of the line. Tokens are substrings of the input.
type Lexer struct {
	input string
	pos   int
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Next returns the next token, or false once the input is exhausted.
func (l *Lexer) Next() (string, bool) {
	start := -1
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch c {
		case '#':
			// the comment ends a pending token
			if start >= 0 {
				return l.input[start:l.pos], true
			}
			l.skipComment()
		case ' ', '\t', '\n':
			if start >= 0 {
				tok := l.input[start:l.pos]
				l.pos++
				return tok, true
			}
			l.pos++
		default:
			if start < 0 {
				start = l.pos
			}
			l.pos++
		}
	}

	if start >= 0 {
		return l.input[start:], true
	}
	return "", false
}

// skipComment advances past the next newline, or to the end of input.
func (l *Lexer) skipComment() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		l.pos++
		if c == '\n' {
			return
		}
	}
}

// Tokens yields the tokens of input in order.
func Tokens(input string) iter.Seq[string] {
	return func(yield func(string) bool) {
		l := NewLexer(input)
		for {
			tok, ok := l.Next()
			if !ok || !yield(tok) {
				return
			}
		}
	}
}
