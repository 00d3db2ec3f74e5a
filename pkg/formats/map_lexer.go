package formats

import (
	"errors"
	"fmt"
)

// Lexer errors.
var (
	ErrUnterminatedString = errors.New("unterminated string")
)

type mapTokenKind int

const (
	tokEOF mapTokenKind = iota
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokString
	tokWord
)

// String returns a human-readable token kind name.
func (k mapTokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokString:
		return "string"
	case tokWord:
		return "word"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

type mapToken struct {
	kind mapTokenKind
	text string // quotes stripped for strings
	line int
	col  int
}

// mapLexer splits .map text into tokens. Words are any run of characters
// that are not whitespace, quotes or brackets, so texture names such as
// *water1 or +0button pass through unchanged.
type mapLexer struct {
	data []byte
	pos  int
	line int
	col  int
}

func newMapLexer(data []byte) *mapLexer {
	return &mapLexer{data: data, line: 1, col: 1}
}

func (l *mapLexer) peekByte(offset int) byte {
	if l.pos+offset >= len(l.data) {
		return 0
	}
	return l.data[l.pos+offset]
}

func (l *mapLexer) advance() {
	if l.data[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *mapLexer) skipSpaceAndComments() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.peekByte(1) == '/':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '(', ')', '{', '}', '"':
		return true
	}
	return false
}

// next returns the next token. At the end of input it keeps returning tokEOF.
func (l *mapLexer) next() (mapToken, error) {
	l.skipSpaceAndComments()

	tok := mapToken{line: l.line, col: l.col}
	if l.pos >= len(l.data) {
		tok.kind = tokEOF
		return tok, nil
	}

	switch c := l.data[l.pos]; c {
	case '(':
		tok.kind = tokLParen
	case ')':
		tok.kind = tokRParen
	case '{':
		tok.kind = tokLBrace
	case '}':
		tok.kind = tokRBrace
	case '"':
		l.advance()
		start := l.pos
		for l.pos < len(l.data) && l.data[l.pos] != '"' {
			l.advance()
		}
		if l.pos >= len(l.data) {
			return tok, &SyntaxError{Line: tok.line, Col: tok.col, Err: ErrUnterminatedString}
		}
		tok.kind = tokString
		tok.text = string(l.data[start:l.pos])
		l.advance()
		return tok, nil
	default:
		start := l.pos
		for l.pos < len(l.data) && !isDelimiter(l.data[l.pos]) {
			l.advance()
		}
		tok.kind = tokWord
		tok.text = string(l.data[start:l.pos])
		return tok, nil
	}

	tok.text = string(l.data[l.pos])
	l.advance()
	return tok, nil
}
