// Package expr implements the small boolean/comparison expression
// language used to evaluate `conditions` test strings against a
// variable environment.
//
// The lexer is a single-pass scanner feeding a Pratt parser directly;
// no token stream is materialized ahead of parsing.
package expr

import (
	"strconv"

	"github.com/cdeg/gypn/internal/pygerr"
)

const opLex pygerr.Op = "expr.lex"

// tokenKind tags a lexed token.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokInt
	tokEq
	tokNotEq
	tokLT
	tokGT
	tokLTE
	tokGTE
	tokAnd
	tokOr
)

type token struct {
	kind tokenKind
	str  string
	num  int64
}

// lexer is a single-pass scanner over the expression source.
type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (l *lexer) errAt(msg string) *pygerr.Error {
	return pygerr.E(opLex, pygerr.ASTFatal, msg)
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// next returns the next token, or tokEOF when the input is exhausted.
func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF}, nil
	}

	ch := l.src[l.pos]

	switch ch {
	case '=':
		if l.peekIs(1, '=') {
			l.pos += 2
			return token{kind: tokEq}, nil
		}
		return token{}, l.errAt("expected '==', got bare '='")
	case '!':
		if l.peekIs(1, '=') {
			l.pos += 2
			return token{kind: tokNotEq}, nil
		}
		return token{}, l.errAt("expected '!=', got bare '!'")
	case '<':
		if l.peekIs(1, '=') {
			l.pos += 2
			return token{kind: tokLTE}, nil
		}
		l.pos++
		return token{kind: tokLT}, nil
	case '>':
		if l.peekIs(1, '=') {
			l.pos += 2
			return token{kind: tokGTE}, nil
		}
		l.pos++
		return token{kind: tokGT}, nil
	case '&':
		if l.peekIs(1, '&') {
			l.pos += 2
			return token{kind: tokAnd}, nil
		}
		return token{}, l.errAt("expected '&&', got bare '&'")
	case '|':
		if l.peekIs(1, '|') {
			l.pos += 2
			return token{kind: tokOr}, nil
		}
		return token{}, l.errAt("expected '||', got bare '|'")
	case '"', '\'':
		return l.scanString(ch)
	}

	if ch == '-' || isDigit(ch) {
		return l.scanInt()
	}

	if isIdentStart(ch) {
		return l.scanIdentOrWordOp()
	}

	return token{}, l.errAt("unexpected character " + string(ch))
}

func (l *lexer) peekIs(offset int, want byte) bool {
	i := l.pos + offset
	return i < len(l.src) && l.src[i] == want
}

func (l *lexer) scanString(quote byte) (token, error) {
	start := l.pos + 1
	l.pos++
	for l.pos < len(l.src) && l.src[l.pos] != quote {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{}, pygerr.E(opLex, pygerr.ASTWarn, "unterminated string literal")
	}
	s := l.src[start:l.pos]
	l.pos++ // consume closing quote
	return token{kind: tokString, str: s}, nil
}

func (l *lexer) scanInt() (token, error) {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	if l.pos >= len(l.src) || !isDigit(l.src[l.pos]) {
		return token{}, l.errAt("malformed integer literal")
	}
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	n, err := strconv.ParseInt(l.src[start:l.pos], 10, 64)
	if err != nil {
		return token{}, l.errAt("malformed integer literal")
	}
	return token{kind: tokInt, num: n}, nil
}

// scanIdentOrWordOp scans an identifier, reclassifying it as tokAnd/tokOr
// when it is exactly "and"/"or" and not the prefix of a longer
// identifier. The word operators are only recognized when
// delimiter-bounded, so "android" lexes as one identifier rather than
// "and" followed by a dangling "roid".
func (l *lexer) scanIdentOrWordOp() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
		l.pos++
	}
	name := l.src[start:l.pos]
	switch name {
	case "and":
		return token{kind: tokAnd}, nil
	case "or":
		return token{kind: tokOr}, nil
	default:
		return token{kind: tokIdent, str: name}, nil
	}
}
