// Package lexer implements the hand-written scanner for the language.
//
// The scanner is consumed on demand by the compiler: each call to NextToken
// advances past exactly one lexical token and returns it by value. There is
// no separate tokenization pass and no token slice held in memory; this
// mirrors the single-pass design of the compiler that drives it.
package lexer

import (
	"fmt"

	"github.com/kristofer/lumen/pkg/token"
)

// Lexer holds the scanning cursor over a single source string. A Lexer is
// scoped to one compile session; it is not safe to share between goroutines
// or reuse across unrelated sources.
type Lexer struct {
	source  string
	start   int // start of the lexeme currently being scanned
	current int // index of the next unread byte
	line    int
}

// New creates a scanner positioned at the beginning of source.
func New(source string) *Lexer {
	return &Lexer{source: source, line: 1}
}

// NextToken scans and returns the next token in the source. At end of
// input it returns an EOF token forever; on a lexical error it returns an
// Error token whose Lexeme holds a human-readable message instead of a
// source slice.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()
	l.start = l.current

	if l.atEnd() {
		return l.make(token.EOF)
	}

	c := l.advance()

	if isAlpha(c) {
		return l.identifier()
	}
	if isDigit(c) {
		return l.number()
	}

	switch c {
	case '(':
		return l.make(token.LeftParen)
	case ')':
		return l.make(token.RightParen)
	case '{':
		return l.make(token.LeftBrace)
	case '}':
		return l.make(token.RightBrace)
	case ';':
		return l.make(token.Semicolon)
	case ',':
		return l.make(token.Comma)
	case '.':
		return l.make(token.Dot)
	case '-':
		return l.make(token.Minus)
	case '+':
		return l.make(token.Plus)
	case '/':
		return l.make(token.Slash)
	case '*':
		return l.make(token.Star)
	case '!':
		return l.make(l.choose('=', token.BangEqual, token.Bang))
	case '=':
		return l.make(l.choose('=', token.EqualEqual, token.Equal))
	case '<':
		return l.make(l.choose('=', token.LessEqual, token.Less))
	case '>':
		return l.make(l.choose('=', token.GreaterEqual, token.Greater))
	case '"':
		return l.string()
	}

	return l.errorToken(fmt.Sprintf("Unexpected character '%c'.", c))
}

func (l *Lexer) atEnd() bool { return l.current >= len(l.source) }

func (l *Lexer) advance() byte {
	c := l.source[l.current]
	l.current++
	return c
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

// choose implements the classic one-or-two-character-operator pattern:
// consume `expected` if it follows, and return whichever token type fits.
func (l *Lexer) choose(expected byte, ifMatch, otherwise token.Type) token.Type {
	if l.atEnd() || l.source[l.current] != expected {
		return otherwise
	}
	l.current++
	return ifMatch
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.peek() {
		case ' ', '\r', '\t':
			l.current++
		case '\n':
			l.line++
			l.current++
		case '/':
			if l.peekNext() == '/' {
				for l.peek() != '\n' && !l.atEnd() {
					l.current++
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) string() token.Token {
	for l.peek() != '"' && !l.atEnd() {
		if l.peek() == '\n' {
			l.line++
		}
		l.current++
	}
	if l.atEnd() {
		return l.errorToken("Unterminated string.")
	}
	l.current++ // closing quote
	return l.make(token.String)
}

func (l *Lexer) number() token.Token {
	for isDigit(l.peek()) {
		l.current++
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.current++ // consume the '.'
		for isDigit(l.peek()) {
			l.current++
		}
	}
	return l.make(token.Number)
}

func (l *Lexer) identifier() token.Token {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.current++
	}
	lexeme := l.source[l.start:l.current]
	if kw, ok := token.Keywords[lexeme]; ok {
		return l.make(kw)
	}
	return l.make(token.Identifier)
}

func (l *Lexer) make(t token.Type) token.Token {
	return token.Token{Type: t, Lexeme: l.source[l.start:l.current], Line: l.line}
}

func (l *Lexer) errorToken(msg string) token.Token {
	return token.Token{Type: token.Error, Lexeme: msg, Line: l.line}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
