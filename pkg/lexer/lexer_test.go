package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kristofer/lumen/pkg/token"
)

func TestNextTokenBasicPunctuation(t *testing.T) {
	input := `(){};,.-+/*`

	want := []token.Type{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Semicolon, token.Comma, token.Dot, token.Minus, token.Plus,
		token.Slash, token.Star, token.EOF,
	}

	l := New(input)
	for i, tt := range want {
		tok := l.NextToken()
		require.Equalf(t, tt, tok.Type, "token %d", i)
	}
}

func TestNextTokenOperators(t *testing.T) {
	input := `! != = == > >= < <=`
	want := []token.Type{
		token.Bang, token.BangEqual, token.Equal, token.EqualEqual,
		token.Greater, token.GreaterEqual, token.Less, token.LessEqual,
		token.EOF,
	}

	l := New(input)
	for i, tt := range want {
		tok := l.NextToken()
		require.Equalf(t, tt, tok.Type, "token %d", i)
	}
}

func TestNextTokenKeywordsAndIdentifiers(t *testing.T) {
	input := `and class else false for fun if nil or print return super this true var while foo_Bar1`
	want := []token.Type{
		token.And, token.Class, token.Else, token.False, token.For, token.Fun,
		token.If, token.Nil, token.Or, token.Print, token.Return, token.Super,
		token.This, token.True, token.Var, token.While, token.Identifier, token.EOF,
	}

	l := New(input)
	for i, tt := range want {
		tok := l.NextToken()
		require.Equalf(t, tt, tok.Type, "token %d", i)
	}
}

func TestNextTokenNumbers(t *testing.T) {
	l := New(`123 3.14 0.5`)

	tok := l.NextToken()
	require.Equal(t, token.Number, tok.Type)
	require.Equal(t, "123", tok.Lexeme)

	tok = l.NextToken()
	require.Equal(t, token.Number, tok.Type)
	require.Equal(t, "3.14", tok.Lexeme)

	tok = l.NextToken()
	require.Equal(t, token.Number, tok.Type)
	require.Equal(t, "0.5", tok.Lexeme)
}

func TestNextTokenStrings(t *testing.T) {
	l := New(`"hello world"`)
	tok := l.NextToken()
	require.Equal(t, token.String, tok.Type)
	require.Equal(t, `"hello world"`, tok.Lexeme)
}

func TestNextTokenUnterminatedString(t *testing.T) {
	l := New(`"hello`)
	tok := l.NextToken()
	require.Equal(t, token.Error, tok.Type)
	require.Contains(t, tok.Lexeme, "Unterminated string")
}

func TestNextTokenStringWithNewlineBumpsLine(t *testing.T) {
	l := New("\"a\nb\" nil")
	tok := l.NextToken()
	require.Equal(t, token.String, tok.Type)

	tok = l.NextToken()
	require.Equal(t, token.Nil, tok.Type)
	require.Equal(t, 2, tok.Line)
}

func TestNextTokenSkipsLineComments(t *testing.T) {
	l := New("// a comment\nnil")
	tok := l.NextToken()
	require.Equal(t, token.Nil, tok.Type)
	require.Equal(t, 2, tok.Line)
}

func TestNextTokenUnexpectedCharacter(t *testing.T) {
	l := New(`@`)
	tok := l.NextToken()
	require.Equal(t, token.Error, tok.Type)
}
