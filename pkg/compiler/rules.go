package compiler

import "github.com/kristofer/lumen/pkg/token"

// precedence orders binding strength from loosest to tightest. Each rule's
// precedence is the level at which its *infix* form binds; parsePrecedence
// keeps consuming infix rules whose precedence is at least the level it
// was asked for.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

// parseFn is a Pratt parsing function: prefix rules take no left operand,
// infix rules receive canAssign so they can decide whether a trailing `=`
// is theirs to consume.
type parseFn func(c *Compiler, canAssign bool)

type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

// rules is the Pratt table: one row per token type naming its prefix
// parser, infix parser, and infix binding precedence. A nil parseFn means
// the token never starts, or never continues, an expression.
var rules map[token.Type]rule

func init() {
	rules = map[token.Type]rule{
		token.LeftParen:  {prefix: grouping, infix: call, precedence: precCall},
		token.Dot:        {infix: dot, precedence: precCall},
		token.Minus:      {prefix: unary, infix: binary, precedence: precTerm},
		token.Plus:       {infix: binary, precedence: precTerm},
		token.Slash:      {infix: binary, precedence: precFactor},
		token.Star:       {infix: binary, precedence: precFactor},
		token.Bang:       {prefix: unary},
		token.BangEqual:  {infix: binary, precedence: precEquality},
		token.EqualEqual: {infix: binary, precedence: precEquality},
		token.Greater:      {infix: binary, precedence: precComparison},
		token.GreaterEqual: {infix: binary, precedence: precComparison},
		token.Less:         {infix: binary, precedence: precComparison},
		token.LessEqual:    {infix: binary, precedence: precComparison},
		token.Identifier: {prefix: variable},
		token.String:     {prefix: stringLiteral},
		token.Number:     {prefix: number},
		token.And:        {infix: and_, precedence: precAnd},
		token.Or:         {infix: or_, precedence: precOr},
		token.False:      {prefix: literal},
		token.Nil:        {prefix: literal},
		token.True:       {prefix: literal},
		token.This:       {prefix: this_},
		token.Super:      {prefix: super_},
	}
}

func getRule(t token.Type) rule { return rules[t] }
