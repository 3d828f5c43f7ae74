package compiler

import (
	"strconv"

	"github.com/kristofer/lumen/pkg/bytecode"
	"github.com/kristofer/lumen/pkg/token"
	"github.com/kristofer/lumen/pkg/value"
)

func (c *Compiler) expression() {
	c.parsePrecedence(precAssignment)
}

// parsePrecedence is the Pratt engine: consume the prefix rule for the
// current token, then keep consuming infix rules whose precedence is at
// least minPrec. canAssign is threaded down so an infix `=` is only
// honored at or below assignment precedence, matching `a + b = c` being a
// syntax error rather than assigning into `b`.
func (c *Compiler) parsePrecedence(minPrec precedence) {
	c.advance()
	prefix := getRule(c.previous.Type).prefix
	if prefix == nil {
		c.errorAtPrevious("Expect expression.")
		return
	}
	canAssign := minPrec <= precAssignment
	prefix(c, canAssign)

	for minPrec <= getRule(c.current.Type).precedence {
		c.advance()
		infix := getRule(c.previous.Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.errorAtPrevious("Invalid assignment target.")
	}
}

func number(c *Compiler, _ bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.errorAtPrevious("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

func stringLiteral(c *Compiler, _ bool) {
	raw := c.previous.Lexeme
	chars := raw[1 : len(raw)-1] // strip the surrounding quotes
	s := c.heap.InternString(chars)
	c.emitConstant(value.FromObj(s))
}

func literal(c *Compiler, _ bool) {
	switch c.previous.Type {
	case token.False:
		c.emitOp(bytecode.False)
	case token.Nil:
		c.emitOp(bytecode.Nil)
	case token.True:
		c.emitOp(bytecode.True)
	}
}

func grouping(c *Compiler, _ bool) {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func unary(c *Compiler, _ bool) {
	opType := c.previous.Type
	c.parsePrecedence(precUnary)
	switch opType {
	case token.Bang:
		c.emitOp(bytecode.Not)
	case token.Minus:
		c.emitOp(bytecode.Negate)
	}
}

func binary(c *Compiler, _ bool) {
	opType := c.previous.Type
	r := getRule(opType)
	c.parsePrecedence(r.precedence + 1)

	switch opType {
	case token.BangEqual:
		c.emitOp(bytecode.Equal)
		c.emitOp(bytecode.Not)
	case token.EqualEqual:
		c.emitOp(bytecode.Equal)
	case token.Greater:
		c.emitOp(bytecode.Greater)
	case token.GreaterEqual:
		c.emitOp(bytecode.Less)
		c.emitOp(bytecode.Not)
	case token.Less:
		c.emitOp(bytecode.Less)
	case token.LessEqual:
		c.emitOp(bytecode.Greater)
		c.emitOp(bytecode.Not)
	case token.Plus:
		c.emitOp(bytecode.Add)
	case token.Minus:
		c.emitOp(bytecode.Subtract)
	case token.Star:
		c.emitOp(bytecode.Multiply)
	case token.Slash:
		c.emitOp(bytecode.Divide)
	}
}

// and_ short-circuits: if the left operand is falsey, skip the right
// operand entirely and leave the falsey left value as the result.
func and_(c *Compiler, _ bool) {
	endJump := c.emitJump(bytecode.JumpIfFalse)
	c.emitOp(bytecode.Pop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

// or_ short-circuits the opposite way: a truthy left operand skips
// evaluating the right operand.
func or_(c *Compiler, _ bool) {
	elseJump := c.emitJump(bytecode.JumpIfFalse)
	endJump := c.emitJump(bytecode.Jump)

	c.patchJump(elseJump)
	c.emitOp(bytecode.Pop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func call(c *Compiler, _ bool) {
	argCount := c.argumentList()
	c.emitBytes(byte(bytecode.Call), argCount)
}

func (c *Compiler) argumentList() byte {
	var count int
	if !c.check(token.RightParen) {
		for {
			c.expression()
			if count == 255 {
				c.errorAtPrevious("Can't have more than 255 arguments.")
			}
			count++
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RightParen, "Expect ')' after arguments.")
	return byte(count)
}

func dot(c *Compiler, canAssign bool) {
	c.consume(token.Identifier, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous)

	switch {
	case canAssign && c.match(token.Equal):
		c.expression()
		c.emitBytes(byte(bytecode.SetProperty), name)
	case c.match(token.LeftParen):
		c.emitBytes(byte(bytecode.GetProperty), name)
		argCount := c.argumentList()
		c.emitBytes(byte(bytecode.Call), argCount)
	default:
		c.emitBytes(byte(bytecode.GetProperty), name)
	}
}

func variable(c *Compiler, canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

// namedVariable resolves name through locals, then enclosing upvalues,
// then globals, emitting the matching GET/SET pair. canAssign gates
// whether a following `=` is consumed as an assignment here.
func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp bytecode.Op
	arg := c.resolveLocal(name)
	if arg != -1 {
		getOp, setOp = bytecode.GetLocal, bytecode.SetLocal
	} else if arg = c.resolveUpvalue(name); arg != -1 {
		getOp, setOp = bytecode.GetUpvalue, bytecode.SetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = bytecode.GetGlobal, bytecode.SetGlobal
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitBytes(byte(setOp), byte(arg))
	} else {
		c.emitBytes(byte(getOp), byte(arg))
	}
}

func this_(c *Compiler, _ bool) {
	if c.class == nil {
		c.errorAtPrevious("Can't use 'this' outside of a class.")
		return
	}
	variable(c, false)
}

// super_ compiles `super.method` (optionally immediately called) by
// resolving the two synthetic upvalues every method body can reach: the
// surrounding method's implicit `this` local/upvalue, and `super`, the
// local the enclosing class body defined to hold the superclass.
func super_(c *Compiler, _ bool) {
	if c.class == nil {
		c.errorAtPrevious("Can't use 'super' outside of a class.")
	} else if !c.class.hasSuperclass {
		c.errorAtPrevious("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.Dot, "Expect '.' after 'super'.")
	c.consume(token.Identifier, "Expect superclass method name.")
	name := c.identifierConstant(c.previous)

	c.namedVariable(token.Token{Lexeme: "this"}, false)
	if c.match(token.LeftParen) {
		argCount := c.argumentList()
		c.namedVariable(token.Token{Lexeme: "super"}, false)
		c.emitBytes(byte(bytecode.SuperInvoke), name)
		c.emitByte(argCount)
	} else {
		c.namedVariable(token.Token{Lexeme: "super"}, false)
		c.emitBytes(byte(bytecode.GetSuper), name)
	}
}
