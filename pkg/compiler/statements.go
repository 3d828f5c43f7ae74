package compiler

import (
	"github.com/kristofer/lumen/pkg/bytecode"
	"github.com/kristofer/lumen/pkg/token"
	"github.com/kristofer/lumen/pkg/value"
)

// declaration compiles one top-level or block-level declaration, which may
// be a var/fun/class declaration or any statement. A compile error inside
// it triggers synchronization so the rest of the file still compiles.
func (c *Compiler) declaration() {
	switch {
	case c.match(token.Class):
		c.classDeclaration()
	case c.match(token.Fun):
		c.funDeclaration()
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.For):
		c.forStatement()
	case c.match(token.If):
		c.ifStatement()
	case c.match(token.Return):
		c.returnStatement()
	case c.match(token.While):
		c.whileStatement()
	case c.match(token.LeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RightBrace, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitOp(bytecode.Print)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emitOp(bytecode.Pop)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(bytecode.JumpIfFalse)
	c.emitOp(bytecode.Pop)
	c.statement()

	elseJump := c.emitJump(bytecode.Jump)
	c.patchJump(thenJump)
	c.emitOp(bytecode.Pop)

	if c.match(token.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk().Code)
	c.consume(token.LeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(bytecode.JumpIfFalse)
	c.emitOp(bytecode.Pop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(bytecode.Pop)
}

// forStatement desugars `for (init; cond; incr) body` into the equivalent
// while-loop bytecode shape: init runs once, cond is checked before every
// iteration, and incr runs (compiled as an expression statement, but
// jumped around the first time) right before looping back to cond.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LeftParen, "Expect '(' after 'for'.")

	switch {
	case c.match(token.Semicolon):
		// no initializer
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk().Code)
	exitJump := -1
	if !c.match(token.Semicolon) {
		c.expression()
		c.consume(token.Semicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(bytecode.JumpIfFalse)
		c.emitOp(bytecode.Pop)
	}

	if !c.match(token.RightParen) {
		bodyJump := c.emitJump(bytecode.Jump)
		incrStart := len(c.chunk().Code)
		c.expression()
		c.emitOp(bytecode.Pop)
		c.consume(token.RightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(bytecode.Pop)
	}
	c.endScope()
}

func (c *Compiler) returnStatement() {
	if c.fnType == typeScript {
		c.errorAtPrevious("Can't return from top-level code.")
	}
	if c.match(token.Semicolon) {
		c.emitReturn()
		return
	}
	if c.fnType == typeInitializer {
		c.errorAtPrevious("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after return value.")
	c.emitOp(bytecode.Return)
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emitOp(bytecode.Nil)
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

// parseVariable consumes a name token and, for a local, declares it
// immediately (leaving it uninitialized); for a global, it only reserves
// the name's constant-pool slot, returned for defineVariable to emit
// DEFINE_GLOBAL against later.
func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(token.Identifier, errMsg)
	c.declareVariable()
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *Compiler) declareVariable() {
	if c.scopeDepth == 0 {
		return
	}
	name := c.previous
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].depth != -1 && c.locals[i].depth < c.scopeDepth {
			break
		}
		if identifiersEqual(name, c.locals[i].name) {
			c.errorAtPrevious("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) defineVariable(global byte) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(byte(bytecode.DefineGlobal), global)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function_(typeFunction)
	c.defineVariable(global)
}

// function_ compiles a function's parameter list and body in a fresh,
// nested Compiler, then emits CLOSURE in the enclosing compiler followed
// by one (isLocal, index) pair per captured upvalue.
func (c *Compiler) function_(ft functionType) {
	sub := &Compiler{
		heap:      c.heap,
		lex:       c.lex,
		enclosing: c,
		fnType:    ft,
		current:   c.current,
		previous:  c.previous,
		class:     c.class,
	}
	sub.function = c.heap.NewFunction()
	if ft != typeScript {
		sub.function.Name = c.heap.InternString(c.previous.Lexeme)
	}
	// Slot 0: the callee itself for plain functions, `this` for methods.
	recv := ""
	if ft == typeMethod || ft == typeInitializer {
		recv = "this"
	}
	sub.locals = append(sub.locals, local{name: token.Token{Lexeme: recv}, depth: 0})

	c.heap.AddRootMarker(sub)

	sub.consume(token.LeftParen, "Expect '(' after function name.")
	if !sub.check(token.RightParen) {
		for {
			sub.function.Arity++
			if sub.function.Arity > 255 {
				sub.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := sub.parseVariable("Expect parameter name.")
			sub.defineVariable(constant)
			if !sub.match(token.Comma) {
				break
			}
		}
	}
	sub.consume(token.RightParen, "Expect ')' after parameters.")
	sub.consume(token.LeftBrace, "Expect '{' before function body.")
	sub.block()

	fn := sub.endCompiler()
	c.heap.RemoveRootMarker(sub)

	// Resume the enclosing compiler's token cursor where the nested one
	// left off; both share the same underlying lexer.
	c.current = sub.current
	c.previous = sub.previous
	c.hadError = c.hadError || sub.hadError

	idx, err := c.chunk().AddConstant(value.FromObj(fn))
	if err != nil {
		c.errorAtPrevious(err.Error())
		return
	}
	c.emitBytes(byte(bytecode.Closure), byte(idx))
	for _, uv := range sub.upvalues {
		isLocal := byte(0)
		if uv.isLocal {
			isLocal = 1
		}
		c.emitBytes(isLocal, uv.index)
	}
}

func (c *Compiler) classDeclaration() {
	c.consume(token.Identifier, "Expect class name.")
	nameToken := c.previous
	nameConstant := c.identifierConstant(c.previous)
	c.declareVariable()

	c.emitBytes(byte(bytecode.Class), nameConstant)
	c.defineVariable(nameConstant)

	classComp := &classCompiler{enclosing: c.class}
	c.class = classComp

	if c.match(token.Less) {
		c.consume(token.Identifier, "Expect superclass name.")
		superTok := c.previous
		if identifiersEqual(nameToken, superTok) {
			c.errorAtPrevious("A class can't inherit from itself.")
		}

		c.namedVariable(superTok, false)

		c.beginScope()
		c.addLocal(token.Token{Lexeme: "super"})
		c.defineVariable(0)

		c.namedVariable(nameToken, false)
		c.emitOp(bytecode.Inherit)
		classComp.hasSuperclass = true
	}

	c.namedVariable(nameToken, false)
	c.consume(token.LeftBrace, "Expect '{' before class body.")
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RightBrace, "Expect '}' after class body.")
	c.emitOp(bytecode.Pop)

	if classComp.hasSuperclass {
		c.endScope()
	}
	c.class = classComp.enclosing
}

func (c *Compiler) method() {
	c.consume(token.Identifier, "Expect method name.")
	nameToken := c.previous
	constant := c.identifierConstant(nameToken)

	ft := typeMethod
	if nameToken.Lexeme == "init" {
		ft = typeInitializer
	}
	c.function_(ft)
	c.emitBytes(byte(bytecode.Method), constant)
}
