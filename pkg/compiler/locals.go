package compiler

import (
	"golang.org/x/exp/slices"

	"github.com/kristofer/lumen/pkg/bytecode"
	"github.com/kristofer/lumen/pkg/token"
)

const (
	maxLocals   = 256
	maxUpvalues = 256
)

// local is a compile-time record of a block-scoped variable: its name
// token, the scope depth it was declared at, and whether any nested
// function captures it as an upvalue.
type local struct {
	name       token.Token
	depth      int
	isCaptured bool
}

// upvalueRef records, for one function compiler, where upvalue i comes
// from: either slot index of the immediately enclosing function's locals
// (isLocal true), or upvalue index of the enclosing function itself.
type upvalueRef struct {
	index   uint8
	isLocal bool
}

// functionType distinguishes the four contexts a function body can
// compile in, which changes what `return` and the implicit slot 0 mean.
type functionType int

const (
	typeScript functionType = iota
	typeFunction
	typeMethod
	typeInitializer
)

// addLocal declares name as a new local in the current scope, leaving its
// depth at -1 (uninitialized) until markInitialized is called. It reports
// an error instead if the function has already reached maxLocals.
func (c *Compiler) addLocal(name token.Token) {
	if len(c.locals) == maxLocals {
		c.errorAtPrevious("Too many local variables in function.")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: -1})
}

// markInitialized sets the most recently declared local's depth to the
// current scope depth, making it usable. At script scope (depth 0) there
// are no locals to mark, since top-level declarations are globals.
func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// resolveLocal searches this compiler's locals from most to least recently
// declared, returning its slot index, or -1 if name is not a local here.
func (c *Compiler) resolveLocal(name token.Token) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name.Lexeme == name.Lexeme {
			if c.locals[i].depth == -1 {
				c.errorAtPrevious("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue walks the enclosing compiler chain looking for name as a
// local of some ancestor, threading an upvalue through every intermediate
// compiler so each frame only ever reaches one level out. Returns -1 if
// name is not found anywhere up the chain (leaving it to resolve as a
// global).
func (c *Compiler) resolveUpvalue(name token.Token) int {
	if c.enclosing == nil {
		return -1
	}
	if slot := c.enclosing.resolveLocal(name); slot != -1 {
		c.enclosing.locals[slot].isCaptured = true
		return c.addUpvalue(uint8(slot), true)
	}
	if idx := c.enclosing.resolveUpvalue(name); idx != -1 {
		return c.addUpvalue(uint8(idx), false)
	}
	return -1
}

// addUpvalue records (or reuses) an upvalue slot on c referring to either
// a local slot or an outer upvalue index of the enclosing compiler.
func (c *Compiler) addUpvalue(index uint8, isLocal bool) int {
	if i := slices.IndexFunc(c.upvalues, func(uv upvalueRef) bool {
		return uv.index == index && uv.isLocal == isLocal
	}); i != -1 {
		return i
	}
	if len(c.upvalues) == maxUpvalues {
		c.errorAtPrevious("Too many closure variables in function.")
		return 0
	}
	c.upvalues = append(c.upvalues, upvalueRef{index: index, isLocal: isLocal})
	c.function.UpvalueCount = len(c.upvalues)
	return len(c.upvalues) - 1
}

// beginScope enters a new lexical block.
func (c *Compiler) beginScope() { c.scopeDepth++ }

// endScope leaves the current block, emitting a POP (or CLOSE_UPVALUE for
// captured locals) for every local the block declared, in declaration
// order reversed so the stack unwinds correctly.
func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		if c.locals[len(c.locals)-1].isCaptured {
			c.emitByte(byte(bytecode.CloseUpvalue))
		} else {
			c.emitByte(byte(bytecode.Pop))
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}
