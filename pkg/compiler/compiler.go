// Package compiler implements the single-pass Pratt compiler that turns a
// token stream directly into bytecode, with no intermediate AST. A nested
// chain of Compiler values mirrors nested function declarations: each one
// owns its own ObjFunction, local-variable array, and upvalue array, and
// resolves names outward through its enclosing compiler before falling
// back to treating them as globals.
package compiler

import (
	"fmt"

	"github.com/kristofer/lumen/pkg/bytecode"
	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/lexer"
	"github.com/kristofer/lumen/pkg/token"
	"github.com/kristofer/lumen/pkg/value"
)

const maxJump = 1<<16 - 1

// classCompiler tracks the class currently being compiled, forming a
// stack (via enclosing) so that a class declared inside a method restores
// the outer class when it ends, and so `this`/`super` can be validated
// against "are we inside some class right now".
type classCompiler struct {
	enclosing     *classCompiler
	hasSuperclass bool
}

// Compiler drives the scanner and emits bytecode for a single function
// body (the top-level script counts as a function of type typeScript).
// Nested function and method declarations push a new Compiler with the
// outer one as enclosing.
type Compiler struct {
	heap *heap.Heap
	lex  *lexer.Lexer

	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool

	enclosing  *Compiler
	function   *value.ObjFunction
	fnType     functionType
	locals     []local
	upvalues   []upvalueRef
	scopeDepth int

	class *classCompiler
}

// Compile compiles source into a top-level ObjFunction representing the
// whole script, or reports ok=false if any compile error occurred. h is
// used to intern identifier and string-literal names into the heap's
// string table, and to allocate the resulting function objects.
//
// While compilation is in progress, the active compiler chain is
// registered with h as a GC root (see MarkRoots) since allocations
// performed mid-compile (interning a name, say) can trigger a collection
// before the in-progress function is reachable from anywhere else.
func Compile(h *heap.Heap, source string) (*value.ObjFunction, bool) {
	c := &Compiler{
		heap:   h,
		lex:    lexer.New(source),
		fnType: typeScript,
	}
	c.function = h.NewFunction()
	// Slot 0 of every call frame is reserved for the callee itself (or
	// `this` in a method); declaring a nameless local here keeps that
	// slot's index out of the locals the user's variables occupy.
	c.locals = append(c.locals, local{name: token.Token{Lexeme: ""}, depth: 0})

	h.AddRootMarker(c)
	defer h.RemoveRootMarker(c)

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	fn := c.endCompiler()
	return fn, !c.hadError
}

// MarkRoots implements heap.RootMarker: every function in the currently
// active compiler chain must survive a collection triggered mid-compile.
func (c *Compiler) MarkRoots(mark func(value.Obj)) {
	for cur := c; cur != nil; cur = cur.enclosing {
		if cur.function != nil {
			mark(cur.function)
		}
	}
}

// --- token stream plumbing ---

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lex.NextToken()
		if c.current.Type != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(t token.Type) bool { return c.current.Type == t }

func (c *Compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t token.Type, msg string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

// --- error reporting ---

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) errorAtPrevious(msg string) { c.errorAt(c.previous, msg) }

func (c *Compiler) errorAt(t token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	where := "end"
	if t.Type != token.EOF {
		where = "'" + t.Lexeme + "'"
	}
	if t.Type == token.Error {
		where = ""
	}
	if where == "" {
		fmt.Printf("[line %d] Error: %s\n", t.Line, msg)
	} else {
		fmt.Printf("[line %d] Error at %s: %s\n", t.Line, where, msg)
	}
	c.hadError = true
}

// synchronize skips tokens after a compile error until a likely statement
// boundary, so one mistake does not cascade into a wall of spurious
// errors for the rest of the file.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != token.EOF {
		if c.previous.Type == token.Semicolon {
			return
		}
		switch c.current.Type {
		case token.Class, token.Fun, token.Var, token.For,
			token.If, token.While, token.Print, token.Return:
			return
		}
		c.advance()
	}
}

// --- bytecode emission ---

func (c *Compiler) chunk() *value.Chunk { return &c.function.Chunk }

func (c *Compiler) emitByte(b byte) {
	c.chunk().Write(b, c.previous.Line)
}

func (c *Compiler) emitBytes(a, b byte) {
	c.emitByte(a)
	c.emitByte(b)
}

func (c *Compiler) emitOp(op bytecode.Op) { c.emitByte(byte(op)) }

func (c *Compiler) emitConstant(v value.Value) {
	idx, err := c.chunk().AddConstant(v)
	if err != nil {
		c.errorAtPrevious(err.Error())
		return
	}
	c.emitBytes(byte(bytecode.Constant), byte(idx))
}

// emitJump writes op followed by a two-byte placeholder offset, returning
// the index of the first placeholder byte so the caller can patch it once
// the jump target is known.
func (c *Compiler) emitJump(op bytecode.Op) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

// patchJump backfills the jump at offset with the distance from just past
// its operand to the current end of the chunk.
func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > maxJump {
		c.errorAtPrevious("Too much code to jump over.")
		return
	}
	c.chunk().Code[offset] = byte(jump >> 8)
	c.chunk().Code[offset+1] = byte(jump & 0xff)
}

// emitLoop writes a LOOP instruction back to loopStart.
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(bytecode.Loop)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > maxJump {
		c.errorAtPrevious("Loop body too large.")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset & 0xff))
}

func (c *Compiler) emitReturn() {
	if c.fnType == typeInitializer {
		// init() always returns the instance, regardless of the explicit
		// return statements in its body.
		c.emitBytes(byte(bytecode.GetLocal), 0)
	} else {
		c.emitOp(bytecode.Nil)
	}
	c.emitOp(bytecode.Return)
}

func (c *Compiler) endCompiler() *value.ObjFunction {
	c.emitReturn()
	return c.function
}

// identifierConstant interns name's lexeme and adds it to the current
// chunk's constant pool, returning its index.
func (c *Compiler) identifierConstant(name token.Token) byte {
	s := c.heap.InternString(name.Lexeme)
	idx, err := c.chunk().AddConstant(value.FromObj(s))
	if err != nil {
		c.errorAtPrevious(err.Error())
		return 0
	}
	return byte(idx)
}

func identifiersEqual(a, b token.Token) bool { return a.Lexeme == b.Lexeme }
