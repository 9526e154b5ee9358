// Package compiler implements the single-pass Pratt parser that compiles
// source text directly into a chunk.Chunk — no intermediate AST. It is
// the "hard part" component described in spec §4.2: expression precedence
// climbing, lexical scope tracking for locals, and backpatched jumps for
// control flow.
package compiler

import (
	"math"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/tofu-tigre/clox/internal/chunk"
	"github.com/tofu-tigre/clox/internal/debug"
	"github.com/tofu-tigre/clox/internal/lexer"
	"github.com/tofu-tigre/clox/internal/token"
	"github.com/tofu-tigre/clox/internal/value"
)

// MaxLocals bounds the local-variable array per compilation: a slot index
// must fit in the single byte GET_LOCAL/SET_LOCAL operands.
const MaxLocals = math.MaxUint8 + 1

const uninitialized = -1

type local struct {
	name  string
	depth int
}

// loopState tracks the bookkeeping a single while/for loop needs: where
// "continue" loops back to, the pending "break" jumps still waiting to be
// patched to the instruction after the loop, and the scope depth active
// when the loop began (so a break knows how many locals were live).
type loopState struct {
	start      int
	breakJumps []int
	scopeDepth int
}

// Compiler parses one source string into one chunk. It is not reentrant
// and not safe for concurrent use, matching the single-threaded
// compilation model spec §9 describes.
type Compiler struct {
	lexer *lexer.Lexer

	current, previous token.Token
	panicMode          bool
	errs               *multierror.Error

	chunk *chunk.Chunk

	locals     []local
	scopeDepth int
	loops      []*loopState

	log       *logrus.Logger
	printCode bool
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// New constructs a Compiler. log may be nil, in which case a silenced
// logger is used — logging is a debug aid, not part of the compile
// contract. printCode mirrors the DEBUG_PRINT_CODE build flag from
// spec §6: when set and the logger is at Debug level, the compiled chunk's
// disassembly is written to the logger's output once compilation finishes
// successfully.
func New(log *logrus.Logger, printCode bool) *Compiler {
	if log == nil {
		log = logrus.New()
		log.SetOutput(discardWriter{})
	}
	return &Compiler{log: log, printCode: printCode}
}

// Compile parses source in full and returns the populated chunk. The
// returned error is nil iff no syntactic or semantic error occurred; when
// non-nil it unwraps to the individual *CompileError diagnostics via
// *multierror.Error (spec §7: "reports all compile-time errors it can
// find in one pass", not just the first).
func (c *Compiler) Compile(source, name string) (*chunk.Chunk, error) {
	c.lexer = lexer.New(source)
	c.chunk = chunk.New(name)
	c.locals = nil
	c.scopeDepth = 0
	c.loops = nil
	c.panicMode = false
	c.errs = nil

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.endCompiler()

	if err := c.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return c.chunk, nil
}

/* ---- token stream helpers ---- */

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lexer.NextToken()
		if c.current.Type != token.ERROR {
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

func (c *Compiler) consume(t token.Type, message string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

/* ---- byte emission ---- */

func (c *Compiler) emitByte(b byte)        { c.chunk.Write(b, c.previous.Line) }
func (c *Compiler) emitOp(op chunk.OpCode) { c.emitByte(byte(op)) }

func (c *Compiler) emitBytes(bs ...byte) {
	for _, b := range bs {
		c.emitByte(b)
	}
}

// makeConstant adds v to the pool and returns its index as a byte. Used
// for operands fixed at 8 bits — DEFINE_GLOBAL/GET_GLOBAL/SET_GLOBAL's
// name operand — so overflow is a compile error rather than wraparound.
func (c *Compiler) makeConstant(v value.Value) byte {
	idx := c.chunk.AddConstant(v)
	if idx > math.MaxUint8 {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

// emitConstant emits CONSTANT/CONSTANT_LONG as appropriate for the
// current pool size, for literal values which aren't limited to 8 bits.
func (c *Compiler) emitConstant(v value.Value) {
	if len(c.chunk.Constants) > chunk.MaxConstants {
		c.error("Too many constants in one chunk.")
		return
	}
	c.chunk.WriteConstant(v, c.previous.Line)
}

func (c *Compiler) emitJump(op chunk.OpCode) int {
	c.emitOp(op)
	c.emitBytes(0xff, 0xff)
	return len(c.chunk.Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk.Code) - offset - 2
	if jump > math.MaxUint16 {
		c.log.Panicln("too much code to jump over")
	}
	c.chunk.Code[offset] = byte(jump >> 8)
	c.chunk.Code[offset+1] = byte(jump)
}

func (c *Compiler) emitLoop(start int) {
	c.emitOp(chunk.OpLoop)
	offset := len(c.chunk.Code) - start + 2
	if offset > math.MaxUint16 {
		c.log.Panicln("loop body too large")
	}
	c.emitBytes(byte(offset>>8), byte(offset))
}

func (c *Compiler) endCompiler() {
	c.emitOp(chunk.OpReturn)
	if c.printCode && c.errs.ErrorOrNil() == nil && c.log.IsLevelEnabled(logrus.DebugLevel) {
		c.log.WithField("chunk", c.chunk.Name).Debugln("compiled chunk")
		debug.DisassembleChunk(c.log.Out, c.chunk)
	}
}

/* ---- scopes & locals ---- */

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emitOp(chunk.OpPop)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *Compiler) addLocal(name string) {
	if len(c.locals) >= MaxLocals {
		c.error("Too many local variables in one chunk.")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: uninitialized})
}

// declareVariable registers a local by name, rejecting redeclaration in
// the *same* scope (shadowing an outer scope is fine).
func (c *Compiler) declareVariable(name token.Token) {
	if c.scopeDepth == 0 {
		return
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != uninitialized && l.depth < c.scopeDepth {
			break
		}
		if l.name == name.Lexeme {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name.Lexeme)
}

// parseVariable consumes an identifier, declares it, and — for a global —
// returns the constant-pool index of its name; for a local the return
// value is unused by the caller (defineVariable branches on scope depth).
func (c *Compiler) parseVariable(errorMessage string) byte {
	c.consume(token.IDENTIFIER, errorMessage)
	c.declareVariable(c.previous)
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *Compiler) identifierConstant(name token.Token) byte {
	return c.makeConstant(value.String(internString(name.Lexeme)))
}

func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// defineVariable finishes a declaration: at global scope it emits
// DEFINE_GLOBAL; at local scope the initializer's result is already
// sitting on the stack and IS the local, so only its depth needs
// marking — no bytecode is emitted.
func (c *Compiler) defineVariable(globalIdx byte) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(byte(chunk.OpDefineGlobal), globalIdx)
}

// resolveLocal finds name among active locals from innermost to
// outermost, erroring if its initializer is still in flight (reading a
// local in its own initializer).
func (c *Compiler) resolveLocal(name token.Token) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.name == name.Lexeme {
			if l.depth == uninitialized {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// internString allocates a fresh ObjString carrier for a compile-time
// string constant (identifier name or literal), hash precomputed. The VM
// re-interns every string it loads out of a chunk's constant pool on
// first use, so the compiler needs no intern table of its own.
func internString(s string) *value.ObjString {
	return &value.ObjString{Chars: s, Hash: value.HashString(s)}
}

/* ---- error reporting ---- */

func (c *Compiler) errorAtCurrent(message string) { c.errorAt(c.current, message) }
func (c *Compiler) error(message string)          { c.errorAt(c.previous, message) }

func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true

	where := "'" + tok.Lexeme + "'"
	if tok.Type == token.EOF {
		where = "end"
	} else if tok.Type == token.ERROR {
		where = ""
	}
	err := &CompileError{Line: tok.Line, Where: where, Message: message}
	c.log.WithField("line", tok.Line).Debugln(err)
	c.errs = multierror.Append(c.errs, err)
}

// synchronize skips tokens after a compile error until a likely statement
// boundary, so one mistake doesn't cascade into a wall of spurious ones.
func (c *Compiler) synchronize() {
	c.panicMode = false

	for c.current.Type != token.EOF {
		if c.previous.Type == token.SEMICOLON {
			return
		}
		switch c.current.Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}
