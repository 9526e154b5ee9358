package compiler

import (
	"github.com/tofu-tigre/clox/internal/chunk"
	"github.com/tofu-tigre/clox/internal/token"
)

// declaration compiles one top-level or block-level declaration, fed
// directly by both Compile's main loop and block(). A var declaration
// falls through to statement() for everything else.
func (c *Compiler) declaration() {
	switch {
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}

	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(token.EQUAL) {
		c.expression()
	} else {
		c.emitOp(chunk.OpNil)
	}
	c.consume(token.SEMICOLON, "Expect ';' after variable declaration.")

	c.defineVariable(global)
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.BREAK):
		c.breakStatement()
	case c.match(token.CONTINUE):
		c.continueStatement()
	case c.match(token.LEFT_BRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emitOp(chunk.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after expression.")
	c.emitOp(chunk.OpPop)
}

func (c *Compiler) block() {
	for !c.check(token.RIGHT_BRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RIGHT_BRACE, "Expect '}' after block.")
}

// ifStatement emits a JUMP_IF_FALSE over the then-branch, and, whether or
// not an else clause follows, an unconditional JUMP at the end of the
// then-branch over the false path's condition POP and any else-branch.
func (c *Compiler) ifStatement() {
	c.consume(token.LEFT_PAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.statement()

	elseJump := c.emitJump(chunk.OpJump)

	c.patchJump(thenJump)
	c.emitOp(chunk.OpPop)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk.Code)
	c.beginLoop(loopStart)

	c.consume(token.LEFT_PAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(chunk.OpPop)

	c.endLoop()
}

// forStatement desugars entirely into the primitives the VM already has:
// an initializer runs once outside any loop, the condition is checked
// like a while loop's, and the increment clause is compiled to run right
// before jumping back to the condition (a conditional second jump splices
// it into the right place without a dedicated opcode).
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LEFT_PAREN, "Expect '(' after 'for'.")

	switch {
	case c.match(token.SEMICOLON):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk.Code)
	c.beginLoop(loopStart)

	exitJump := -1
	if !c.check(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "Expect ';' after loop condition.")

		exitJump = c.emitJump(chunk.OpJumpIfFalse)
		c.emitOp(chunk.OpPop)
	} else {
		c.advance() // consume the ';'
	}

	if !c.check(token.RIGHT_PAREN) {
		bodyJump := c.emitJump(chunk.OpJump)

		incrementStart := len(c.chunk.Code)
		c.expression()
		c.emitOp(chunk.OpPop)
		c.consume(token.RIGHT_PAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.currentLoop().start = loopStart
		c.patchJump(bodyJump)
	} else {
		c.consume(token.RIGHT_PAREN, "Expect ')' after for clauses.")
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(chunk.OpPop)
	}

	c.endLoop()
	c.endScope()
}

/* ---- loop bookkeeping & break/continue ----
These statements have no counterpart in the reference implementation's
compiler — the original's break_statement emits a jump and then never
patches it, silently corrupting the stack at runtime. This rebuild tracks
every loop's pending break jumps and patches them once the loop's end is
known, and tracks the loop's continue target so "continue" can jump back
to it directly. */

func (c *Compiler) beginLoop(start int) {
	c.loops = append(c.loops, &loopState{start: start, scopeDepth: c.scopeDepth})
}

func (c *Compiler) currentLoop() *loopState {
	if len(c.loops) == 0 {
		return nil
	}
	return c.loops[len(c.loops)-1]
}

func (c *Compiler) endLoop() {
	loop := c.currentLoop()
	for _, jump := range loop.breakJumps {
		c.patchJump(jump)
	}
	c.loops = c.loops[:len(c.loops)-1]
}

// breakStatement pops every local that will go out of scope when the
// loop exits, then emits a forward jump recorded on the enclosing loop so
// whileStatement/forStatement can patch it once the loop's end address is
// known.
func (c *Compiler) breakStatement() {
	loop := c.currentLoop()
	if loop == nil {
		c.error("Can't use 'break' outside of a loop.")
		c.consume(token.SEMICOLON, "Expect ';' after 'break'.")
		return
	}
	c.consume(token.SEMICOLON, "Expect ';' after 'break'.")

	c.popLocalsToDepth(loop.scopeDepth)
	jump := c.emitJump(chunk.OpJump)
	loop.breakJumps = append(loop.breakJumps, jump)
}

// continueStatement pops locals down to the loop's own scope and loops
// back to its continue target (the condition check for while, the
// increment clause for for).
func (c *Compiler) continueStatement() {
	loop := c.currentLoop()
	if loop == nil {
		c.error("Can't use 'continue' outside of a loop.")
		c.consume(token.SEMICOLON, "Expect ';' after 'continue'.")
		return
	}
	c.consume(token.SEMICOLON, "Expect ';' after 'continue'.")

	c.popLocalsToDepth(loop.scopeDepth)
	c.emitLoop(loop.start)
}

// popLocalsToDepth emits POP for every local declared deeper than depth,
// without removing them from c.locals — the enclosing endScope still
// owns that bookkeeping when the block actually closes.
func (c *Compiler) popLocalsToDepth(depth int) {
	for i := len(c.locals) - 1; i >= 0 && c.locals[i].depth > depth; i-- {
		c.emitOp(chunk.OpPop)
	}
}
