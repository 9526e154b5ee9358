package compiler

import (
	"strconv"

	"github.com/tofu-tigre/clox/internal/chunk"
	"github.com/tofu-tigre/clox/internal/token"
	"github.com/tofu-tigre/clox/internal/value"
)

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
}

func (c *Compiler) number(_ bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

func (c *Compiler) stringLiteral(_ bool) {
	c.emitConstant(value.String(internString(c.previous.Lexeme)))
}

func (c *Compiler) literal(_ bool) {
	switch c.previous.Type {
	case token.FALSE:
		c.emitOp(chunk.OpFalse)
	case token.TRUE:
		c.emitOp(chunk.OpTrue)
	case token.NIL:
		c.emitOp(chunk.OpNil)
	}
}

func (c *Compiler) unary(_ bool) {
	opType := c.previous.Type

	c.parsePrecedence(precUnary)

	switch opType {
	case token.MINUS:
		c.emitOp(chunk.OpNegate)
	case token.BANG:
		c.emitOp(chunk.OpNot)
	}
}

// binary compiles the right operand of an already-consumed left operand
// and infix operator, at one precedence level tighter than the operator's
// own (so `a - b - c` groups as `(a - b) - c`). BANG_EQUAL is desugared
// to EQUAL followed by NOT, matching the original clox's choice to avoid
// a dedicated opcode for it (spec §4.1's equality note).
func (c *Compiler) binary(_ bool) {
	opType := c.previous.Type
	rule := getRule(opType)
	c.parsePrecedence(rule.prec + 1)

	switch opType {
	case token.BANG_EQUAL:
		c.emitBytes(byte(chunk.OpEqual), byte(chunk.OpNot))
	case token.EQUAL_EQUAL:
		c.emitOp(chunk.OpEqual)
	case token.GREATER:
		c.emitOp(chunk.OpGreater)
	case token.GREATER_EQUAL:
		c.emitBytes(byte(chunk.OpLess), byte(chunk.OpNot))
	case token.LESS:
		c.emitOp(chunk.OpLess)
	case token.LESS_EQUAL:
		c.emitBytes(byte(chunk.OpGreater), byte(chunk.OpNot))
	case token.PLUS:
		c.emitOp(chunk.OpAdd)
	case token.MINUS:
		c.emitOp(chunk.OpSubtract)
	case token.STAR:
		c.emitOp(chunk.OpMultiply)
	case token.SLASH:
		c.emitOp(chunk.OpDivide)
	}
}

// and_ short-circuits: if the left operand (already on the stack) is
// falsey, jump over the right operand, leaving the falsey value as the
// whole expression's result. Otherwise pop it and evaluate the right
// side, which becomes the result.
func (c *Compiler) and_(_ bool) {
	endJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

// or_ is and_'s mirror: if the left operand is truthy, skip the right
// side entirely.
func (c *Compiler) or_(_ bool) {
	elseJump := c.emitJump(chunk.OpJumpIfFalse)
	endJump := c.emitJump(chunk.OpJump)

	c.patchJump(elseJump)
	c.emitOp(chunk.OpPop)

	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp chunk.OpCode
	arg := c.resolveLocal(name)
	if arg != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && c.match(token.EQUAL) {
		c.expression()
		c.emitBytes(byte(setOp), byte(arg))
	} else {
		c.emitBytes(byte(getOp), byte(arg))
	}
}
