// Package chunk implements the packed bytecode container the compiler
// emits into and the VM executes: an instruction stream, a parallel
// per-byte line table, and a constant pool.
package chunk

import (
	"fmt"
	"math"

	"github.com/tofu-tigre/clox/internal/value"
)

type OpCode byte

const (
	OpConstant OpCode = iota
	OpConstantLong
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetLocal
	OpSetLocal
	OpDefineGlobal
	OpGetGlobal
	OpSetGlobal
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpPrint
	OpJump
	OpJumpIfFalse
	OpLoop
	OpReturn
)

var opNames = map[OpCode]string{
	OpConstant:     "OP_CONSTANT",
	OpConstantLong: "OP_CONSTANT_LONG",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpReturn:       "OP_RETURN",
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP_UNKNOWN(%d)", byte(op))
}

// MaxConstants is the largest constant index a chunk can address; the
// 16-bit CONSTANT_LONG operand caps the pool at 65,536 entries (spec §3).
const MaxConstants = math.MaxUint16

// Chunk owns a growable instruction stream, a parallel line table
// (len(Lines) == len(Code) always), and its constant pool.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []value.Value
	// Name labels the chunk for disassembly output; for the top-level
	// script it is the source file name (or "<repl>").
	Name string
}

func New(name string) *Chunk {
	return &Chunk{Name: name}
}

// Write appends one bytecode byte tagged with the source line that
// produced it.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// AddConstant appends v to the constant pool and returns its index.
// Callers are responsible for enforcing MaxConstants; the compiler is the
// only caller, and it turns an overflow into a compile error rather than
// truncating silently.
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// WriteConstant adds v to the pool and emits the narrowest instruction
// that can address it: CONSTANT for indices that fit a byte,
// CONSTANT_LONG (two big-endian bytes) otherwise. Returns the resulting
// constant index so callers needing it again (e.g. a global's name) don't
// have to search the pool.
func (c *Chunk) WriteConstant(v value.Value, line int) int {
	idx := c.AddConstant(v)
	if idx <= math.MaxUint8 {
		c.Write(byte(OpConstant), line)
		c.Write(byte(idx), line)
	} else {
		c.Write(byte(OpConstantLong), line)
		c.Write(byte(idx>>8), line)
		c.Write(byte(idx), line)
	}
	return idx
}

// GetLine returns the source line that produced the instruction byte at
// offset.
func (c *Chunk) GetLine(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return 0
	}
	return c.Lines[offset]
}
