// Package debug implements the bytecode disassembler: given a chunk, it
// renders a human-readable listing of every instruction, its operands,
// and the source line that produced it. Used by the compiler's
// print-code debug mode and the VM's trace-execution mode, and exposed
// directly through the driver's disasm subcommand.
package debug

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/tofu-tigre/clox/internal/chunk"
)

// DisassembleChunk writes a full listing of c to w, headed by a summary
// line giving the chunk's name and its encoded size in human-readable
// units (e.g. "312 B") — sized output is the kind of thing worth
// reaching for a formatting library over by hand.
func DisassembleChunk(w io.Writer, c *chunk.Chunk) {
	fmt.Fprintf(w, "== %s (%s) ==\n", c.Name, humanize.Bytes(uint64(len(c.Code))))

	for offset := 0; offset < len(c.Code); {
		offset = DisassembleInstruction(w, c, offset)
	}
}

// DisassembleInstruction writes one instruction at offset and returns the
// offset of the next one.
func DisassembleInstruction(w io.Writer, c *chunk.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)

	line := c.GetLine(offset)
	if offset > 0 && line == c.GetLine(offset-1) {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", line)
	}

	op := chunk.OpCode(c.Code[offset])
	switch op {
	case chunk.OpConstant:
		return constantInstruction(w, op, c, offset)
	case chunk.OpConstantLong:
		return constantLongInstruction(w, op, c, offset)
	case chunk.OpNil, chunk.OpTrue, chunk.OpFalse,
		chunk.OpPop, chunk.OpEqual, chunk.OpGreater, chunk.OpLess,
		chunk.OpAdd, chunk.OpSubtract, chunk.OpMultiply, chunk.OpDivide,
		chunk.OpNot, chunk.OpNegate, chunk.OpPrint, chunk.OpReturn:
		return simpleInstruction(w, op, offset)
	case chunk.OpGetLocal, chunk.OpSetLocal, chunk.OpDefineGlobal,
		chunk.OpGetGlobal, chunk.OpSetGlobal:
		return byteInstruction(w, op, c, offset)
	case chunk.OpJump, chunk.OpJumpIfFalse:
		return jumpInstruction(w, op, 1, c, offset)
	case chunk.OpLoop:
		return jumpInstruction(w, op, -1, c, offset)
	default:
		fmt.Fprintf(w, "Unknown opcode %d\n", op)
		return offset + 1
	}
}

func simpleInstruction(w io.Writer, op chunk.OpCode, offset int) int {
	fmt.Fprintf(w, "%s\n", op)
	return offset + 1
}

func byteInstruction(w io.Writer, op chunk.OpCode, c *chunk.Chunk, offset int) int {
	slot := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", op, slot)
	return offset + 2
}

func jumpInstruction(w io.Writer, op chunk.OpCode, sign int, c *chunk.Chunk, offset int) int {
	jump := int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
	target := offset + 3 + sign*jump
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, target)
	return offset + 3
}

func constantInstruction(w io.Writer, op chunk.OpCode, c *chunk.Chunk, offset int) int {
	idx := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, c.Constants[idx])
	return offset + 2
}

func constantLongInstruction(w io.Writer, op chunk.OpCode, c *chunk.Chunk, offset int) int {
	idx := int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, c.Constants[idx])
	return offset + 3
}
