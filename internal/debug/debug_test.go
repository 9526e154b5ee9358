package debug

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tofu-tigre/clox/internal/chunk"
	"github.com/tofu-tigre/clox/internal/value"
)

func TestDisassembleChunkListsEveryInstruction(t *testing.T) {
	c := chunk.New("sample")
	c.WriteConstant(value.Number(1), 1)
	c.Write(byte(chunk.OpPrint), 1)
	c.Write(byte(chunk.OpReturn), 2)

	var buf bytes.Buffer
	DisassembleChunk(&buf, c)
	out := buf.String()

	for _, want := range []string{"== sample", "OP_CONSTANT", "OP_PRINT", "OP_RETURN"} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly missing %q:\n%s", want, out)
		}
	}
}

func TestJumpInstructionShowsTarget(t *testing.T) {
	c := chunk.New("jumps")
	c.Write(byte(chunk.OpJump), 1)
	c.Write(0, 1)
	c.Write(2, 1)
	c.Write(byte(chunk.OpReturn), 1)

	var buf bytes.Buffer
	DisassembleChunk(&buf, c)
	if !strings.Contains(buf.String(), "-> 5") {
		t.Errorf("expected jump target 5 in output:\n%s", buf.String())
	}
}

func TestRepeatedLineCollapsesToPipe(t *testing.T) {
	c := chunk.New("lines")
	c.Write(byte(chunk.OpNil), 1)
	c.Write(byte(chunk.OpTrue), 1)

	var buf bytes.Buffer
	DisassembleChunk(&buf, c)
	if !strings.Contains(buf.String(), "   | ") {
		t.Errorf("expected second same-line instruction to show '|', got:\n%s", buf.String())
	}
}
