package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/tofu-tigre/clox/internal/compiler"
	"github.com/tofu-tigre/clox/internal/debug"
)

type disasmCommand struct{}

func (*disasmCommand) Name() string     { return "disasm" }
func (*disasmCommand) Synopsis() string { return "compile a script and print its disassembly" }
func (*disasmCommand) Usage() string    { return "disasm <path>\n" }

func (*disasmCommand) SetFlags(*flag.FlagSet) {}

func (*disasmCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, "disasm <path>\n")
		return subcommands.ExitUsageError
	}

	source, err := os.ReadFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "clox: %v\n", err)
		return exitRuntimeError
	}

	comp := compiler.New(loggerFromContext(ctx), false)
	chunk, err := comp.Compile(string(source), f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCompileError
	}

	debug.DisassembleChunk(os.Stdout, chunk)
	return exitOK
}
