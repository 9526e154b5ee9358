package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/tofu-tigre/clox/internal/compiler"
	"github.com/tofu-tigre/clox/internal/vm"
)

type runCommand struct {
	trace     bool
	printCode bool
}

func (*runCommand) Name() string     { return "run" }
func (*runCommand) Synopsis() string { return "compile and execute a script file" }
func (*runCommand) Usage() string {
	return "run [--trace] [--print-code] <path>\n"
}

func (c *runCommand) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.trace, "trace", false, "trace each executed instruction and the stack")
	f.BoolVar(&c.printCode, "print-code", false, "dump disassembled bytecode to the debug log (needs CLOX_DEBUG) before running")
}

func (c *runCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	source, err := os.ReadFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "clox: %v\n", err)
		return exitRuntimeError
	}

	log := loggerFromContext(ctx)
	comp := compiler.New(log, c.printCode)
	chunk, err := comp.Compile(string(source), f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCompileError
	}

	machine := vm.New(vm.Config{TraceExecution: c.trace, Out: os.Stdout, Log: log})
	if err := machine.Run(chunk); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntimeError
	}

	return exitOK
}
