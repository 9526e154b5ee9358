package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
	"github.com/mattn/go-isatty"

	"github.com/tofu-tigre/clox/internal/compiler"
	"github.com/tofu-tigre/clox/internal/vm"
)

type replCommand struct {
	trace     bool
	printCode bool
}

func (*replCommand) Name() string     { return "repl" }
func (*replCommand) Synopsis() string { return "start an interactive read-eval-print loop" }
func (*replCommand) Usage() string    { return "repl [--trace] [--print-code]\n" }

func (c *replCommand) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.trace, "trace", false, "trace each executed instruction and the stack")
	f.BoolVar(&c.printCode, "print-code", false, "dump disassembled bytecode to the debug log (needs CLOX_DEBUG) before running each line")
}

func (c *replCommand) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	prompt := "> "
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		// Piped input gets no prompt noise, matching how most Unix REPLs
		// behave when used non-interactively (e.g. `echo '1+1;' | clox repl`).
		prompt = ""
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFilePath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "clox: %v\n", err)
		return exitRuntimeError
	}
	defer rl.Close()

	log := loggerFromContext(ctx)
	comp := compiler.New(log, c.printCode)
	machine := vm.New(vm.Config{TraceExecution: c.trace, Out: os.Stdout, Log: log})

	for i := 1; ; i++ {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return exitOK
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "clox: %v\n", err)
			return exitRuntimeError
		}
		if line == "" {
			continue
		}

		chunk, err := comp.Compile(line, fmt.Sprintf("<repl:%d>", i))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if err := machine.Run(chunk); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.clox_history"
}
