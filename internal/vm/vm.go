// Package vm implements the stack-based bytecode interpreter: it walks a
// compiled chunk.Chunk instruction by instruction, maintaining an
// operand stack, a globals table, and a string-intern pool (spec §4.3).
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tofu-tigre/clox/internal/chunk"
	"github.com/tofu-tigre/clox/internal/debug"
	"github.com/tofu-tigre/clox/internal/table"
	"github.com/tofu-tigre/clox/internal/value"
)

// StackMax bounds the value stack. The language has no function calls, so
// nothing but live locals and expression nesting grows it — 256 slots is generous for
// any realistic expression depth and matches the original implementation's
// fixed-size stack philosophy.
const StackMax = 256

// Config toggles the VM's optional diagnostics, set from the driver's
// command-line flags (spec §6's DEBUG_TRACE_EXECUTION build flag
// becomes a runtime option here rather than a compile-time one).
type Config struct {
	TraceExecution bool
	Out            io.Writer
	Log            *logrus.Logger
}

// VM owns everything live during one Run: the stack, the globals
// namespace, the string-intern pool, and the intrusive list of every
// heap object it has allocated. A VM is reusable across multiple Run
// calls within a REPL session — globals and interned strings persist
// across calls, matching the REPL's "each line sees prior lines'
// variables" contract (spec §4.3).
type VM struct {
	chunk *chunk.Chunk
	ip    int

	stack    [StackMax]value.Value
	stackTop int

	globals *table.Table
	strings *table.Table
	objects value.Obj

	out io.Writer
	log *logrus.Logger
	cfg Config

	// sessionID correlates every line logged for one VM instance back to
	// a single REPL or script run, the way a request ID ties together a
	// server's log lines for one call.
	sessionID uuid.UUID
}

// New constructs a VM ready to Run chunks. A zero Config traces nothing
// and writes program output to os.Stdout.
func New(cfg Config) *VM {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Log == nil {
		cfg.Log = logrus.New()
		cfg.Log.SetOutput(io.Discard)
	}
	return &VM{
		globals:   table.New(),
		strings:   table.New(),
		out:       cfg.Out,
		log:       cfg.Log,
		cfg:       cfg,
		sessionID: uuid.New(),
	}
}

// push fails with a runtime error instead of indexing past the fixed
// stack array: a legal, deeply right-nested expression can stack every
// operand before any reduction runs, so StackMax is reachable on valid
// input, not just on a VM bug (spec §7).
func (vm *VM) push(v value.Value) error {
	if vm.stackTop >= StackMax {
		return vm.runtimeError("Stack overflow.")
	}
	vm.stack[vm.stackTop] = v
	vm.stackTop++
	return nil
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
}

// Run executes c to completion, or until a runtime error occurs. It is
// not reentrant: calling Run again reuses the VM's globals and intern
// pool but resets the operand stack, matching a REPL's one-statement
// at a time execution model.
func (vm *VM) Run(c *chunk.Chunk) error {
	vm.chunk = c
	vm.ip = 0
	vm.resetStack()

	log := vm.log.WithField("session", vm.sessionID)

	for {
		if vm.cfg.TraceExecution {
			vm.traceStack()
			debug.DisassembleInstruction(vm.out, vm.chunk, vm.ip)
		}

		instruction := chunk.OpCode(vm.readByte())
		switch instruction {
		case chunk.OpConstant:
			v := vm.readConstant()
			if v.IsString() {
				v = value.String(vm.intern(v.AsString()))
			}
			if err := vm.push(v); err != nil {
				return err
			}

		case chunk.OpConstantLong:
			v := vm.readConstantLong()
			if v.IsString() {
				v = value.String(vm.intern(v.AsString()))
			}
			if err := vm.push(v); err != nil {
				return err
			}

		case chunk.OpNil:
			if err := vm.push(value.Nil()); err != nil {
				return err
			}

		case chunk.OpTrue:
			if err := vm.push(value.Bool(true)); err != nil {
				return err
			}

		case chunk.OpFalse:
			if err := vm.push(value.Bool(false)); err != nil {
				return err
			}

		case chunk.OpPop:
			vm.pop()

		case chunk.OpGetLocal:
			slot := vm.readByte()
			if err := vm.push(vm.stack[slot]); err != nil {
				return err
			}

		case chunk.OpSetLocal:
			slot := vm.readByte()
			vm.stack[slot] = vm.peek(0)

		case chunk.OpDefineGlobal:
			name := vm.readConstant().AsString()
			vm.globals.Set(vm.intern(name), vm.peek(0))
			vm.pop()

		case chunk.OpGetGlobal:
			name := vm.readConstant().AsString()
			v, ok := vm.globals.Get(vm.intern(name))
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			if err := vm.push(v); err != nil {
				return err
			}

		case chunk.OpSetGlobal:
			name := vm.readConstant().AsString()
			key := vm.intern(name)
			if vm.globals.Set(key, vm.peek(0)) {
				vm.globals.Delete(key)
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}

		case chunk.OpEqual:
			b := vm.pop()
			a := vm.pop()
			if err := vm.push(value.Bool(value.Equal(a, b))); err != nil {
				return err
			}

		case chunk.OpGreater:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.Bool(a > b) }); err != nil {
				return err
			}

		case chunk.OpLess:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.Bool(a < b) }); err != nil {
				return err
			}

		case chunk.OpAdd:
			if err := vm.add(); err != nil {
				return err
			}

		case chunk.OpSubtract:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.Number(a - b) }); err != nil {
				return err
			}

		case chunk.OpMultiply:
			if err := vm.multiply(); err != nil {
				return err
			}

		case chunk.OpDivide:
			if err := vm.binaryNumberOp(func(a, b float64) value.Value { return value.Number(a / b) }); err != nil {
				return err
			}

		case chunk.OpNot:
			if err := vm.push(value.Bool(value.Falsey(vm.pop()))); err != nil {
				return err
			}

		case chunk.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			if err := vm.push(value.Number(-vm.pop().Number)); err != nil {
				return err
			}

		case chunk.OpPrint:
			fmt.Fprintln(vm.out, vm.pop())

		case chunk.OpJump:
			offset := vm.readShort()
			vm.ip += offset

		case chunk.OpJumpIfFalse:
			offset := vm.readShort()
			if value.Falsey(vm.peek(0)) {
				vm.ip += offset
			}

		case chunk.OpLoop:
			offset := vm.readShort()
			vm.ip -= offset

		case chunk.OpReturn:
			log.Debugln("run complete")
			return nil

		default:
			return vm.runtimeError("Unknown opcode %d.", instruction)
		}
	}
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readShort() int {
	hi := vm.readByte()
	lo := vm.readByte()
	return int(hi)<<8 | int(lo)
}

func (vm *VM) readConstant() value.Value {
	return vm.chunk.Constants[vm.readByte()]
}

func (vm *VM) readConstantLong() value.Value {
	idx := vm.readShort()
	return vm.chunk.Constants[idx]
}

// intern returns the canonical *ObjString for s.Chars, adding it to the
// string pool (and the VM's object list) the first time it's seen. Every
// string the VM touches at runtime — global names, string literals,
// concatenation/repetition results — passes through here, so pointer
// identity is always a valid equality check between two live ObjStrings.
func (vm *VM) intern(s *value.ObjString) *value.ObjString {
	if existing := vm.strings.FindString(s.Chars, s.Hash); existing != nil {
		return existing
	}
	vm.trackObject(s)
	vm.strings.Set(s, value.Nil())
	return s
}

func (vm *VM) internChars(chars string) *value.ObjString {
	hash := value.HashString(chars)
	if existing := vm.strings.FindString(chars, hash); existing != nil {
		return existing
	}
	s := &value.ObjString{Chars: chars, Hash: hash}
	vm.trackObject(s)
	vm.strings.Set(s, value.Nil())
	return s
}

func (vm *VM) trackObject(o *value.ObjString) {
	o.Next = vm.objects
	vm.objects = o
}

func (vm *VM) binaryNumberOp(op func(a, b float64) value.Value) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b := vm.pop()
	a := vm.pop()
	return vm.push(op(a.Number, b.Number))
}

// add implements ADD's dual mode: two numbers sum, two strings
// concatenate. Any other pairing is a runtime error.
func (vm *VM) add() error {
	b := vm.peek(0)
	a := vm.peek(1)

	switch {
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		return vm.push(value.Number(a.Number + b.Number))
	case a.IsString() && b.IsString():
		vm.pop()
		vm.pop()
		return vm.push(value.String(vm.internChars(a.AsString().Chars + b.AsString().Chars)))
	default:
		return vm.runtimeError("Operands must be two numbers or two strings.")
	}
}

// multiply implements MULTIPLY's dual mode: two numbers multiply
// normally; a string and a number repeat the string truncated-to-int(n)
// times, with a negative or fractional-to-zero count yielding "". Either
// operand order is accepted.
func (vm *VM) multiply() error {
	b := vm.peek(0)
	a := vm.peek(1)

	switch {
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		return vm.push(value.Number(a.Number * b.Number))
	case a.IsString() && b.IsNumber():
		vm.pop()
		vm.pop()
		return vm.push(value.String(vm.internChars(repeatString(a.AsString().Chars, b.Number))))
	case a.IsNumber() && b.IsString():
		vm.pop()
		vm.pop()
		return vm.push(value.String(vm.internChars(repeatString(b.AsString().Chars, a.Number))))
	default:
		return vm.runtimeError("Operands must be two numbers, or a string and a number.")
	}
}

func repeatString(s string, n float64) string {
	count := int(n)
	if count <= 0 {
		return ""
	}
	out := make([]byte, 0, len(s)*count)
	for i := 0; i < count; i++ {
		out = append(out, s...)
	}
	return string(out)
}

// runtimeError reports the error at the line of the instruction that was
// just executed (vm.ip has already advanced past its operands, so the
// offending instruction is the one immediately before it) and resets the
// stack so a REPL session can keep accepting input afterward.
func (vm *VM) runtimeError(format string, args ...any) error {
	line := vm.chunk.GetLine(vm.ip - 1)
	err := &RuntimeError{Line: line, Message: fmt.Sprintf(format, args...)}
	vm.log.WithField("session", vm.sessionID).WithField("line", line).Debugln(err)
	vm.resetStack()
	return err
}

func (vm *VM) traceStack() {
	fmt.Fprint(vm.out, "          ")
	for i := 0; i < vm.stackTop; i++ {
		fmt.Fprintf(vm.out, "[ %s ]", vm.stack[i])
	}
	fmt.Fprintln(vm.out)
}
