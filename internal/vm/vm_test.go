package vm

import (
	"bytes"
	"sort"
	"strings"
	"testing"

	"github.com/tofu-tigre/clox/internal/compiler"
)

type vmTestCase struct {
	input    string
	expected string
}

// runVmTests compiles and runs each case's input, a sequence of
// statements, and asserts the script's printed output (one line per
// `print`) matches expected exactly.
func runVmTests(t *testing.T, tests []vmTestCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			out := run(t, tt.input)
			if out != tt.expected {
				t.Fatalf("input %q: got output %q, want %q", tt.input, out, tt.expected)
			}
		})
	}
}

func run(t *testing.T, source string) string {
	t.Helper()
	comp := compiler.New(nil, false)
	chunk, err := comp.Compile(source, "<test>")
	if err != nil {
		t.Fatalf("compile error for %q: %v", source, err)
	}

	var buf bytes.Buffer
	machine := New(Config{Out: &buf})
	if err := machine.Run(chunk); err != nil {
		t.Fatalf("runtime error for %q: %v", source, err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func TestNumberArithmetic(t *testing.T) {
	tests := []vmTestCase{
		{"print 1;", "1"},
		{"print 1 + 2;", "3"},
		{"print 1 - 2;", "-1"},
		{"print 1 * 2;", "2"},
		{"print 4 / 2;", "2"},
		{"print 50 / 2 * 2 + 10;", "60"},
		{"print 2 * (5 + 10);", "30"},
		{"print 3 * 3 * 3 + 10;", "37"},
		{"print (5 + 10 * 2 + 15 / 3) * 2 + -10;", "50"},
		{"print -5 + 5;", "0"},
	}
	runVmTests(t, tests)
}

func TestBooleanLogic(t *testing.T) {
	tests := []vmTestCase{
		{"print true;", "true"},
		{"print false;", "false"},
		{"print 1 < 2;", "true"},
		{"print 1 > 2;", "false"},
		{"print 1 == 1;", "true"},
		{"print 1 != 1;", "false"},
		{"print 1 >= 1;", "true"},
		{"print 1 <= 0;", "false"},
		{"print !true;", "false"},
		{"print !false;", "true"},
		{"print !nil;", "true"},
		{"print true and false;", "false"},
		{"print true and true;", "true"},
		{"print false or true;", "true"},
		{"print false or false;", "false"},
		{"print nil == nil;", "true"},
		{"print 0 == false;", "false"},
	}
	runVmTests(t, tests)
}

func TestZeroIsFalsey(t *testing.T) {
	tests := []vmTestCase{
		{"if (0) print \"truthy\"; else print \"falsey\";", "falsey"},
		{"if (1) print \"truthy\"; else print \"falsey\";", "truthy"},
		{"print !0;", "true"},
	}
	runVmTests(t, tests)
}

func TestStringOperations(t *testing.T) {
	tests := []vmTestCase{
		{`print "hi" + " " + "there";`, "hi there"},
		{`print "ab" * 3;`, "ababab"},
		{`print 3 * "ab";`, "ababab"},
		{`print "ab" * 0;`, ""},
		{`print "ab" * -2;`, ""},
		{`print "a" == "a";`, "true"},
		{`print "a" == "b";`, "false"},
	}
	runVmTests(t, tests)
}

func TestGlobalVariables(t *testing.T) {
	tests := []vmTestCase{
		{"var a = 1; print a;", "1"},
		{"var a = 1; var b = 2; print a + b;", "3"},
		{"var a = 1; a = 2; print a;", "2"},
		{"var a; print a;", "nil"},
	}
	runVmTests(t, tests)
}

func TestLocalScoping(t *testing.T) {
	tests := []vmTestCase{
		{"{ var a = 1; print a; }", "1"},
		{"var a = 1; { var a = 2; print a; } print a;", "2\n1"},
		{"{ var a = 1; { var b = 2; print a + b; } }", "3"},
	}
	runVmTests(t, tests)
}

func TestIfElse(t *testing.T) {
	tests := []vmTestCase{
		{"if (true) print 1; else print 2;", "1"},
		{"if (false) print 1; else print 2;", "2"},
		{"if (false) print 1;", ""},
		{"var a = 1; if (a == 1) { print \"one\"; }", "one"},
	}
	runVmTests(t, tests)
}

func TestWhileLoop(t *testing.T) {
	tests := []vmTestCase{
		{"var i = 0; while (i < 3) { print i; i = i + 1; }", "0\n1\n2"},
		{"var i = 0; while (i < 5) { i = i + 1; if (i == 3) break; print i; }", "1\n2"},
		{
			"var i = 0; var out = \"\"; while (i < 5) { i = i + 1; if (i == 3) continue; out = out + \"x\"; } print out;",
			"xxxx",
		},
	}
	runVmTests(t, tests)
}

func TestForLoop(t *testing.T) {
	tests := []vmTestCase{
		{"for (var i = 0; i < 3; i = i + 1) print i;", "0\n1\n2"},
		{"var sum = 0; for (var i = 1; i <= 5; i = i + 1) sum = sum + i; print sum;", "15"},
		{"for (var i = 0; i < 5; i = i + 1) { if (i == 2) break; print i; }", "0\n1"},
	}
	runVmTests(t, tests)
}

// TestGlobalsSnapshot exercises Table.Names() (and, transitively,
// x/exp/maps.Keys) as a deterministic way to assert on a globals
// table's contents without depending on its undefined iteration order.
func TestGlobalsSnapshot(t *testing.T) {
	comp := compiler.New(nil, false)
	chunk, err := comp.Compile("var a = 1; var b = 2; var c = 3;", "<test>")
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	machine := New(Config{Out: &bytes.Buffer{}})
	if err := machine.Run(chunk); err != nil {
		t.Fatalf("runtime error: %v", err)
	}

	names := machine.globals.Names()
	sort.Strings(names)

	want := []string{"a", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
}

func TestRuntimeErrors(t *testing.T) {
	cases := []string{
		`print 1 + "a";`,
		`print -"a";`,
		`print a;`,
	}
	for _, src := range cases {
		comp := compiler.New(nil, false)
		chunk, err := comp.Compile(src, "<test>")
		if err != nil {
			t.Fatalf("unexpected compile error for %q: %v", src, err)
		}
		var buf bytes.Buffer
		machine := New(Config{Out: &buf})
		if err := machine.Run(chunk); err == nil {
			t.Fatalf("expected runtime error for %q, got none", src)
		}
	}
}
