package value

import "testing"

func TestFalsey(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", Nil(), true},
		{"false", Bool(false), true},
		{"true", Bool(true), false},
		{"zero", Number(0), true},
		{"nonzero", Number(1), false},
		{"negative", Number(-1), false},
		{"string", String(&ObjString{Chars: ""}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Falsey(tt.v); got != tt.want {
				t.Errorf("Falsey(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	a := String(&ObjString{Chars: "hi", Hash: HashString("hi")})
	b := String(&ObjString{Chars: "hi", Hash: HashString("hi")})

	if !Equal(a, b) {
		t.Error("equal-content strings should compare equal even as distinct objects")
	}
	if Equal(Number(1), Bool(true)) {
		t.Error("different tags should never be equal")
	}
	if !Equal(Nil(), Nil()) {
		t.Error("nil should equal nil")
	}
	if Equal(Number(0), Bool(false)) {
		t.Error("zero and false share falsey-ness but are different tags and must not be equal")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Nil(), "nil"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Number(3), "3"},
		{Number(3.5), "3.5"},
		{String(&ObjString{Chars: "hi"}), "hi"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestHashStringDeterministic(t *testing.T) {
	if HashString("hello") != HashString("hello") {
		t.Error("hashing the same string twice should yield the same hash")
	}
	if HashString("hello") == HashString("world") {
		t.Error("expected different strings to (almost certainly) hash differently")
	}
}
