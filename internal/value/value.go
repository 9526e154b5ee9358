// Package value defines the tagged value representation shared by the
// compiler and the VM: nil, bool, number, and heap-allocated objects.
package value

import (
	"fmt"
	"hash/fnv"
)

type ValueType int

const (
	ValNil ValueType = iota
	ValBool
	ValNumber
	ValObj
)

// Value is a tagged union. Only one of Bool/Number/Obj is meaningful,
// selected by Type. Kept as a flat struct (rather than an interface) so
// copying a Value on the VM's stack never allocates.
type Value struct {
	Type   ValueType
	Bool   bool
	Number float64
	Obj    Obj
}

// Obj is satisfied by all heap-allocated object kinds. Only ObjString
// exists for this language: spec Non-goals exclude classes/closures, so
// there is nothing else to tag.
type Obj interface {
	objType() ObjType
	String() string
}

type ObjType int

const (
	ObjTypeString ObjType = iota
)

// ObjString is the only heap object kind. Hash is precomputed with FNV-1a
// at construction time so table probes never re-hash.
type ObjString struct {
	Chars string
	Hash  uint32
	// Next chains every live object into the VM's intrusive free list.
	Next Obj
}

func (*ObjString) objType() ObjType { return ObjTypeString }
func (s *ObjString) String() string { return s.Chars }

// HashString computes the FNV-1a hash used for string interning.
func HashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

func Nil() Value             { return Value{Type: ValNil} }
func Bool(b bool) Value      { return Value{Type: ValBool, Bool: b} }
func Number(n float64) Value { return Value{Type: ValNumber, Number: n} }
func String(s *ObjString) Value {
	return Value{Type: ValObj, Obj: s}
}

func (v Value) IsNil() bool    { return v.Type == ValNil }
func (v Value) IsBool() bool   { return v.Type == ValBool }
func (v Value) IsNumber() bool { return v.Type == ValNumber }
func (v Value) IsObj() bool    { return v.Type == ValObj }

func (v Value) IsString() bool {
	if v.Type != ValObj {
		return false
	}
	_, ok := v.Obj.(*ObjString)
	return ok
}

// AsString panics if the Value is not a string; callers must check
// IsString first.
func (v Value) AsString() *ObjString { return v.Obj.(*ObjString) }

// Falsey implements the language's truthiness rule: nil, false, and
// numeric zero are falsey. This diverges from canonical Lox, where zero
// is truthy — replicated as-is per the project's design notes.
func Falsey(v Value) bool {
	switch v.Type {
	case ValNil:
		return true
	case ValBool:
		return !v.Bool
	case ValNumber:
		return v.Number == 0
	default:
		return false
	}
}

// Equal implements value equality. Different tags are never equal. String
// equality still compares bytes rather than relying on interning, matching
// the source's values_equal (interning makes pointer comparison sufficient,
// but the generic equality check doesn't assume it).
func Equal(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case ValNil:
		return true
	case ValBool:
		return a.Bool == b.Bool
	case ValNumber:
		return a.Number == b.Number
	case ValObj:
		as, aok := a.Obj.(*ObjString)
		bs, bok := b.Obj.(*ObjString)
		return aok && bok && as.Chars == bs.Chars
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Type {
	case ValNil:
		return "nil"
	case ValBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValNumber:
		return fmt.Sprintf("%g", v.Number)
	case ValObj:
		if v.Obj == nil {
			return "<nil obj>"
		}
		return v.Obj.String()
	default:
		return "<unknown value>"
	}
}
