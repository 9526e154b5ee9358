package table

import (
	"fmt"
	"testing"

	"github.com/tofu-tigre/clox/internal/value"
)

func key(s string) *value.ObjString {
	return &value.ObjString{Chars: s, Hash: value.HashString(s)}
}

func TestSetGetDelete(t *testing.T) {
	tbl := New()
	k := key("foo")

	if _, ok := tbl.Get(k); ok {
		t.Fatal("expected miss on empty table")
	}

	isNew := tbl.Set(k, value.Number(1))
	if !isNew {
		t.Fatal("first Set of a key should report isNew")
	}

	v, ok := tbl.Get(k)
	if !ok || v.Number != 1 {
		t.Fatalf("Get returned (%v, %v), want (1, true)", v, ok)
	}

	isNew = tbl.Set(k, value.Number(2))
	if isNew {
		t.Fatal("overwriting an existing key should not report isNew")
	}
	v, _ = tbl.Get(k)
	if v.Number != 2 {
		t.Fatalf("expected overwritten value 2, got %v", v.Number)
	}

	if !tbl.Delete(k) {
		t.Fatal("Delete of a present key should succeed")
	}
	if _, ok := tbl.Get(k); ok {
		t.Fatal("key should be gone after Delete")
	}
	if tbl.Delete(k) {
		t.Fatal("Delete of an already-deleted key should fail")
	}
}

func TestTombstoneKeepsProbeChainAlive(t *testing.T) {
	// Force enough entries into the same table that some collide, delete
	// one, and confirm a later key that probed past it is still findable.
	tbl := New()
	keys := make([]*value.ObjString, 0, 20)
	for i := 0; i < 20; i++ {
		k := key(fmt.Sprintf("key-%d", i))
		keys = append(keys, k)
		tbl.Set(k, value.Number(float64(i)))
	}

	tbl.Delete(keys[5])

	for i, k := range keys {
		if i == 5 {
			continue
		}
		v, ok := tbl.Get(k)
		if !ok || v.Number != float64(i) {
			t.Fatalf("key %d lost after unrelated delete: got (%v, %v)", i, v, ok)
		}
	}
}

func TestGrowthPreservesEntries(t *testing.T) {
	tbl := New()
	const n = 200
	keys := make([]*value.ObjString, n)
	for i := 0; i < n; i++ {
		keys[i] = key(fmt.Sprintf("k%d", i))
		tbl.Set(keys[i], value.Number(float64(i)))
	}
	for i, k := range keys {
		v, ok := tbl.Get(k)
		if !ok || v.Number != float64(i) {
			t.Fatalf("entry %d missing or wrong after growth: (%v, %v)", i, v, ok)
		}
	}
	if tbl.Count() != n {
		t.Fatalf("Count() = %d, want %d", tbl.Count(), n)
	}
}

func TestFindString(t *testing.T) {
	tbl := New()
	k := key("interned")
	tbl.Set(k, value.Nil())

	found := tbl.FindString("interned", value.HashString("interned"))
	if found != k {
		t.Fatal("FindString should return the original stored key by identity")
	}

	if tbl.FindString("missing", value.HashString("missing")) != nil {
		t.Fatal("FindString should return nil for an absent string")
	}
}

func TestAddAll(t *testing.T) {
	a, b := key("a"), key("b")
	src := New()
	src.Set(a, value.Number(1))
	src.Set(b, value.Number(2))

	dst := New()
	dst.AddAll(src)

	for _, k := range []*value.ObjString{a, b} {
		if _, ok := dst.Get(k); !ok {
			t.Fatalf("AddAll should have copied key %q", k.Chars)
		}
	}
}
