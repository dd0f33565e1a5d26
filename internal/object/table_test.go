package object

import (
	"sync"
	"testing"

	"ensue/internal/backtrace"
	"ensue/internal/token"
)

func TestTableOperations(t *testing.T) {
	mark := token.Mark{Line: 1, Column: 1}
	tbl := NewTable()

	if _, had, err := tbl.Insert("a", Number{Value: 1}, mark); err != nil || had {
		t.Fatalf("first insert: had=%v err=%v", had, err)
	}
	prev, had, err := tbl.Insert("a", Number{Value: 2}, mark)
	if err != nil || !had || !Equal(prev, Number{Value: 1}) {
		t.Fatalf("second insert: prev=%v had=%v err=%v", prev, had, err)
	}
	_, _, _ = tbl.Insert("b", String{Value: "x"}, mark)

	val, ok, err := tbl.Get("a", mark)
	if err != nil || !ok || !Equal(val, Number{Value: 2}) {
		t.Errorf("get a: val=%v ok=%v err=%v", val, ok, err)
	}
	if _, ok, _ := tbl.Get("missing", mark); ok {
		t.Errorf("get missing: expected absent")
	}
	if ok, _ := tbl.ContainsKey("b", mark); !ok {
		t.Errorf("expected b to be present")
	}

	keys, err := tbl.Keys(mark)
	if err != nil || len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("keys: got %v err=%v", keys, err)
	}

	prev, had, err = tbl.Remove("b", mark)
	if err != nil || !had || !Equal(prev, String{Value: "x"}) {
		t.Errorf("remove b: prev=%v had=%v err=%v", prev, had, err)
	}
	if n, _ := tbl.Len(mark); n != 1 {
		t.Errorf("expected 1 entry, got %d", n)
	}
}

func TestTableZeroValue(t *testing.T) {
	var tbl Table
	if _, _, err := tbl.Insert("k", TRUE, token.Mark{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, _ := tbl.ContainsKey("k", token.Mark{}); !ok {
		t.Errorf("expected k to be present")
	}
}

func TestTableSharedHandle(t *testing.T) {
	tbl := NewTable()
	var alias Variant = tbl
	_, _, _ = alias.(*Table).Insert("x", Number{Value: 1}, token.Mark{})
	if ok, _ := tbl.ContainsKey("x", token.Mark{}); !ok {
		t.Errorf("writes through a copied handle must be visible")
	}
}

func TestTablePoisoning(t *testing.T) {
	tbl := NewTable()
	mark := token.Mark{Line: 9, Column: 3}

	err := tbl.with(mark, func(map[string]Variant) { panic("boom") })
	if !backtrace.IsBug(err) {
		t.Fatalf("expected a bug from the panic, got %v", err)
	}

	if _, _, err := tbl.Get("x", mark); !backtrace.IsBug(err) {
		t.Errorf("expected poisoned table to fail with a bug, got %v", err)
	}
	if _, _, err := tbl.Insert("x", NULL, mark); !backtrace.IsBug(err) {
		t.Errorf("expected poisoned table to fail with a bug, got %v", err)
	}
}

func TestTableConcurrentAccess(t *testing.T) {
	tbl := NewTable()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := string(rune('a' + i))
				_, _, _ = tbl.Insert(key, Number{Value: float64(j)}, token.Mark{})
				_, _, _ = tbl.Get(key, token.Mark{})
			}
		}(i)
	}
	wg.Wait()
	if n, _ := tbl.Len(token.Mark{}); n != 8 {
		t.Errorf("expected 8 keys, got %d", n)
	}
}
