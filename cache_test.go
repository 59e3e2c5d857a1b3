package fennecs

import "testing"

func TestCacheGetSetClear(t *testing.T) {
	c := NewCache[string, int]()
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = (%d, %v), want (1, true)", v, ok)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	c.Set("a", 99)
	if v, _ := c.Get("a"); v != 99 {
		t.Fatalf("Set should overwrite, got %d", v)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len() after Clear() = %d, want 0", c.Len())
	}
}
