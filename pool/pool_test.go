package pool

import "testing"

func TestNext_RoundRobin(t *testing.T) {
	p := New([]string{"a", "b", "c"})
	want := []string{"a", "b", "c", "a", "b"}
	for i, w := range want {
		if got := p.Next(); got != w {
			t.Errorf("Next() #%d = %q, want %q", i, got, w)
		}
	}
}

func TestNext_Empty(t *testing.T) {
	p := New(nil)
	if got := p.Next(); got != "" {
		t.Errorf("empty pool Next() = %q, want \"\"", got)
	}
}

func TestNew_CopiesInput(t *testing.T) {
	src := []string{"a", "b"}
	p := New(src)
	src[0] = "mutated"
	if got := p.Next(); got != "a" {
		t.Errorf("pool must not observe caller mutations, got %q", got)
	}
}
