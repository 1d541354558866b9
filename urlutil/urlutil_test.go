package urlutil

import "testing"

func TestCanonicalize_EquivalentForms(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"query order", "https://example.com/p?b=2&a=1", "https://example.com/p?a=1&b=2"},
		{"trailing slash", "https://example.com/blog/", "https://example.com/blog"},
		{"fragment", "https://example.com/p#section", "https://example.com/p"},
		{"host case", "https://EXAMPLE.com/p", "https://example.com/p"},
		{"default port", "https://example.com:443/p", "https://example.com/p"},
		{"repeated values", "https://example.com/p?a=2&a=1", "https://example.com/p?a=1&a=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ca, err := Canonicalize(tt.a)
			if err != nil {
				t.Fatalf("Canonicalize(%q): %v", tt.a, err)
			}
			cb, err := Canonicalize(tt.b)
			if err != nil {
				t.Fatalf("Canonicalize(%q): %v", tt.b, err)
			}
			if ca != cb {
				t.Errorf("expected %q and %q to canonicalize identically, got %q vs %q", tt.a, tt.b, ca, cb)
			}
		})
	}
}

func TestCanonicalize_DistinctTargetsStayDistinct(t *testing.T) {
	a, _ := Canonicalize("https://example.com/p?a=1")
	b, _ := Canonicalize("https://example.com/p?a=2")
	if a == b {
		t.Errorf("different queries must not collide: %q", a)
	}
}

func TestCanonicalize_RootPathKeepsSlash(t *testing.T) {
	got, err := Canonicalize("https://example.com/")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://example.com/" {
		t.Errorf("root path should keep its slash, got %q", got)
	}
}

func TestCanonicalize_RejectsRelative(t *testing.T) {
	if _, err := Canonicalize("/just/a/path"); err == nil {
		t.Error("expected error for relative URL")
	}
	if _, err := Canonicalize(""); err == nil {
		t.Error("expected error for empty URL")
	}
}

func TestBase(t *testing.T) {
	got, err := Base("https://example.com/deep/path?q=1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://example.com" {
		t.Errorf("Base = %q, want https://example.com", got)
	}
}
