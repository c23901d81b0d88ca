package browser

import "testing"

func TestFragment(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"http://x/", ""},
		{"http://x/#", ""},
		{"http://x/#/a", "/a"},
		{"http://x/#/a#b", "/a#b"},
		{"http://x/?q=1#/a?b=2", "/a?b=2"},
	}
	for _, tt := range tests {
		if got := Fragment(tt.href); got != tt.want {
			t.Errorf("Fragment(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestWithFragment(t *testing.T) {
	tests := []struct {
		href, fragment, want string
	}{
		{"http://x/", "/a", "http://x/#/a"},
		{"http://x/#/old", "/new", "http://x/#/new"},
		{"http://x/app?q=1#/old", "", "http://x/app?q=1#"},
	}
	for _, tt := range tests {
		if got := WithFragment(tt.href, tt.fragment); got != tt.want {
			t.Errorf("WithFragment(%q, %q) = %q, want %q", tt.href, tt.fragment, got, tt.want)
		}
	}
}

func TestSplitHref(t *testing.T) {
	tests := []struct {
		href                       string
		origin, path, search, hash string
	}{
		{"http://x", "http://x", "/", "", ""},
		{"http://x/app/?q=1#/a", "http://x", "/app/", "?q=1", "#/a"},
		{"https://x:8080/a#b?c", "https://x:8080", "/a", "", "#b?c"},
		{"/rel?x", "", "/rel", "?x", ""},
	}
	for _, tt := range tests {
		origin, path, search, hash := SplitHref(tt.href)
		if origin != tt.origin || path != tt.path || search != tt.search || hash != tt.hash {
			t.Errorf("SplitHref(%q) = (%q, %q, %q, %q), want (%q, %q, %q, %q)",
				tt.href, origin, path, search, hash, tt.origin, tt.path, tt.search, tt.hash)
		}
	}
}

func TestResolve(t *testing.T) {
	base := "http://x/app/page?q=1#/old"
	tests := []struct {
		ref  string
		want string
	}{
		{"#/new", "http://x/app/page?q=1#/new"},
		{"?z=2", "http://x/app/page?z=2"},
		{"/other", "http://x/other"},
		{"sibling", "http://x/app/sibling"},
		{"https://y/", "https://y/"},
	}
	for _, tt := range tests {
		if got := Resolve(base, tt.ref); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestSameDocument(t *testing.T) {
	if !SameDocument("http://x/a#1", "http://x/a#2") {
		t.Error("fragment-only difference should be the same document")
	}
	if SameDocument("http://x/a#1", "http://x/b#1") {
		t.Error("different paths should not be the same document")
	}
	if SameDocument("http://x/a?q=1", "http://x/a") {
		t.Error("different queries should not be the same document")
	}
}
