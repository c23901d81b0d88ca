package routepath

import (
	"reflect"
	"testing"
)

func TestCanonicalizePath(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantPath    string
		wantQuery   string
		wantHash    string
		wantChanged bool
	}{
		{name: "root", input: "/", wantPath: "/"},
		{name: "empty string", input: "", wantPath: "/", wantChanged: true},
		{name: "no leading slash", input: "about", wantPath: "/about", wantChanged: true},
		{name: "collapse slashes", input: "/blog//post", wantPath: "/blog/post", wantChanged: true},
		{name: "single dot", input: "/blog/./post", wantPath: "/blog/post", wantChanged: true},
		{name: "double dot", input: "/blog/posts/../other", wantPath: "/blog/other", wantChanged: true},
		{name: "double dot to root", input: "/blog/../", wantPath: "/", wantChanged: true},
		{name: "trailing slash", input: "/projects/123/", wantPath: "/projects/123", wantChanged: true},
		{
			name:      "query preserved",
			input:     "/projects/123?tab=details",
			wantPath:  "/projects/123",
			wantQuery: "tab=details",
		},
		{
			name:      "hash preserved",
			input:     "/docs?v=2#install",
			wantPath:  "/docs",
			wantQuery: "v=2",
			wantHash:  "install",
		},
		{
			name:        "query only",
			input:       "?page=2",
			wantPath:    "/",
			wantQuery:   "page=2",
			wantChanged: true,
		},
		{
			name:      "query percent escapes not validated",
			input:     "/projects?bad=%GG",
			wantPath:  "/projects",
			wantQuery: "bad=%GG",
		},
		{name: "valid percent escapes", input: "/path/%2Fok", wantPath: "/path/%2Fok"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CanonicalizePath(tc.input)
			if err != nil {
				t.Fatalf("CanonicalizePath(%q) unexpected error = %v", tc.input, err)
			}
			if got.Path != tc.wantPath {
				t.Errorf("CanonicalizePath(%q).Path = %q, want %q", tc.input, got.Path, tc.wantPath)
			}
			if got.Query != tc.wantQuery {
				t.Errorf("CanonicalizePath(%q).Query = %q, want %q", tc.input, got.Query, tc.wantQuery)
			}
			if got.Hash != tc.wantHash {
				t.Errorf("CanonicalizePath(%q).Hash = %q, want %q", tc.input, got.Hash, tc.wantHash)
			}
			if got.Changed != tc.wantChanged {
				t.Errorf("CanonicalizePath(%q).Changed = %v, want %v", tc.input, got.Changed, tc.wantChanged)
			}
		})
	}
}

func TestCanonicalizePathErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"backslash", "/path\\with\\backslash", ErrBackslashInPath},
		{"null byte literal", "/path/\x00/null", ErrNullByteInPath},
		{"null byte encoded", "/path/%00/null", ErrNullByteInPath},
		{"invalid percent escape incomplete", "/path/%2", ErrInvalidPercentEscape},
		{"invalid percent escape bad chars", "/path/%GG", ErrInvalidPercentEscape},
		{"invalid percent literal", "/path/100%", ErrInvalidPercentEscape},
		{"escape root", "/../secret", ErrPathEscapesRoot},
		{"deep escape root", "/a/../../secret", ErrPathEscapesRoot},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CanonicalizePath(tc.input)
			if err != tc.wantErr {
				t.Errorf("CanonicalizePath(%q) error = %v, want %v", tc.input, err, tc.wantErr)
			}
		})
	}
}

func TestDecodeSegment(t *testing.T) {
	tests := []struct {
		name       string
		segment    string
		isCatchAll bool
		want       string
		wantErr    error
	}{
		{name: "plain segment", segment: "hello", want: "hello"},
		{name: "encoded space", segment: "hello%20world", want: "hello world"},
		{name: "encoded slash in param", segment: "hello%2Fworld", wantErr: ErrEncodedSlashInSegment},
		{name: "encoded slash in catch-all", segment: "hello%2Fworld", isCatchAll: true, want: "hello/world"},
		{name: "invalid percent escape", segment: "hello%ZZ", wantErr: ErrInvalidPercentEscape},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeSegment(tc.segment, tc.isCatchAll)
			if err != tc.wantErr {
				t.Fatalf("DecodeSegment(%q, %v) error = %v, want %v", tc.segment, tc.isCatchAll, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("DecodeSegment(%q, %v) = %q, want %q", tc.segment, tc.isCatchAll, got, tc.want)
			}
		})
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/", nil},
		{"", nil},
		{"/a/b/c", []string{"a", "b", "c"}},
		{"/a/", []string{"a"}},
	}
	for _, tc := range tests {
		if got := Segments(tc.path); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Segments(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}
