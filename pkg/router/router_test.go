package router

import (
	"errors"
	"testing"

	"github.com/vango-dev/hashnav/pkg/route"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	r := New()
	err := r.Add(
		RecordConfig{Path: "/", Name: "home"},
		RecordConfig{Path: "/about", Name: "about"},
		RecordConfig{
			Path: "/users",
			Name: "users",
			Children: []RecordConfig{
				{Path: "", Name: "user-list"},
				{Path: ":id:int", Name: "user"},
				{Path: ":id:int/edit", Name: "user-edit"},
			},
		},
		RecordConfig{Path: "/files/*path", Name: "files"},
		RecordConfig{Path: "/teams/:team:uuid", Name: "team"},
	)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return r
}

func TestMatchStaticPath(t *testing.T) {
	r := newTestRouter(t)

	got, err := r.Match(route.ParseLocation("/about"), route.Start)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if got.Name != "about" {
		t.Errorf("Name = %q, want %q", got.Name, "about")
	}
	if got.FullPath != "/about" {
		t.Errorf("FullPath = %q, want %q", got.FullPath, "/about")
	}
	if len(got.Matched) != 1 {
		t.Errorf("len(Matched) = %d, want 1", len(got.Matched))
	}
}

func TestMatchNestedRecords(t *testing.T) {
	r := newTestRouter(t)

	got, err := r.Match(route.ParseLocation("/users/42?tab=posts#bio"), route.Start)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if got.Params["id"] != "42" {
		t.Errorf("params[id] = %q, want %q", got.Params["id"], "42")
	}
	if len(got.Matched) != 2 || got.Matched[0].Name != "users" || got.Matched[1].Name != "user" {
		t.Errorf("Matched = %v, want [users user]", got.Matched)
	}
	if got.FullPath != "/users/42?tab=posts#bio" {
		t.Errorf("FullPath = %q, want %q", got.FullPath, "/users/42?tab=posts#bio")
	}
}

func TestMatchIndexChildTakesParentPath(t *testing.T) {
	r := newTestRouter(t)

	got, err := r.Match(route.ParseLocation("/users"), route.Start)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if got.Name != "user-list" {
		t.Errorf("Name = %q, want %q", got.Name, "user-list")
	}
	if len(got.Matched) != 2 {
		t.Errorf("len(Matched) = %d, want 2", len(got.Matched))
	}
}

func TestMatchTypedParamRejectsBadValue(t *testing.T) {
	r := newTestRouter(t)

	_, err := r.Match(route.ParseLocation("/users/abc"), route.Start)
	var me *MatchError
	if !errors.As(err, &me) {
		t.Fatalf("error = %v, want *MatchError", err)
	}
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("error = %v, want ErrNoMatch", err)
	}
	if me.Location != "/users/abc" {
		t.Errorf("Location = %q, want %q", me.Location, "/users/abc")
	}
}

func TestMatchUUIDParam(t *testing.T) {
	r := newTestRouter(t)

	if _, err := r.Match(route.ParseLocation("/teams/6ba7b810-9dad-11d1-80b4-00c04fd430c8"), route.Start); err != nil {
		t.Errorf("valid uuid should match, got %v", err)
	}
	if _, err := r.Match(route.ParseLocation("/teams/not-a-uuid"), route.Start); !errors.Is(err, ErrNoMatch) {
		t.Errorf("invalid uuid error = %v, want ErrNoMatch", err)
	}
}

func TestMatchCatchAll(t *testing.T) {
	r := newTestRouter(t)

	got, err := r.Match(route.ParseLocation("/files/a/b/c.txt"), route.Start)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if got.Params["path"] != "a/b/c.txt" {
		t.Errorf("params[path] = %q, want %q", got.Params["path"], "a/b/c.txt")
	}
}

func TestMatchCanonicalizesPath(t *testing.T) {
	r := newTestRouter(t)

	got, err := r.Match(route.ParseLocation("/about/"), route.Start)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if got.FullPath != "/about" {
		t.Errorf("FullPath = %q, want %q", got.FullPath, "/about")
	}

	if _, err := r.Match(route.ParseLocation("/../etc"), route.Start); !errors.Is(err, ErrNoMatch) {
		t.Errorf("escaping path error = %v, want ErrNoMatch", err)
	}
}

func TestMatchRelativePath(t *testing.T) {
	r := newTestRouter(t)
	current, _ := r.Match(route.ParseLocation("/users/42"), route.Start)

	got, err := r.Match(route.ParseLocation("7"), current)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if got.FullPath != "/users/7" {
		t.Errorf("FullPath = %q, want %q", got.FullPath, "/users/7")
	}

	got, err = r.Match(route.ParseLocation("?tab=likes"), current)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if got.FullPath != "/users/42?tab=likes" {
		t.Errorf("FullPath = %q, want %q", got.FullPath, "/users/42?tab=likes")
	}
}

func TestMatchNamed(t *testing.T) {
	r := newTestRouter(t)

	got, err := r.Match(route.Location{
		Name:   "user-edit",
		Params: map[string]string{"id": "9"},
		Query:  route.Query{"draft": {"1"}},
	}, route.Start)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if got.FullPath != "/users/9/edit?draft=1" {
		t.Errorf("FullPath = %q, want %q", got.FullPath, "/users/9/edit?draft=1")
	}
}

func TestMatchNamedInheritsParams(t *testing.T) {
	r := newTestRouter(t)
	current, _ := r.Match(route.ParseLocation("/users/42"), route.Start)

	got, err := r.Match(route.Location{Name: "user-edit"}, current)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if got.Path != "/users/42/edit" {
		t.Errorf("Path = %q, want %q", got.Path, "/users/42/edit")
	}
}

func TestMatchNamedErrors(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		loc  route.Location
		want error
	}{
		{"unknown name", route.Location{Name: "nope"}, ErrUnknownName},
		{"missing param", route.Location{Name: "user"}, ErrMissingParam},
		{"invalid param", route.Location{Name: "user", Params: map[string]string{"id": "x"}}, ErrInvalidParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Match(tt.loc, route.Start)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMatchRelativeParams(t *testing.T) {
	r := newTestRouter(t)
	current, _ := r.Match(route.ParseLocation("/users/42"), route.Start)

	got, err := r.Match(route.Location{Params: map[string]string{"id": "43"}}, current)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if got.Path != "/users/43" {
		t.Errorf("Path = %q, want %q", got.Path, "/users/43")
	}

	if _, err := r.Match(route.Location{Params: map[string]string{"id": "1"}}, route.Start); !errors.Is(err, ErrNoCurrent) {
		t.Errorf("error = %v, want ErrNoCurrent", err)
	}
}

func TestNotFoundRecord(t *testing.T) {
	r := newTestRouter(t)
	r.SetNotFound("not-found", nil)

	got, err := r.Match(route.ParseLocation("/missing"), route.Start)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if got.Name != "not-found" || got.Path != "/missing" {
		t.Errorf("got %q at %q, want not-found at /missing", got.Name, got.Path)
	}
}

func TestAddErrors(t *testing.T) {
	r := New()
	if err := r.Add(RecordConfig{Path: "about"}); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("relative top-level path error = %v, want ErrInvalidPath", err)
	}
	if err := r.Add(RecordConfig{Path: "/a", Name: "x"}, RecordConfig{Path: "/b", Name: "x"}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate name error = %v, want ErrDuplicateName", err)
	}
}

func TestRoutesAndLookup(t *testing.T) {
	r := newTestRouter(t)
	if got := len(r.Routes()); got != 8 {
		t.Errorf("len(Routes()) = %d, want 8", got)
	}
	rec, ok := r.Lookup("user")
	if !ok || rec.Path != "/users/:id:int" {
		t.Errorf("Lookup(user) = %v, %v", rec, ok)
	}
}

func TestMatchedRecordsAreStable(t *testing.T) {
	r := newTestRouter(t)
	a, _ := r.Match(route.ParseLocation("/users/1"), route.Start)
	b, _ := r.Match(route.ParseLocation("/users/1"), a)

	if !route.IsSameRoute(a, b) || !route.SameMatch(a, b) {
		t.Error("matching the same path twice should yield the same target")
	}
}
