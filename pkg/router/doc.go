// Package router is the default route matcher for hashnav.
//
// Records are registered as a tree of RecordConfig values and stored in a
// radix tree keyed by path segment. Matching walks the tree preferring
// static segments, then params, then catch-alls:
//
//	/users           static
//	/users/:id       param (string)
//	/users/:id:int   typed param (int, uint, uuid)
//	/files/*path     catch-all
//
// Nested records produce routes whose Matched chain lists every enclosing
// record, outermost first, which is what the navigation engine uses to
// detect redundant navigations.
//
// # Usage
//
//	r := router.New()
//	err := r.Add(router.RecordConfig{
//	    Path: "/users",
//	    Name: "users",
//	    Children: []router.RecordConfig{
//	        {Path: ":id:int", Name: "user"},
//	    },
//	})
//
//	rt, err := r.Match(route.ParseLocation("/users/42"), route.Start)
//	// rt.Params["id"] == "42", len(rt.Matched) == 2
//
// Unresolvable locations fail with a *MatchError whose reason is one of the
// Err* sentinels, unless SetNotFound registered a catch-everything record.
package router
