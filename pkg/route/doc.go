// Package route defines the value types shared by the navigation engine and
// its matchers.
//
// A Location is a raw navigation request: a path string or a named target
// with params. A Matcher resolves a Location into a Route, an immutable
// snapshot of where the application is (or is going). Routes carry the
// chain of matched Records, outermost first, so that two routes reaching
// the same leaf record can be recognised as the same navigation target.
//
// # Usage
//
//	loc := route.ParseLocation("/users/42?tab=posts#bio")
//	r, err := matcher.Match(loc, current)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(r.FullPath) // "/users/42?tab=posts#bio"
//
// Start is the sentinel route that stands for "nowhere": it is the current
// route of every engine before the first transition commits.
package route
