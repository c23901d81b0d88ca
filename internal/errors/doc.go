// Package errors provides coded, actionable diagnostics for the hashnav
// command line: configuration problems, route table mistakes, failed
// scenario expectations and serve failures.
//
// # Error Categories
//
//   - config: the project configuration file cannot be read or is invalid
//   - routes: the route table cannot be built
//   - scenario: a scenario cannot be loaded or one of its expectations failed
//   - serve: the development server cannot start
//
// # Error Codes
//
// Each error has a unique code (e.g., "E120") mapping to a short message,
// a longer explanation and a documentation URL.
//
// # Usage
//
//	err := errors.New("E121").
//	    WithLocation("scenarios/login.yaml", 14, 5).
//	    WithDetail(`fullPath = "/home", want "/about"`)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E121: Scenario expectation failed
//	//
//	//   scenarios/login.yaml:14:5
//	//
//	//     12 │   - push: /about
//	//     13 │   - expect:
//	//   → 14 │       fullPath: /about
//	//        │     ^
//	//
//	//   fullPath = "/home", want "/about"
package errors
