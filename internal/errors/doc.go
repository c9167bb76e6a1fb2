// Package errors provides the coded, actionable errors reported by the
// vtree command.
//
// Each code maps to a registered Template holding a category, a short
// message and a longer explanation. Errors can carry the location of the
// offending line in an input file and a hint:
//
//	err := errors.New(errors.CodeConfigValue).
//	    WithLocation("vtree.yaml", 4, 0).
//	    WithSuggestion("bench.mutation_rate must be between 0 and 1")
//
//	errors.Print(os.Stderr, err)
//	// ERROR E121: Invalid configuration value
//	//
//	//   vtree.yaml:4
//	//
//	//        2 │   seed: 1
//	//        3 │   pairs: 100
//	//   →    4 │   mutation_rate: 3
//	//
//	//   A configuration value is outside its allowed range.
//	//
//	//   Hint: bench.mutation_rate must be between 0 and 1
package errors
