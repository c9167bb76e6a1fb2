// Package config loads the vtree command configuration.
//
// The configuration lives in vtree.yaml (or vtree.yml, or vtree.json) and
// every field is optional:
//
//	bench:
//	  seed: 42
//	  pairs: 5000
//	  profile: wide       # small, default, wide or deep
//	  fanout: 80          # overrides the profile
//	  mutation_rate: 0.25
//	  workers: 8
//	metrics:
//	  namespace: vtree
//	  addr: ":9090"       # serve /metrics while running
//	log:
//	  level: debug
//	  format: json
//	history:
//	  capacity: 200
//
// Command line flags override file values.
package config
