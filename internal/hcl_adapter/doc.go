// Package hcl_adapter is the HCL-specific implementation of the
// config.Loader interface. Physical sections are blocks, module sub-tables
// are nested blocks, and parameters are literal attribute expressions:
//
//	star {
//	  module = "mors"
//	  mass   = 1.0
//	  mors {
//	    spec = "sun.txt"
//	  }
//	}
//
// The adapter mirrors toml_adapter: it translates syntax into the raw
// value tree and leaves all schema validation to the resolver.
package hcl_adapter
