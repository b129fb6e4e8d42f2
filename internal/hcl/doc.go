// Package hcl provides the concrete HCL implementation of the
// configuration loading and template rendering interfaces defined in
// the `config` package. It is responsible for file parsing, schema
// decoding, and cty-to-Go data binding for state values.
package hcl
