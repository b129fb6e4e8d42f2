// Package schema holds the HCL decode structs for the bootstrap
// configuration files.
package schema

import "github.com/hashicorp/hcl/v2"

// Defaults represents the `defaults` block: either an inline state
// object or a reference to a named template.
type Defaults struct {
	State    hcl.Expression `hcl:"state,optional"`
	Template string         `hcl:"template,optional"`
}

// Template represents a named `template` block. Content is kept as an
// expression so HCL string interpolation runs against the render
// context.
type Template struct {
	Name    string         `hcl:"name,label"`
	Content hcl.Expression `hcl:"content"`
}

// Config represents the top-level structure of a bootstrap
// configuration file.
type Config struct {
	Defaults  *Defaults   `hcl:"defaults,block"`
	Templates []*Template `hcl:"template,block"`
	Body      hcl.Body    `hcl:",remain"`
}
