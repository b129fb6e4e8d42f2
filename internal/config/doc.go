// Package config defines the format-agnostic model for the default
// application state, along with the core interfaces (Loader, Renderer)
// for reading it from configuration files and rendering state
// templates. Concrete implementations, such as for HCL, are provided
// in separate packages.
package config
