// Package types defines the standard errors and the processor configuration
// shared by the dynobject core, the run journal, and the dynobject CLI.
package types
