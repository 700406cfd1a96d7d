// Package main provides the dynobject CLI, which runs the counter processor
// scenario over a shared dynamic object and keeps a journal of runs.
package main

import "os"

func main() {
	os.Exit(Execute(os.Args[1:]))
}
