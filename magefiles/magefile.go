// Package main provides build targets for the dynobject project using Mage.
//
// Usage:
//
//	mage build       Compile the dynobject binary to bin/
//	mage test:all    Run all tests
//	mage test:unit   Run tests without the race detector and cache bypass
//	mage test:race   Run all tests with the race detector
//	mage test:cover  Write a coverage profile to bin/coverage.out
//	mage lint        Run golangci-lint
//	mage clean       Remove build artifacts
//	mage install     Install dynobject to GOPATH/bin
//	mage scenario    Build and run the counter scenario in a scratch directory
//	mage stats       Print Go LOC and documentation word counts
package main

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "dynobject"
	binaryDir  = "bin"
	cmdDir     = "./cmd/dynobject"
)
