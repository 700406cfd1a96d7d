package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets.
type Test mg.Namespace

// All runs every package's tests verbosely.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs the tests quietly, as CI does.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs the tests with the race detector, bypassing the test cache.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "-count=1", "./...")
}

// Cover writes a coverage profile to bin/coverage.out and prints the
// per-function summary.
func (Test) Cover() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	profile := filepath.Join(binaryDir, "coverage.out")
	if err := sh.RunV(binGo, "test", "-coverprofile="+profile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+profile)
}
