package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build compiles the dynobject binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Scenario builds the binary and runs the counter scenario against a
// throwaway config and data directory, printing the run history after.
func Scenario() error {
	mg.Deps(Build)
	dir, err := os.MkdirTemp("", "dynobject-scenario-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	bin := filepath.Join(binaryDir, binaryName)
	dirs := []string{"--config-dir", filepath.Join(dir, "config"), "--data-dir", filepath.Join(dir, "data")}
	for _, cmd := range [][]string{{"init"}, {"run"}, {"history"}} {
		if err := sh.RunV(bin, append(dirs, cmd...)...); err != nil {
			return err
		}
	}
	return nil
}
