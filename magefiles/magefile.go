//go:build mage

// Package main provides build targets for optitask using Mage.
//
// Usage:
//
//	mage build     Compile the optitask binary to bin/
//	mage test      Run all tests
//	mage vet       Run go vet
//	mage clean     Remove build artifacts
//	mage migrate   Build, then apply the schema with the current settings
//	mage serve     Build, then run the API
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "optitask"
	binaryDir  = "bin"
	cmdDir     = "./cmd/server"
)

var binary = filepath.Join(binaryDir, binaryName)

// Build compiles the optitask binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	return sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", binary, cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet over every package.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}

// Migrate builds first, then applies the schema.
func Migrate() error {
	mg.Deps(Build)
	return sh.RunV(binary, "migrate")
}

// Serve builds first, then runs the API in the foreground.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binary, "serve")
}
