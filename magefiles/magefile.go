//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	spvDir  = "build/spv"
	demoDir = "build/demo"
)

// Default target to run when none is specified.
var Default = Test

type Build mg.Namespace

// Shaders compiles every WGSL stage to SPIR-V with naga.
func (Build) Shaders() error {
	return sh.RunV("go", "run", "./internal/cmd/compile-shaders", "-out", spvDir)
}

// Demo builds the demo command.
func (Build) Demo() error {
	return sh.RunV("go", "build", "-o", filepath.Join("build", "tileraster"), "./cmd/tileraster")
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// NoGPU runs the unit tests with the GPU backend compiled out.
func NoGPU() error {
	return sh.RunV("go", "test", "-tags", "nogpu", "./...")
}

// Race runs the unit tests with the race detector.
func Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs go vet.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Render draws the demo scenes on the CPU backend into build/demo.
func Render() error {
	mg.Deps(Build.Demo)
	if err := os.MkdirAll(demoDir, 0o755); err != nil {
		return err
	}
	bin := filepath.Join("build", "tileraster")
	for _, mesh := range []string{"triangle", "cube", "sphere"} {
		out := filepath.Join(demoDir, mesh+".png")
		if err := sh.RunV(bin, "-mesh", mesh, "-output", out); err != nil {
			return fmt.Errorf("render %s: %w", mesh, err)
		}
	}
	return nil
}

// Clean removes build outputs.
func Clean() error {
	return sh.Rm("build")
}
