//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
var Default = Build

// Build compiles every executable into ./bin
func Build() error {
	mg.Deps(BuildEvd, BuildEvdConvert)
	fmt.Println("Compilation finished")
	return nil
}

// HDF5 is linked through cgo, so the cgo flags of the caller are forwarded.
func goCommand(args ...string) *exec.Cmd {
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", os.Getenv("CGO_LDFLAGS")),
		fmt.Sprintf("CGO_CFLAGS=%s", os.Getenv("CGO_CFLAGS")))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

func BuildEvd() error {
	fmt.Println("Building evd executable...")
	return goCommand("build", "-o", "./bin/evd", "./evd").Run()
}

func BuildEvdConvert() error {
	fmt.Println("Building evdconvert executable...")
	return goCommand("build", "-o", "./bin/evdconvert", "./evdconvert").Run()
}

// Test runs the unit tests of every package.
func Test() error {
	return goCommand("test", "./...").Run()
}
