// The main package for the tabfetch executable.
package main

import (
	"github.com/tabrun/tabfetch/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
