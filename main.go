// The main package for the recrawl executable.
package main

import (
	"github.com/recrawl/recrawl/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
