// Command lumen is the language's command-line entry point: run with no
// arguments for a REPL, with one argument to execute a script file, or
// with anything else to print usage and exit.
package main

import (
	"os"

	"github.com/mna/mainer"
)

func main() {
	c := &Cmd{}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
