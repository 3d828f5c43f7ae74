package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
)

const usage = "Usage: lumen [path]\n"

// Cmd implements the mainer.Cmd contract: a no-flag, positional-only
// command whose only decision is how many path arguments it was given.
type Cmd struct {
	args []string
}

func (c *Cmd) SetArgs(args []string)     { c.args = args }
func (c *Cmd) SetFlags(map[string]bool)  {}

func (c *Cmd) Validate() error {
	if len(c.args) > 1 {
		return fmt.Errorf("too many arguments")
	}
	return nil
}

// Main implements the CLI contract: no args opens a REPL, one arg runs
// that file, anything else is a usage error.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprint(stdio.Stderr, usage)
		return mainer.ExitCode(64)
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	switch len(c.args) {
	case 0:
		return runREPL(ctx, stdio)
	case 1:
		return runFile(ctx, stdio, c.args[0])
	default:
		fmt.Fprint(stdio.Stderr, usage)
		return mainer.ExitCode(64)
	}
}
