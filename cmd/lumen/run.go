package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/mna/mainer"

	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/vm"
)

type writerStdout struct{ w io.Writer }

func (s writerStdout) WriteString(str string) (int, error) { return io.WriteString(s.w, str) }

// runFile reads path and interprets it as a single top-level program,
// translating the VM's result into the CLI's exit-code contract.
func runFile(_ context.Context, stdio mainer.Stdio, path string) mainer.ExitCode {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "Could not read file \"%s\".\n", path)
		return mainer.ExitCode(74)
	}

	h := heap.New()
	m := vm.New(h)
	m.Stdout = writerStdout{stdio.Stdout}

	switch m.Interpret(string(source)) {
	case vm.CompileError:
		return mainer.ExitCode(65)
	case vm.RuntimeError:
		return mainer.ExitCode(70)
	default:
		return mainer.ExitCode(0)
	}
}

// runREPL reads one line at a time from stdin and interprets each as its
// own top-level program, printing a prompt only when stdin looks like an
// interactive terminal rather than a pipe.
func runREPL(ctx context.Context, stdio mainer.Stdio) mainer.ExitCode {
	h := heap.New()
	m := vm.New(h)
	m.Stdout = writerStdout{stdio.Stdout}

	interactive := false
	if f, ok := stdio.Stdin.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	scanner := bufio.NewScanner(stdio.Stdin)
	for {
		if interactive {
			fmt.Fprint(stdio.Stdout, "> ")
		}
		select {
		case <-ctx.Done():
			return mainer.ExitCode(0)
		default:
		}
		if !scanner.Scan() {
			fmt.Fprintln(stdio.Stdout)
			return mainer.ExitCode(0)
		}
		m.Interpret(scanner.Text())
	}
}
