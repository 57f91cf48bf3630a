// File: cmd/locus/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/xkilldash9x/locus/cmd"
	"github.com/xkilldash9x/locus/internal/observability"
)

const panicLogFile = "panic.log"

// Function variables for tests.
var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
	stdin       io.Reader = os.Stdin
	stdout      io.Writer = os.Stdout
	stderr      io.Writer = os.Stderr
)

func main() {
	defer handlePanic()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 {
		if err := cmd.Execute(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				osExit(0)
				return
			}
			osExit(1)
		}
		return
	}

	if err := runShell(ctx, stdin, stdout); err != nil {
		fmt.Fprintln(stderr, "Error reading from stdin:", err)
		osExit(1)
	}
}

// runShell reads one command line at a time and runs it against a fresh
// command tree, so flags never leak between lines.
func runShell(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "locus > ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		args, err := splitArgs(line)
		if err != nil {
			fmt.Fprintln(out, "Error:", err)
			continue
		}
		executeLine(ctx, args, out)
		if ctx.Err() != nil {
			break
		}
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

// executeLine runs a single shell command. A panicking command does not end the session.
func executeLine(ctx context.Context, args []string, out io.Writer) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(out, "Error: command panicked: %v\n", r)
		}
	}()

	root := cmd.NewRootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	if err := root.ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(out, "Error:", err)
	}
}

// splitArgs splits a shell line on whitespace. Single or double quotes group
// words, which selectors such as "nav a" need.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quote   rune
		pending bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			pending = true
		case r == ' ' || r == '\t':
			if pending {
				args = append(args, cur.String())
				cur.Reset()
				pending = false
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if pending {
		args = append(args, cur.String())
	}
	return args, nil
}

// handlePanic writes the stack to panicLogFile and exits non-zero.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	observability.Sync()

	msg := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
	if err := osWriteFile(panicLogFile, []byte(msg), 0o644); err != nil {
		fmt.Fprintf(stderr, "CRITICAL: Failed to write panic log: %v\n", err)
		fmt.Fprintf(stderr, "Panic details:\n%s\n", msg)
		osExit(1)
		return
	}
	fmt.Fprintf(stderr, "locus crashed. Details logged to %s\n", panicLogFile)
	osExit(1)
}
