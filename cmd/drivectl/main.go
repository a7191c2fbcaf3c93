// drivectl lists, uploads and recursively downloads files in Google Drive.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jun/drivectl/internal/conflict"
	"github.com/jun/drivectl/internal/handler"
)

// Version information
var (
	Version   = "v0.1.0-dev"
	BuildTime = "unknown"
)

const (
	exitOK       = 0
	exitError    = 1
	exitConflict = 2
	exitUsage    = 64
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	switch {
	case errors.Is(err, handler.ErrUsage):
		fmt.Fprintln(stderr)
		cmd.SetOut(stderr)
		_ = cmd.Usage()
		return exitUsage
	case errors.Is(err, conflict.ErrConflict):
		return exitConflict
	default:
		return exitError
	}
}
