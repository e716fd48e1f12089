// bootlog is a small command line front end for the bootlog package.
//
// Usage:
//
//	bootlog [global options] <command> [command options] [arguments]
//
// Commands:
//
//	path <dir> <name> [ext]   print the first free path for name in dir
//	wait <file>               block until file can be held exclusively
//	run [message...]          log through a logger, buffering until it initializes
//
// Exit codes:
//
//	0: success
//	1: command failed
//	2: invalid arguments
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

// defaultTimeout bounds the wait and run commands
const defaultTimeout = 30 * time.Second

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// createApp builds the root command writing its output to w
func createApp(w, errw io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "bootlog",
		Usage:     "startup-safe file logging utilities",
		Version:   fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Writer:    w,
		ErrWriter: errw,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "upper bound for blocking commands",
				Value:   defaultTimeout,
			},
		},
		Commands: createCommands(),
		// Exit codes are mapped in run
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(errw, err)
			}
		},
	}
}

func run(args []string, w, errw io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := createApp(w, errw).Run(ctx, args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(errw, "invalid arguments: %v\n", usageErr)
			return 2
		}
		fmt.Fprintf(errw, "error: %v\n", err)
		return 1
	}
	return 0
}
