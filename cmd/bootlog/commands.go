package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/lixenwraith/bootlog"
	"github.com/lixenwraith/bootlog/fsutil"
)

// usageError marks a bad invocation, mapped to exit code 2
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func newUsageError(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func createCommands() []*cli.Command {
	return []*cli.Command{
		createPathCommand(),
		createWaitCommand(),
		createRunCommand(),
	}
}

// createPathCommand prints a collision-free path without creating the file
func createPathCommand() *cli.Command {
	return &cli.Command{
		Name:      "path",
		Usage:     "print the first unused path for a file name in a directory",
		ArgsUsage: "<dir> <name> [ext]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() < 2 || args.Len() > 3 {
				return newUsageError("path expects <dir> <name> [ext], got %d arguments", args.Len())
			}

			path, err := fsutil.BuildUniquePathContext(ctx, args.Get(0), args.Get(1), args.Get(2))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, path)
			return nil
		},
	}
}

// createWaitCommand blocks until a file is free of other holders
func createWaitCommand() *cli.Command {
	return &cli.Command{
		Name:      "wait",
		Usage:     "wait until an existing file can be opened with exclusive access (a missing file is waited on until --timeout)",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "delay",
				Aliases: []string{"d"},
				Usage:   "delay between probes",
				Value:   100 * time.Millisecond,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return newUsageError("wait expects exactly one <file>")
			}

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			path := cmd.Args().First()
			if err := fsutil.WaitUntilExclusivelyOpenable(ctx, path, cmd.Duration("delay")); err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "%s is free\n", path)
			return nil
		},
	}
}

// createRunCommand logs its arguments through a logger that starts buffered
func createRunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "log messages, buffering them until the log file is initialized",
		ArgsUsage: "[message...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML file with a [bootlog] table",
			},
			&cli.StringSliceFlag{
				Name:    "set",
				Aliases: []string{"s"},
				Usage:   "key=value override applied after the config file",
			},
			&cli.StringFlag{
				Name:  "level",
				Usage: "level for the logged messages",
				Value: "info",
			},
			&cli.BoolFlag{
				Name:  "wait",
				Usage: "wait for another instance to release the log file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			level, err := bootlog.Level(cmd.String("level"))
			if err != nil {
				return newUsageError("%v", err)
			}

			logger, err := newLogger(cmd.String("config"), cmd.StringSlice("set"))
			if err != nil {
				return err
			}
			defer logger.Shutdown()

			origin := bootlog.Origin{Unit: "bootlog", Member: "run"}
			logger.Write(bootlog.LevelInfo, origin, "starting with", cmd.Args().Len(), "messages")

			if cmd.Bool("wait") {
				ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
				defer cancel()
				if err := logger.InitializeWait(ctx); err != nil {
					return err
				}
			} else {
				cfg := logger.GetConfig()
				logger.Initialize(cfg.Directory, cfg.Name)
				if err := logger.InitError(); err != nil {
					return err
				}
			}

			for _, msg := range cmd.Args().Slice() {
				logger.Write(level, origin, msg)
			}

			stats := logger.Stats()
			fmt.Fprintf(cmd.Root().Writer, "%s: %d written, %d buffered, %d rotated\n",
				logger.LogFilePath(), stats.Written, stats.Buffered, stats.Rotations)
			return logger.Flush()
		},
	}
}

// newLogger loads configuration from path, layers overrides on top and
// returns a logger still in buffering mode
func newLogger(path string, overrides []string) (*bootlog.Logger, error) {
	cfg := bootlog.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = bootlog.NewConfigFromFile(path); err != nil {
			return nil, err
		}
	}

	logger := bootlog.NewLogger()
	if err := logger.ApplyConfig(cfg); err != nil {
		return nil, err
	}
	if err := logger.ApplyOverride(overrides...); err != nil {
		return nil, newUsageError("%v", err)
	}
	return logger, nil
}
