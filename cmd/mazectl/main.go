// Command mazectl works on maze map files without a running server. It can
// generate, solve, print, validate and list the binary maps the server keeps
// in its maps directory. The play command walks a session on a live server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		logrus.WithError(err).Error("mazectl failed")
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "mazectl",
		Usage: "generate, solve and inspect maze map files",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logrus.SetOutput(cmd.Root().ErrWriter)
			if cmd.Bool("debug") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			generateCommand(),
			solveCommand(),
			showCommand(),
			validateCommand(),
			listCommand(),
			playCommand(),
		},
	}
}

// out returns the writer commands print results to.
func out(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func requireArg(cmd *cli.Command, what string) (string, error) {
	arg := cmd.Args().First()
	if arg == "" {
		return "", fmt.Errorf("%s: missing %s argument", cmd.Name, what)
	}
	return arg, nil
}
