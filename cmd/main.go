package main

import (
	"context"
	"os"

	"dominicbreuker/wscat/cmd/connect"
	"dominicbreuker/wscat/cmd/serve"
	"dominicbreuker/wscat/cmd/version"
	"dominicbreuker/wscat/pkg/log"

	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "wscat",
		Usage: "serve and connect to WebSocket endpoints",
		Commands: []*cli.Command{
			serve.GetCommand(),
			connect.GetCommand(),
			version.GetCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.NewLogger(false).ErrorMsg("%s\n", err)
		os.Exit(1)
	}
}
