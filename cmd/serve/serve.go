package serve

import (
	"context"
	"fmt"

	"dominicbreuker/wscat/cmd/shared"
	"dominicbreuker/wscat/pkg/handler/chat"
	"dominicbreuker/wscat/pkg/handler/echo"
	"dominicbreuker/wscat/pkg/node"

	"github.com/urfave/cli/v3"
)

// GetCommand returns the serve command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:        "serve",
		Usage:       "Accept WebSocket connections and echo or relay their messages",
		Description: shared.GetBaseDescription(),
		ArgsUsage:   shared.GetArgsUsage(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := shared.ParseSettings(cmd, nil)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			collector, err := shared.StartMetrics(ctx, s.Metrics, s.Node.Logger)
			if err != nil {
				return err
			}

			switch mode := cmd.String(shared.ModeFlag); mode {
			case "echo":
				f := echo.New(cmd.String(shared.PrefixFlag), s.Node.Logger)
				err = run(ctx, s, node.New[*echo.Handler](s.Node, f, node.WithMetrics(collector)))
				connections, messages := f.Totals()
				s.Node.Logger.VerboseMsg("Echoed %d messages on %d connections", messages, connections)
				return err
			case "chat":
				return run(ctx, s, node.New[*chat.Member](s.Node, chat.New(s.Node.Logger), node.WithMetrics(collector)))
			default:
				return fmt.Errorf("%s: %q is not one of echo, chat", shared.ModeFlag, mode)
			}
		},
		Flags: getFlags(),
	}
}

// run serves until the node is shut down by a signal or the listener fails,
// then waits for open connections to finish their closing handshake.
func run[H any](ctx context.Context, s *shared.Settings, n *node.Node[H]) error {
	shared.SetupSignalHandling(n.Shutdown, 2*s.Node.Timeout)

	err := n.ListenAndServe(ctx)
	n.Shutdown()

	wctx, cancel := context.WithTimeout(context.Background(), s.Node.Timeout)
	defer cancel()
	if werr := n.Wait(wctx); werr != nil {
		s.Node.Logger.ErrorMsg("%d connections did not close in time", n.Len())
	}

	if err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, shared.GetServeFlags()...)

	return flags
}

