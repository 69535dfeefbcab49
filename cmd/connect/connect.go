package connect

import (
	"context"
	"fmt"
	"io"
	"os"

	"dominicbreuker/wscat/cmd/shared"
	"dominicbreuker/wscat/pkg/handler/console"
	"dominicbreuker/wscat/pkg/log"
	"dominicbreuker/wscat/pkg/node"
	"dominicbreuker/wscat/pkg/pipeio"
	"dominicbreuker/wscat/pkg/ws"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// GetCommand returns the connect command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:        "connect",
		Usage:       "Connect to a WebSocket server, send stdin lines and print messages",
		Description: shared.GetBaseDescription(),
		ArgsUsage:   shared.GetArgsUsage(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := shared.ParseSettings(cmd, nil)
			if err != nil {
				return err
			}

			var transcript *log.Transcript
			if path := cmd.String(shared.TranscriptFlag); path != "" {
				if transcript, err = log.OpenTranscript(path); err != nil {
					return err
				}
				defer transcript.Close()
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			collector, err := shared.StartMetrics(ctx, s.Metrics, s.Node.Logger)
			if err != nil {
				return err
			}

			stdin := pipeio.NewStdin(os.Stdin)
			defer stdin.Close()
			if term.IsTerminal(int(os.Stdin.Fd())) {
				s.Node.Logger.InfoMsg("Type lines to send them. /ping, /close [reason] and /quit are commands.")
			}

			f := console.New(os.Stdout, transcript, s.Node.Logger)
			n := node.New[*console.Handler](s.Node, f, node.WithMetrics(collector))
			shared.SetupSignalHandling(n.Shutdown, 2*s.Node.Timeout)

			return run(ctx, s, n, f, stdin)
		},
		Flags: getFlags(),
	}
}

// run connects n and pumps lines from in until the connection ends.
func run(ctx context.Context, s *shared.Settings, n *node.Node[*console.Handler], f *console.Factory, in io.ReadCloser) error {
	pctx, stop := context.WithCancel(ctx)
	go pump(pctx, f, in, s.Node.Logger)
	go func() {
		select {
		case <-f.Done():
			in.Close()
		case <-pctx.Done():
		}
	}()

	url := s.Node.URL()
	s.Node.Logger.VerboseMsg("Connecting to %s", url)
	err := n.Connect(ctx, url)
	stop()
	in.Close()
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	return nil
}

// pump sends the lines of in over the first connection. At the end of input
// the connection is closed normally.
func pump(ctx context.Context, f *console.Factory, in io.Reader, logger *log.Logger) {
	var out ws.Sender
	select {
	case out = <-f.Senders():
	case <-f.Done():
		return
	case <-ctx.Done():
		return
	}

	err := pipeio.Lines(in, func(line string) error {
		return f.SendLine(out, line)
	})
	if err != nil && ctx.Err() == nil {
		logger.ErrorMsg("%s", err)
	}

	select {
	case <-f.Done():
	case <-ctx.Done():
	default:
		_ = out.Close(ws.CloseNormal)
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, shared.GetConnectFlags()...)

	return flags
}
