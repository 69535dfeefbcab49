// Package shared provides common CLI flag definitions and utility functions
// used across wscat's command-line interface.
package shared

import (
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

const categoryCommon = "common"

// VerboseFlag is the name of the flag to enable verbose logging.
const VerboseFlag = "verbose"

// TimeoutFlag is the name of the flag to specify dial, write and close timeouts.
const TimeoutFlag = "timeout"

// ConfigFlag is the name of the flag to specify a YAML config file.
const ConfigFlag = "config"

// LogFormatFlag is the name of the flag to choose text or json logs.
const LogFormatFlag = "log-format"

// QueueSizeFlag is the name of the flag to size per connection outbound queues.
const QueueSizeFlag = "queue-size"

// ReadLimitFlag is the name of the flag to limit inbound message sizes.
const ReadLimitFlag = "read-limit"

// MetricsFlag is the name of the flag to serve Prometheus metrics.
const MetricsFlag = "metrics"

// GetBaseDescription returns the base description text for transport
// specifications used in CLI commands.
func GetBaseDescription() string {
	return strings.Join([]string{
		"Specify transport like this: ws://127.0.0.1:8080/chat (supports ws|wss|kcp)",
		"The path is optional. You can omit the host or use * when serving to bind to all interfaces.",
		"kcp carries WebSocket over a KCP session on UDP.",
	}, "\n")
}

// GetArgsUsage returns the arguments usage string for CLI commands.
func GetArgsUsage() string {
	return "transport"
}

// GetCommonFlags returns the CLI flags shared by serve and connect.
func GetCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     VerboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Verbose logging",
			Category: categoryCommon,
			Value:    false,
		},
		&cli.DurationFlag{
			Name:     TimeoutFlag,
			Aliases:  []string{"t"},
			Usage:    "Timeout for dialing, writes and closing handshakes",
			Category: categoryCommon,
			Value:    10 * time.Second,
		},
		&cli.StringFlag{
			Name:     ConfigFlag,
			Aliases:  []string{"c"},
			Usage:    "YAML config file; WSCAT_* environment variables are read as well",
			Category: categoryCommon,
			Value:    "",
		},
		&cli.StringFlag{
			Name:     LogFormatFlag,
			Usage:    "Log format: text or json",
			Category: categoryCommon,
			Value:    "text",
		},
		&cli.IntFlag{
			Name:     QueueSizeFlag,
			Usage:    "Outbound messages buffered per connection",
			Category: categoryCommon,
			Value:    64,
		},
		&cli.IntFlag{
			Name:     ReadLimitFlag,
			Usage:    "Maximum size of an inbound message in bytes",
			Category: categoryCommon,
			Value:    32768,
		},
		&cli.StringFlag{
			Name:     MetricsFlag,
			Aliases:  []string{"m"},
			Usage:    "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9100",
			Category: categoryCommon,
			Value:    "",
		},
	}
}

const categoryServe = "serve"

// MaxConnectionsFlag is the name of the flag to limit concurrent connections.
const MaxConnectionsFlag = "max-connections"

// ModeFlag is the name of the flag to choose the server behaviour.
const ModeFlag = "mode"

// PrefixFlag is the name of the flag to prefix echoed messages.
const PrefixFlag = "prefix"

// GetServeFlags returns the CLI flags specific to serve mode.
func GetServeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:     MaxConnectionsFlag,
			Usage:    "Concurrent connections accepted; further upgrades get 503",
			Category: categoryServe,
			Value:    100,
		},
		&cli.StringFlag{
			Name:     ModeFlag,
			Usage:    "Server behaviour: echo or chat",
			Category: categoryServe,
			Value:    "echo",
		},
		&cli.StringFlag{
			Name:     PrefixFlag,
			Usage:    "Prefix prepended to echoed messages",
			Category: categoryServe,
			Value:    "",
		},
	}
}

const categoryConnect = "connect"

// InsecureFlag is the name of the flag to skip certificate verification.
const InsecureFlag = "insecure"

// TranscriptFlag is the name of the flag to record messages to a file.
const TranscriptFlag = "transcript"

// GetConnectFlags returns the CLI flags specific to connect mode.
func GetConnectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     InsecureFlag,
			Aliases:  []string{"k"},
			Usage:    "Skip certificate verification for wss",
			Category: categoryConnect,
			Value:    false,
		},
		&cli.StringFlag{
			Name:     TranscriptFlag,
			Aliases:  []string{"l"},
			Usage:    "Append sent and received messages to this file",
			Category: categoryConnect,
			Value:    "",
		},
	}
}
