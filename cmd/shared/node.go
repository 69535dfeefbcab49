package shared

import (
	"fmt"
	"io"
	"os"

	"dominicbreuker/wscat/pkg/config"
	"dominicbreuker/wscat/pkg/log"

	"github.com/urfave/cli/v3"
)

// Settings is everything a subcommand needs to run a node.
type Settings struct {
	Node    *config.Node
	Metrics string
}

// ParseSettings combines defaults, the config file, WSCAT_* environment
// variables and flags, in increasing precedence, and validates the result.
// Validation errors are logged one per line.
func ParseSettings(cmd *cli.Command, stderr io.Writer) (*Settings, error) {
	if stderr == nil {
		stderr = os.Stderr
	}

	file, err := config.Load(cmd.String(ConfigFlag))
	if err != nil {
		return nil, err
	}

	proto, host, port, path, err := ParseTransport(cmd.Args().First())
	if err != nil {
		return nil, err
	}

	cfg := &config.Node{
		Protocol: proto,
		Host:     host,
		Port:     port,
		Path:     path,
		Verbose:  cmd.Bool(VerboseFlag),
	}
	file.Apply(cfg)

	if cmd.IsSet(TimeoutFlag) {
		cfg.Timeout = cmd.Duration(TimeoutFlag)
	}
	if cmd.IsSet(QueueSizeFlag) {
		cfg.QueueSize = int(cmd.Int(QueueSizeFlag))
	}
	if cmd.IsSet(ReadLimitFlag) {
		cfg.ReadLimit = cmd.Int(ReadLimitFlag)
	}
	if cmd.IsSet(MaxConnectionsFlag) {
		cfg.MaxConnections = int(cmd.Int(MaxConnectionsFlag))
	}
	cfg.Insecure = cmd.Bool(InsecureFlag)

	logFormat := file.LogFormat
	if cmd.IsSet(LogFormatFlag) {
		logFormat = cmd.String(LogFormatFlag)
	}
	switch logFormat {
	case "text":
		cfg.Logger = log.New(stderr, cfg.Verbose)
	case "json":
		cfg.Logger = log.NewJSON(stderr, cfg.Verbose)
	default:
		return nil, fmt.Errorf("%s: %q is not one of text, json", LogFormatFlag, logFormat)
	}

	if errors := cfg.Validate(); len(errors) > 0 {
		cfg.Logger.ErrorMsg("Argument validation errors:\n")
		for _, err := range errors {
			cfg.Logger.ErrorMsg(" - %s\n", err)
		}
		return nil, fmt.Errorf("exiting")
	}

	metricsAddr := file.Metrics
	if cmd.IsSet(MetricsFlag) {
		metricsAddr = cmd.String(MetricsFlag)
	}

	return &Settings{Node: cfg, Metrics: metricsAddr}, nil
}
