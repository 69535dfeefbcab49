package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// File holds the settings that may come from a YAML file or WSCAT_*
// environment variables. Command line flags take precedence over both.
type File struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	QueueSize      int           `mapstructure:"queue_size"`
	MaxConnections int           `mapstructure:"max_connections"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	Verbose        bool          `mapstructure:"verbose"`
	LogFormat      string        `mapstructure:"log_format"`
	Metrics        string        `mapstructure:"metrics"`
}

// Load reads path, or only defaults and environment when path is empty.
func Load(path string) (*File, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("wscat")
	v.AutomaticEnv()

	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("queue_size", DefaultQueueSize)
	v.SetDefault("max_connections", DefaultMaxConnections)
	v.SetDefault("read_limit", DefaultReadLimit)
	v.SetDefault("verbose", false)
	v.SetDefault("log_format", "text")
	v.SetDefault("metrics", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if f.LogFormat != "text" && f.LogFormat != "json" {
		return nil, fmt.Errorf("log_format: %q is not one of text, json", f.LogFormat)
	}
	return &f, nil
}

// Apply copies the file settings onto n.
func (f *File) Apply(n *Node) {
	n.Timeout = f.Timeout
	n.QueueSize = f.QueueSize
	n.MaxConnections = f.MaxConnections
	n.ReadLimit = f.ReadLimit
	n.Verbose = n.Verbose || f.Verbose
}
