package runtcp

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/asecurityteam/logevent/v2"
	"github.com/asecurityteam/settings/v2"
	"github.com/rs/xstats"
	"github.com/rs/xstats/statsd"
)

// ListenerConfig contains the bind settings for the TCP listener.
type ListenerConfig struct {
	Host string `description:"The host interface on which the listener binds."`
	Port int    `description:"The port on which the listener binds. Zero selects any available port."`
}

// Name of the configuration group.
func (*ListenerConfig) Name() string {
	return "listener"
}

// LoggerConfig contains the settings for the runtime logger.
type LoggerConfig struct {
	Output string `description:"Destination stream of the logs. One of STDOUT, NULL."`
}

// Name of the configuration group.
func (*LoggerConfig) Name() string {
	return "logger"
}

// StatsConfig contains the settings for the runtime stat client.
type StatsConfig struct {
	Output        string        `description:"Destination of the stats. One of STATSD, NULL."`
	Addr          string        `description:"Listener address of the statsd collector."`
	FlushInterval time.Duration `description:"Interval between pushes to the statsd collector."`
}

// Name of the configuration group.
func (*StatsConfig) Name() string {
	return "stats"
}

// Config contains all settings for the TCP server runtime.
type Config struct {
	Listener *ListenerConfig
	Logger   *LoggerConfig
	Stats    *StatsConfig
	Handler  string `description:"Name of the connection handler to serve."`
}

// Name of the configuration root.
func (*Config) Name() string {
	return "server"
}

// Component implements the settings.Component convention and produces
// a *Server from a settings source.
type Component struct {
	// Fetcher resolves the configured handler name. There is no
	// default for this value.
	Fetcher Fetcher
	// Logger overrides the logger that would be built from the
	// configuration when set.
	Logger Logger
	// Stat overrides the stat client that would be built from the
	// configuration when set.
	Stat Stat
}

// NewComponent populates a Component with defaults.
func NewComponent() *Component {
	return &Component{}
}

// Settings generates a config populated with defaults.
func (*Component) Settings() *Config {
	return &Config{
		Listener: &ListenerConfig{Host: "0.0.0.0", Port: 7777},
		Logger:   &LoggerConfig{Output: "STDOUT"},
		Stats:    &StatsConfig{Output: "NULL", Addr: "localhost:8125", FlushInterval: 10 * time.Second},
		Handler:  "echo",
	}
}

// New resolves the configured handler, binds the listener, and
// assembles the server. Binding happens here so that configuration
// errors and occupied ports surface before the caller starts the
// accept loop.
func (c *Component) New(ctx context.Context, conf *Config) (*Server, error) {
	if c.Fetcher == nil {
		return nil, fmt.Errorf("no handler fetcher was configured")
	}
	handler, err := c.Fetcher.Fetch(ctx, conf.Handler)
	if err != nil {
		return nil, err
	}
	logger := c.Logger
	if logger == nil {
		logger, err = loggerFromConfig(conf.Logger)
		if err != nil {
			return nil, err
		}
	}
	stat := c.Stat
	if stat == nil {
		stat, err = statFromConfig(conf.Stats)
		if err != nil {
			return nil, err
		}
	}
	l, err := Listen(conf.Listener.Host, conf.Listener.Port)
	if err != nil {
		return nil, err
	}
	return NewServer(l, handler, &ServerConfig{Logger: logger, Stat: stat}), nil
}

func loggerFromConfig(conf *LoggerConfig) (Logger, error) {
	switch strings.ToUpper(conf.Output) {
	case "", "STDOUT":
		return logevent.New(logevent.Config{Output: os.Stdout}), nil
	case "NULL":
		return nopLogger{}, nil
	default:
		return nil, fmt.Errorf("unknown logger output %s", conf.Output)
	}
}

func statFromConfig(conf *StatsConfig) (Stat, error) {
	switch strings.ToUpper(conf.Output) {
	case "", "NULL":
		return nopStat{}, nil
	case "STATSD":
		conn, err := net.Dial("udp", conf.Addr)
		if err != nil {
			return nil, err
		}
		return xstats.New(statsd.New(conn, conf.FlushInterval)), nil
	default:
		return nil, fmt.Errorf("unknown stats output %s", conf.Output)
	}
}

// New generates a server bound to the given handler mapping using the
// environment driven configuration.
func New(ctx context.Context, s settings.Source, f Fetcher) (*Server, error) {
	cmp := &Component{Fetcher: f}
	srv := new(Server)
	err := settings.NewComponent(
		ctx,
		&settings.PrefixSource{Source: s, Prefix: []string{"runtcp"}},
		cmp,
		srv,
	)
	return srv, err
}
