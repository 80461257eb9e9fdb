package config

import (
	"fmt"
	"time"
)

const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Config holds runtime settings for the Sundaram CLI.
//
// Transport selects which server endpoint is used: HTTPAddr is a base URL,
// GRPCAddr a host:port. DBPath is the SQLite file that keeps the session
// between runs.
type Config struct {
	Transport           string
	HTTPAddr            string
	GRPCAddr            string
	DBPath              string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Transport = TransportHTTP
	c.HTTPAddr = "http://127.0.0.1:8000"
	c.GRPCAddr = "127.0.0.1:50051"
	c.DBPath = "sundaram.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 30 * time.Second
}

func (c *Config) Validate() error {
	switch c.Transport {
	case TransportHTTP, TransportGRPC:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays the config
// file and environment and finally the flags in args. Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
