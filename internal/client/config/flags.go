package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/sundaram/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Only the flags listed in the package documentation are considered;
// everything else is filtered out with flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-t", "-a", "-g", "-d", "-i"})

	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Transport, "t", cfg.Transport, "transport (http|grpc)")
	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "base URL of the HTTP API")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "gRPC address and port")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local session database")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	return nil
}
