package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/sundaram/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-g string   gRPC bind address, empty disables gRPC
//	-s string   storage backend: file | postgres
//	-f string   data directory for the local blob store
//	-b string   blob backend: local | s3
//	-d string   PostgreSQL DSN
//	-h string   history backend: store | redis
//	-r string   Redis address
//	-m int      maximum sieve limit
//	-l string   log level
//
// Unknown flags are filtered out first with flagx.FilterArgs, so -c / -config
// and flags of other layers do not collide.
func parseFlags(c *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-s", "-f", "-b", "-d", "-h", "-r", "-m", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.EndpointAddrHTTP, "a", c.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&c.EndpointAddrGRPC, "g", c.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&c.Storage, "s", c.Storage, "storage backend (file|postgres)")
	fs.StringVar(&c.DataDir, "f", c.DataDir, "data directory")
	fs.StringVar(&c.BlobBackend, "b", c.BlobBackend, "blob backend (local|s3)")
	fs.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "database DSN")
	fs.StringVar(&c.HistoryBackend, "h", c.HistoryBackend, "history backend (store|redis)")
	fs.StringVar(&c.RedisAddr, "r", c.RedisAddr, "redis address")
	fs.IntVar(&c.MaxLimit, "m", c.MaxLimit, "maximum sieve limit")
	fs.StringVar(&c.LogLevel, "l", c.LogLevel, "log level")

	return fs.Parse(args)
}
