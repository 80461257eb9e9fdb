// Package config loads runtime configuration for the Sundaram CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config (JSON, YAML or TOML),
//     plus SUNDARAM_CLI_* environment variables.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-t string   transport: http | grpc
//	-a string   base URL of the HTTP API
//	-g string   address:port of the gRPC endpoint
//	-d string   path of the local session database
//	-i int      online status check interval (seconds)
//
// Example file:
//
//	{
//	  "transport": "grpc",
//	  "grpc_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s"
//	}
package config
