package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/dmitrijs2005/sundaram/internal/flagx"
)

const envPrefix = "SUNDARAM_CLI"

const (
	keyTransport           = "transport"
	keyHTTPAddr            = "http_addr"
	keyGRPCAddr            = "grpc_addr"
	keyDBPath              = "db_path"
	keyOnlineCheckInterval = "online_check_interval"
	keyRequestTimeout      = "request_timeout"
)

func parseFile(c *Config, args []string) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyTransport, c.Transport)
	v.SetDefault(keyHTTPAddr, c.HTTPAddr)
	v.SetDefault(keyGRPCAddr, c.GRPCAddr)
	v.SetDefault(keyDBPath, c.DBPath)
	v.SetDefault(keyOnlineCheckInterval, c.OnlineCheckInterval)
	v.SetDefault(keyRequestTimeout, c.RequestTimeout)

	if path := flagx.ConfigFileFlag(args); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	c.Transport = v.GetString(keyTransport)
	c.HTTPAddr = v.GetString(keyHTTPAddr)
	c.GRPCAddr = v.GetString(keyGRPCAddr)
	c.DBPath = v.GetString(keyDBPath)
	c.OnlineCheckInterval = v.GetDuration(keyOnlineCheckInterval)
	c.RequestTimeout = v.GetDuration(keyRequestTimeout)
	return nil
}
