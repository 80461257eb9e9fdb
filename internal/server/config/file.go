package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/dmitrijs2005/sundaram/internal/flagx"
)

const envPrefix = "SUNDARAM"

// keys as they appear in the config file; the environment variable is the
// upper-cased key with the SUNDARAM_ prefix, e.g. SUNDARAM_HTTP_ADDR.
const (
	keyHTTPAddr        = "http_addr"
	keyGRPCAddr        = "grpc_addr"
	keyStorage         = "storage"
	keyDataDir         = "data_dir"
	keyBlobBackend     = "blob_backend"
	keyDatabaseDSN     = "database_dsn"
	keyS3RootUser      = "s3_root_user"
	keyS3RootPassword  = "s3_root_password"
	keyS3Bucket        = "s3_bucket"
	keyS3Region        = "s3_region"
	keyS3BaseEndpoint  = "s3_base_endpoint"
	keyHistoryBackend  = "history_backend"
	keyRedisAddr       = "redis_addr"
	keyRedisPassword   = "redis_password"
	keyRedisDB         = "redis_db"
	keyMaxLimit        = "max_limit"
	keyBodyLimit       = "body_limit"
	keyMetricsPath     = "metrics_path"
	keyCORSOrigins     = "cors_origins"
	keyLogLevel        = "log_level"
	keyShutdownTimeout = "shutdown_timeout"
)

// newViper returns a viper instance seeded with the values already in c so
// that environment variables override them even without a file.
func newViper(c *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyHTTPAddr, c.EndpointAddrHTTP)
	v.SetDefault(keyGRPCAddr, c.EndpointAddrGRPC)
	v.SetDefault(keyStorage, c.Storage)
	v.SetDefault(keyDataDir, c.DataDir)
	v.SetDefault(keyBlobBackend, c.BlobBackend)
	v.SetDefault(keyDatabaseDSN, c.DatabaseDSN)
	v.SetDefault(keyS3RootUser, c.S3RootUser)
	v.SetDefault(keyS3RootPassword, c.S3RootPassword)
	v.SetDefault(keyS3Bucket, c.S3Bucket)
	v.SetDefault(keyS3Region, c.S3Region)
	v.SetDefault(keyS3BaseEndpoint, c.S3BaseEndpoint)
	v.SetDefault(keyHistoryBackend, c.HistoryBackend)
	v.SetDefault(keyRedisAddr, c.RedisAddr)
	v.SetDefault(keyRedisPassword, c.RedisPassword)
	v.SetDefault(keyRedisDB, c.RedisDB)
	v.SetDefault(keyMaxLimit, c.MaxLimit)
	v.SetDefault(keyBodyLimit, c.BodyLimit)
	v.SetDefault(keyMetricsPath, c.MetricsPath)
	v.SetDefault(keyCORSOrigins, c.CORSOrigins)
	v.SetDefault(keyLogLevel, c.LogLevel)
	v.SetDefault(keyShutdownTimeout, c.ShutdownTimeout)

	return v
}

// parseFile overlays values from the config file named by -c / -config
// (JSON, YAML or TOML by extension) and from SUNDARAM_* variables.
func parseFile(c *Config, args []string) error {
	v := newViper(c)

	if path := flagx.ConfigFileFlag(args); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	c.EndpointAddrHTTP = v.GetString(keyHTTPAddr)
	c.EndpointAddrGRPC = v.GetString(keyGRPCAddr)
	c.Storage = v.GetString(keyStorage)
	c.DataDir = v.GetString(keyDataDir)
	c.BlobBackend = v.GetString(keyBlobBackend)
	c.DatabaseDSN = v.GetString(keyDatabaseDSN)
	c.S3RootUser = v.GetString(keyS3RootUser)
	c.S3RootPassword = v.GetString(keyS3RootPassword)
	c.S3Bucket = v.GetString(keyS3Bucket)
	c.S3Region = v.GetString(keyS3Region)
	c.S3BaseEndpoint = v.GetString(keyS3BaseEndpoint)
	c.HistoryBackend = v.GetString(keyHistoryBackend)
	c.RedisAddr = v.GetString(keyRedisAddr)
	c.RedisPassword = v.GetString(keyRedisPassword)
	c.RedisDB = v.GetInt(keyRedisDB)
	c.MaxLimit = v.GetInt(keyMaxLimit)
	c.BodyLimit = v.GetInt64(keyBodyLimit)
	c.MetricsPath = v.GetString(keyMetricsPath)
	c.CORSOrigins = v.GetStringSlice(keyCORSOrigins)
	c.LogLevel = v.GetString(keyLogLevel)
	c.ShutdownTimeout = v.GetDuration(keyShutdownTimeout)

	return nil
}
