package config

import (
	"errors"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the root configuration structure for the application
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	GC          GCConfig          `mapstructure:"gc"`
	Log         LogConfig         `mapstructure:"log"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Redis       RedisConfig       `mapstructure:"redis"`
}

// GCConfig defines the parameters for the background active expiration
type GCConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Interval        time.Duration `mapstructure:"interval"`          // how often to run the background check
	SamplesPerCheck int           `mapstructure:"samples_per_check"` // how many keys to check per shard and loop
	MatchThreshold  float64       `mapstructure:"match_threshold"`   // 0.0-1.0. if expired/scanned > threshold, repeat immediately
}

// ServerConfig holds the network settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns host:port
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// StorageConfig defines the internal structure of the storage engine
type StorageConfig struct {
	Shards    uint `mapstructure:"shards"`
	Databases int  `mapstructure:"databases"`
}

// LogConfig defines logging verbosity and output style
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// PersistenceConfig defines settings of AOF and RDB methods
type PersistenceConfig struct {
	AOF AOFConfig `mapstructure:"aof"`
	RDB RDBConfig `mapstructure:"rdb"`
}

// AOFConfig defines settings of AOF method
type AOFConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Filename string `mapstructure:"filename"`
	Fsync    string `mapstructure:"fsync"` // always, everysec, no
}

// RDBConfig defines settings of RDB method
type RDBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Filename string `mapstructure:"filename"`
	Schedule string `mapstructure:"schedule"` // cron spec, e.g. "@every 5m"; empty disables scheduled saves
}

// RedisConfig describes the server a network executor talks to
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	DB           int           `mapstructure:"db"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	Protocol     int           `mapstructure:"protocol"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	LegacyTTL    bool          `mapstructure:"legacy_ttl"` // the server answers TTL -1 for missing keys
}

// Load reads the configuration from a file and overrides it with environment variables
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(".")

	v.SetEnvPrefix("KEYSPACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration Load produces without a file or environment
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err) // defaults always decode
	}
	return &cfg
}

var (
	ErrNoShards    = errors.New("storage.shards must be positive")
	ErrNoDatabases = errors.New("storage.databases must be positive")
	ErrThreshold   = errors.New("gc.match_threshold must be within [0, 1]")
	ErrFsync       = errors.New("persistence.aof.fsync must be one of always, everysec, no")
)

func (c *Config) validate() error {
	if c.Storage.Shards == 0 {
		return ErrNoShards
	}
	if c.Storage.Databases < 1 {
		return ErrNoDatabases
	}
	if c.GC.MatchThreshold < 0 || c.GC.MatchThreshold > 1 {
		return ErrThreshold
	}
	switch c.Persistence.AOF.Fsync {
	case "always", "everysec", "no":
	default:
		return ErrFsync
	}
	return nil
}

// setDefaults populates viper with fallback values if they are not provided via file or ENV
func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "6380")
	v.SetDefault("server.shutdown_timeout", "5s")

	// Storage
	v.SetDefault("storage.shards", 32)
	v.SetDefault("storage.databases", 16)

	// GC
	v.SetDefault("gc.enabled", true)
	v.SetDefault("gc.interval", "100ms")
	v.SetDefault("gc.samples_per_check", 20)
	v.SetDefault("gc.match_threshold", 0.25)

	// Logger
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Persistence
	v.SetDefault("persistence.aof.enabled", false)
	v.SetDefault("persistence.aof.filename", "appendonly.aof")
	v.SetDefault("persistence.aof.fsync", "everysec")

	v.SetDefault("persistence.rdb.enabled", true)
	v.SetDefault("persistence.rdb.filename", "dump.rdb")
	v.SetDefault("persistence.rdb.schedule", "@every 5m")

	// Network executor
	v.SetDefault("redis.addr", "127.0.0.1:6380")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.protocol", 2)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.legacy_ttl", false)
}
