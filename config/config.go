package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "STROGHOLOD_CONFIG_FILE"
	envPrefix         = "STROGHOLOD"

	submitCalls = 2
)

type catalog struct {
	BaseURL         string        `mapstructure:"base_url"`
	UploadPath      string        `mapstructure:"upload_path"`
	Timeout         time.Duration `mapstructure:"timeout"`
	FetchAttempts   int           `mapstructure:"fetch_attempts"`
	FetchRetryDelay time.Duration `mapstructure:"fetch_retry_delay"`
	CAFile          string        `mapstructure:"ca_file"`
}

type photo struct {
	BaseDir string `mapstructure:"base_dir"`
	MaxSize int64  `mapstructure:"max_size"`
}

type topics struct {
	PriceChanges string `mapstructure:"price_changes"`
}

type broker struct {
	SeedBrokers        []string `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls"`
	Topics             topics   `mapstructure:"topics"`
	Partitions         int32    `mapstructure:"partitions"`
	ReplicationFactor  int16    `mapstructure:"replication_factor"`
}

type Config struct {
	LogLevel           string        `mapstructure:"log_level"`
	HTTPServerAddr     string        `mapstructure:"http_server_addr"`
	HTTPHandlerTimeout time.Duration `mapstructure:"http_handler_timeout"`
	SQLDB              string        `mapstructure:"sql_db"`
	Catalog            catalog       `mapstructure:"catalog"`
	Photo              photo         `mapstructure:"photo"`
	Broker             broker        `mapstructure:"broker"`
}

// Level parses LogLevel, falling back to info.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c Config) StorageEnabled() bool {
	return c.SQLDB != ""
}

func (c Config) BrokerEnabled() bool {
	return len(c.Broker.SeedBrokers) != 0
}

func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads the YAML file at path. Environment variables
// prefixed with STROGHOLOD_ override file values.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.Catalog.BaseURL == "" {
		return Config{}, fmt.Errorf("catalog.base_url is required")
	}
	if cfg.BrokerEnabled() && cfg.Broker.Topics.PriceChanges == "" {
		return Config{}, fmt.Errorf("broker.topics.price_changes is required")
	}
	// A submission makes up to two sequential catalog calls in one request.
	if cfg.HTTPHandlerTimeout <= submitCalls*cfg.Catalog.Timeout {
		return Config{}, fmt.Errorf(
			"http_handler_timeout (%s) must exceed %d x catalog.timeout (%s)",
			cfg.HTTPHandlerTimeout, submitCalls, cfg.Catalog.Timeout,
		)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", "127.0.0.1:8000")
	v.SetDefault("http_handler_timeout", 2*time.Minute)
	v.SetDefault("sql_db", "")
	v.SetDefault("catalog.base_url", "https://formanagers.strogholod.ru/api/")
	v.SetDefault("catalog.upload_path", "upload_photo.php")
	v.SetDefault("catalog.timeout", 30*time.Second)
	v.SetDefault("catalog.fetch_attempts", 1)
	v.SetDefault("catalog.fetch_retry_delay", 500*time.Millisecond)
	v.SetDefault("catalog.ca_file", "")
	v.SetDefault("photo.base_dir", "")
	v.SetDefault("photo.max_size", 0)
	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.topics.price_changes", "strogholod-price-changes")
	v.SetDefault("broker.partitions", 3)
	v.SetDefault("broker.replication_factor", 3)
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	template := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	HTTPHandlerTimeout=%s
	SQLDB=%q

	Catalog:
	BaseURL=%q
	UploadPath=%q
	Timeout=%s
	FetchAttempts=%d
	FetchRetryDelay=%s
	CAFile=%q

	Photo:
	BaseDir=%q
	MaxSize=%d

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	Partitions=%d
	ReplicationFactor=%d
	Topics:
		PriceChanges=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(template, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.HTTPHandlerTimeout,
		redactDSN(c.SQLDB),
		c.Catalog.BaseURL,
		c.Catalog.UploadPath,
		c.Catalog.Timeout,
		c.Catalog.FetchAttempts,
		c.Catalog.FetchRetryDelay,
		c.Catalog.CAFile,
		c.Photo.BaseDir,
		c.Photo.MaxSize,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.Partitions,
		c.Broker.ReplicationFactor,
		c.Broker.Topics.PriceChanges,
	)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	scheme := strings.Index(dsn, "://")
	if scheme < 0 || scheme > at {
		return "***" + dsn[at:]
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}
