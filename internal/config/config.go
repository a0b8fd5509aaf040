// Package config loads the store's configuration: a YAML file overlaid
// with environment variables, with an optional .env bootstrap file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/palisade-db/palisade/internal/logging"
)

// Storage holds the storage-subsystem settings.
type Storage struct {
	KVStorePath                           string `yaml:"kv_store_path" env:"PALISADE_STORAGE_KV_STORE_PATH"`
	GarbageCollectorPeriodicIntervalMs    int    `yaml:"garbage_collector_periodic_interval_ms" env:"PALISADE_STORAGE_GC_INTERVAL_MS"`
	MaxContainerNameSizeBytes             int    `yaml:"max_container_name_size_bytes" env:"PALISADE_STORAGE_MAX_CONTAINER_NAME_BYTES"`
	MaxObjectIDSizeBytes                  int    `yaml:"max_object_id_size_bytes" env:"PALISADE_STORAGE_MAX_OBJECT_ID_BYTES"`
	MaxObjectDataSizeBytes                int    `yaml:"max_object_data_size_bytes" env:"PALISADE_STORAGE_MAX_OBJECT_DATA_BYTES"`
	MaxNumberContainers                   int64  `yaml:"max_number_containers" env:"PALISADE_STORAGE_MAX_NUMBER_CONTAINERS"`
	NumberWriteIOThreads                  int    `yaml:"number_write_io_threads" env:"PALISADE_STORAGE_NUMBER_WRITE_IO_THREADS"`
	NumberReadIOThreads                   int    `yaml:"number_read_io_threads" env:"PALISADE_STORAGE_NUMBER_READ_IO_THREADS"`
	StorageEngineBlockCacheSizeMiB        int    `yaml:"storage_engine_block_cache_size_mib" env:"PALISADE_STORAGE_BLOCK_CACHE_SIZE_MIB"`
	ContainerIndexNumberBuckets           int    `yaml:"container_index_number_buckets" env:"PALISADE_STORAGE_INDEX_NUMBER_BUCKETS"`
	NumberFrontlineCacheShards            int    `yaml:"number_frontline_cache_shards" env:"PALISADE_STORAGE_CACHE_NUMBER_SHARDS"`
	MaxFrontlineCacheShardSizeMiB         int    `yaml:"max_frontline_cache_shard_size_mib" env:"PALISADE_STORAGE_CACHE_SHARD_SIZE_MIB"`
	MaxFrontlineCacheShardObjectSizeBytes int    `yaml:"max_frontline_cache_shard_object_size_bytes" env:"PALISADE_STORAGE_CACHE_OBJECT_LIMIT_BYTES"`
}

// Server holds the HTTP server settings.
type Server struct {
	PortNumber              int    `yaml:"port_number" env:"PALISADE_SERVER_PORT"`
	ServerLogsDirectoryPath string `yaml:"server_logs_directory_path" env:"PALISADE_SERVER_LOGS_DIRECTORY_PATH"`
	ServerNumberThreads     int    `yaml:"server_number_threads" env:"PALISADE_SERVER_NUMBER_THREADS"`
	ServerListenerIPAddress string `yaml:"server_listener_ip_address" env:"PALISADE_SERVER_LISTENER_IP_ADDRESS"`
}

// Config is the full store configuration.
type Config struct {
	Logger  logging.Config `yaml:"logger"`
	Storage Storage        `yaml:"storage"`
	Server  Server         `yaml:"server"`
}

// Default returns a Config with conservative, ready-to-run defaults, used
// when no config file is present (e.g. the demo binary, tests).
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Logger: logging.Config{
			ComponentName:                 "palisaded",
			LoggingSessionDirectoryPrefix: "session",
			LogFilePrefix:                 "palisade",
		},
		Storage: Storage{
			KVStorePath:                           home + "/.palisade/store.db",
			GarbageCollectorPeriodicIntervalMs:    30_000,
			MaxContainerNameSizeBytes:             256,
			MaxObjectIDSizeBytes:                  256,
			MaxObjectDataSizeBytes:                16 << 20,
			MaxNumberContainers:                   10_000,
			NumberWriteIOThreads:                  1,
			NumberReadIOThreads:                   8,
			StorageEngineBlockCacheSizeMiB:        64,
			ContainerIndexNumberBuckets:           8,
			NumberFrontlineCacheShards:            8,
			MaxFrontlineCacheShardSizeMiB:         32,
			MaxFrontlineCacheShardObjectSizeBytes: 1 << 20,
		},
		Server: Server{
			PortNumber:              8080,
			ServerNumberThreads:     8,
			ServerListenerIPAddress: "0.0.0.0",
		},
	}
}

// DefaultConfigFilePath is consulted when neither an explicit path nor
// $CONFIG_FILE names a config file. Missing is not an error.
const DefaultConfigFilePath = "configs/config.yaml"

// Load layers configuration: a .env bootstrap first, then a YAML file
// over Default(), then environment variable overrides. The file is
// configFilePath if non-empty, else $CONFIG_FILE, else
// DefaultConfigFilePath (best-effort).
func Load(configFilePath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := configFilePath
	if path == "" {
		path = strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, err
		}
	} else {
		_ = loadFromFile(DefaultConfigFilePath, &cfg)
	}

	if err := envdecode.Decode(&cfg); err != nil {
		// envdecode errors when no tagged field is present in the
		// environment; that just means there are no overrides.
		if !strings.Contains(err.Error(), "none of the target fields were set") {
			return nil, fmt.Errorf("config: decode environment: %w", err)
		}
	}

	return &cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}
	return nil
}
