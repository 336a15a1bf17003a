package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration with priority order:
// 1. Environment variables (ANBD_ prefix)
// 2. Configuration file (config.yaml)
// 3. Default values
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/anbd/")
	v.AddConfigPath("./configs/")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("ANBD")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyStructuredDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets scalar defaults. Structured tables (rule thresholds,
// probe categories, device inventory) default in applyStructuredDefaults
// because viper cannot express slice-of-struct defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")

	v.SetDefault("cache.nodes", []string{"localhost:6379"})
	v.SetDefault("cache.ttl", 0)
	v.SetDefault("cache.db", 0)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization"})

	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("websocket.ping_interval_seconds", 25)

	v.SetDefault("model.artifact_path", "model/seq_autoencoder.json")
	v.SetDefault("model.scaler_path", "model/scaler.json")
	v.SetDefault("model.threshold", 0.5)
	v.SetDefault("model.batch_size", 32)

	v.SetDefault("rca.type2.probe_timeout_ms", 10000)

	v.SetDefault("playbooks.dir", "playbooks")

	v.SetDefault("ingest.directory", "data/network_data")
	v.SetDefault("ingest.interval_seconds", 10)
	v.SetDefault("ingest.max_files", 100)

	v.SetDefault("executor.user", "anbd")
	v.SetDefault("executor.port", 22)
	v.SetDefault("executor.timeout_ms", 10000)
}

func applyStructuredDefaults(cfg *Config) {
	if cfg.RCA.Type1.Thresholds == (Type1Thresholds{}) {
		cfg.RCA.Type1.Thresholds = DefaultType1Thresholds()
	}
	if len(cfg.RCA.Type1.Playbooks) == 0 {
		cfg.RCA.Type1.Playbooks = DefaultType1Playbooks()
	}
	if len(cfg.RCA.Type2.Categories) == 0 {
		cfg.RCA.Type2.Categories = DefaultType2Categories()
	}
	if len(cfg.Playbooks.Type1) == 0 {
		cfg.Playbooks.Type1 = DefaultType1PlaybookFiles()
	}
	if len(cfg.Playbooks.Type2) == 0 {
		cfg.Playbooks.Type2 = DefaultType2PlaybookFiles()
	}
	if len(cfg.Network.Devices) == 0 {
		cfg.Network.Devices = DefaultNetworkDevices()
	}
	if len(cfg.Network.VLANs) == 0 {
		cfg.Network.VLANs = DefaultVLANs()
	}
}
