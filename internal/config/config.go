package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// FileName is the project configuration file, looked up in the project root.
const FileName = "wb.json"

// Config holds the project build and dev-server settings. Values come
// from wb.json with environment variables taking precedence.
type Config struct {
	Title       string `json:"title"`
	SourceDir   string `json:"source_dir"`
	OutDir      string `json:"out_dir"`
	ListenAddr  string `json:"listen_addr"`
	MetricsPort int    `json:"metrics_port"`
	CachePath   string `json:"cache_path"`

	// S3 configuration for deploys and the remote cache tier
	S3Endpoint  string `json:"s3_endpoint"`
	S3Bucket    string `json:"s3_bucket"`
	S3Prefix    string `json:"s3_prefix"`
	S3AccessKey string `json:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key"`
	S3Region    string `json:"s3_region"`
}

// Default returns the default project configuration.
func Default() *Config {
	return &Config{
		Title:      "wb app",
		SourceDir:  "src",
		OutDir:     "dist",
		ListenAddr: ":8080",
		CachePath:  ".wb/cache.db",
		S3Region:   "us-east-1",
	}
}

// Load loads the configuration for the project rooted at dir.
// Environment variables override the config file.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)

	var cfg *Config
	if os.IsNotExist(err) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	} else {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Environment variables override config file
	if v := os.Getenv("WB_SOURCE_DIR"); v != "" {
		cfg.SourceDir = v
	}
	if v := os.Getenv("WB_OUT_DIR"); v != "" {
		cfg.OutDir = v
	}
	if v := os.Getenv("WB_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("WB_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MetricsPort = port
		}
	}
	if v := os.Getenv("WB_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("WB_S3_ENDPOINT"); v != "" {
		cfg.S3Endpoint = v
	}
	if v := os.Getenv("WB_S3_BUCKET"); v != "" {
		cfg.S3Bucket = v
	}
	if v := os.Getenv("WB_S3_PREFIX"); v != "" {
		cfg.S3Prefix = v
	}
	if v := os.Getenv("WB_S3_ACCESS_KEY"); v != "" {
		cfg.S3AccessKey = v
	}
	if v := os.Getenv("WB_S3_SECRET_KEY"); v != "" {
		cfg.S3SecretKey = v
	}
	if v := os.Getenv("WB_S3_REGION"); v != "" {
		cfg.S3Region = v
	}

	return cfg, nil
}

// Save writes the configuration into the project rooted at dir.
func Save(dir string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileName), data, 0644)
}
