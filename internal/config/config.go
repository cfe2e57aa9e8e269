package config

import "time"

// Config holds all application configuration.
type Config struct {
	Store         Store         `mapstructure:"store"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	Storage       Storage       `mapstructure:"storage"`
	HTTP          HTTP          `mapstructure:"http"`
	PDF           PDF           `mapstructure:"pdf"`
	Ingest        Ingest        `mapstructure:"ingest"`
	Watch         Watch         `mapstructure:"watch"`
	MCP           MCP           `mapstructure:"mcp"`
}

// Store selects and configures the record store.
type Store struct {
	Driver   string `mapstructure:"driver"` // sqlite, postgres or elasticsearch
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// Elasticsearch holds ES connection configuration.
type Elasticsearch struct {
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// Storage holds S3/MinIO configuration for the upload archive.
type Storage struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// HTTP holds the upload/query API configuration.
type HTTP struct {
	Addr            string        `mapstructure:"addr"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// PDF holds extraction settings.
type PDF struct {
	Validate bool `mapstructure:"validate"`
}

// Ingest holds batch ingestion settings.
type Ingest struct {
	Workers int `mapstructure:"workers"`
}

// Watch holds directory watcher settings.
type Watch struct {
	Dirs        []string      `mapstructure:"dirs"`
	Debounce    time.Duration `mapstructure:"debounce"`
	InitialScan bool          `mapstructure:"initial_scan"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Store: Store{
			Driver:   "sqlite",
			DSN:      "pdfvault.db",
			MaxConns: 10,
		},
		Elasticsearch: Elasticsearch{
			Addresses: []string{"http://localhost:9200"},
			Index:     "pdfvault-documents",
		},
		Storage: Storage{
			Enabled:         false, // Disabled by default, requires MinIO
			Endpoint:        "localhost:9000",
			Bucket:          "pdfvault",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			UseSSL:          false,
		},
		HTTP: HTTP{
			Addr:            ":8000",
			MaxUploadBytes:  50 << 20,
			ReadTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		PDF: PDF{
			Validate: true,
		},
		Ingest: Ingest{
			Workers: 4,
		},
		Watch: Watch{
			Debounce:    500 * time.Millisecond,
			InitialScan: true,
		},
		MCP: MCP{
			Name:    "pdfvault",
			Version: "1.0.0",
		},
	}
}
