package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfenderov/pdfvault/internal/config"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "pdfvault",
	Short: "pdfvault: PDF ingestion and entity search",
	Long: `pdfvault extracts text and metadata from PDF files, detects emails,
phone numbers, URLs and dates, stores the results and answers queries over them.

Commands:
  serve   Start the HTTP API
  mcp     Start the MCP server on stdio
  ingest  Ingest local files or archived uploads
  watch   Ingest PDFs as they appear in directories
  list, search, get, delete, stats, export`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	// Start with defaults
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/pdfvault")
		viper.AddConfigPath(".")
	}

	// PDFVAULT_STORE_DRIVER -> store.driver
	viper.SetEnvPrefix("PDFVAULT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so bind each env var explicitly.
	for _, key := range []string{
		"store.driver",
		"store.dsn",
		"store.max_conns",
		"elasticsearch.index",
		"elasticsearch.username",
		"elasticsearch.password",
		"storage.enabled",
		"storage.endpoint",
		"storage.bucket",
		"storage.access_key_id",
		"storage.secret_access_key",
		"storage.use_ssl",
		"http.addr",
		"http.max_upload_bytes",
		"http.read_timeout",
		"http.shutdown_timeout",
		"pdf.validate",
		"ingest.workers",
		"watch.debounce",
		"watch.initial_scan",
		"mcp.name",
		"mcp.version",
	} {
		viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	// Unmarshal into struct (merges config file with defaults)
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// List values arrive as comma-separated strings from env
	if addrs := os.Getenv("PDFVAULT_ELASTICSEARCH_ADDRESSES"); addrs != "" {
		cfg.Elasticsearch.Addresses = strings.Split(addrs, ",")
	}
	if dirs := os.Getenv("PDFVAULT_WATCH_DIRS"); dirs != "" {
		cfg.Watch.Dirs = strings.Split(dirs, ",")
	}
}
