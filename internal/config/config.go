package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultPort         = 8080
	DefaultHost         = "127.0.0.1"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
	DefaultDatabasePath = "autoland.db"
	DefaultStorageDir   = "reports"
	DefaultMaxFileSize  = 25 * 1024 * 1024 // 25MB per report PDF

	// Compliance defaults
	DefaultCycleDays       = 30
	DefaultDueSoonDays     = 7
	DefaultGmailQuery      = "has:attachment filename:pdf subject:AUTOLAND"
	DefaultGmailPollPeriod = 5 * time.Minute

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the autoland monitoring service
type Config struct {
	// Server configuration
	Host string
	Port int

	// Storage configuration
	DatabasePath string
	StorageDir   string // archived report PDFs, YYYY/MM/DD/name.pdf

	// Parsing configuration
	MaxFileSize int64 // Maximum PDF file size in bytes

	// Compliance configuration
	CycleDays   int // days between required autolands per aircraft
	DueSoonDays int // days_remaining threshold for DUE_SOON status

	// Gmail ingestion configuration (disabled unless credentials are set)
	GmailCredentials string
	GmailToken       string
	GmailQuery       string
	GmailPollPeriod  time.Duration

	// Application configuration
	Version   string
	LogLevel  string
	LogFormat string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		DatabasePath:    DefaultDatabasePath,
		StorageDir:      DefaultStorageDir,
		MaxFileSize:     DefaultMaxFileSize,
		CycleDays:       DefaultCycleDays,
		DueSoonDays:     DefaultDueSoonDays,
		GmailQuery:      DefaultGmailQuery,
		GmailPollPeriod: DefaultGmailPollPeriod,
		Version:         "1.0.0",
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.StorageDir != "" {
		if expandedPath, err := filepath.Abs(cfg.StorageDir); err == nil {
			cfg.StorageDir = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("AUTOLAND")
	viper.AutomaticEnv()

	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("db", cfg.DatabasePath)
	viper.SetDefault("storagedir", cfg.StorageDir)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("cycledays", cfg.CycleDays)
	viper.SetDefault("duesoondays", cfg.DueSoonDays)
	viper.SetDefault("gmailcredentials", cfg.GmailCredentials)
	viper.SetDefault("gmailtoken", cfg.GmailToken)
	viper.SetDefault("gmailquery", cfg.GmailQuery)
	viper.SetDefault("gmailpoll", cfg.GmailPollPeriod)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("logformat", cfg.LogFormat)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("host", cfg.Host, "Server host address")
	pflag.Int("port", cfg.Port, "Server port")
	pflag.String("db", cfg.DatabasePath, "Path to the SQLite database file")
	pflag.String("storagedir", cfg.StorageDir, "Directory for archived report PDFs")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Int("cycledays", cfg.CycleDays, "Days between required autolands per aircraft")
	pflag.Int("duesoondays", cfg.DueSoonDays, "Days-remaining threshold for DUE_SOON status")
	pflag.String("gmailcredentials", cfg.GmailCredentials, "Path to Gmail OAuth2 client credentials JSON")
	pflag.String("gmailtoken", cfg.GmailToken, "Path to stored Gmail OAuth2 token JSON")
	pflag.String("gmailquery", cfg.GmailQuery, "Gmail search query for report messages")
	pflag.Duration("gmailpoll", cfg.GmailPollPeriod, "Gmail poll interval")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("logformat", cfg.LogFormat, "Log format (console, json)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"host", "port", "db", "storagedir", "maxfilesize",
		"cycledays", "duesoondays",
		"gmailcredentials", "gmailtoken", "gmailquery", "gmailpoll",
		"loglevel", "logformat",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAutoland Monitoring - fleet autoland compliance tracking service\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                  # defaults, API only\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --db=/var/lib/autoland/autoland.db --port=8081\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --gmailcredentials=creds.json --gmailtoken=token.json  # with ingestion\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  AUTOLAND_HOST              Server host\n")
		fmt.Fprintf(os.Stderr, "  AUTOLAND_PORT              Server port\n")
		fmt.Fprintf(os.Stderr, "  AUTOLAND_DB                SQLite database path\n")
		fmt.Fprintf(os.Stderr, "  AUTOLAND_STORAGEDIR        PDF archive directory\n")
		fmt.Fprintf(os.Stderr, "  AUTOLAND_MAXFILESIZE       Maximum PDF size\n")
		fmt.Fprintf(os.Stderr, "  AUTOLAND_CYCLEDAYS         Autoland cycle length in days\n")
		fmt.Fprintf(os.Stderr, "  AUTOLAND_DUESOONDAYS       DUE_SOON threshold in days\n")
		fmt.Fprintf(os.Stderr, "  AUTOLAND_GMAILCREDENTIALS  Gmail credentials JSON path\n")
		fmt.Fprintf(os.Stderr, "  AUTOLAND_GMAILTOKEN        Gmail token JSON path\n")
		fmt.Fprintf(os.Stderr, "  AUTOLAND_GMAILQUERY        Gmail search query\n")
		fmt.Fprintf(os.Stderr, "  AUTOLAND_GMAILPOLL         Gmail poll interval\n")
		fmt.Fprintf(os.Stderr, "  AUTOLAND_LOGLEVEL          Log level\n")
		fmt.Fprintf(os.Stderr, "  AUTOLAND_LOGFORMAT         Log format\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.DatabasePath = viper.GetString("db")
	cfg.StorageDir = viper.GetString("storagedir")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.CycleDays = viper.GetInt("cycledays")
	cfg.DueSoonDays = viper.GetInt("duesoondays")
	cfg.GmailCredentials = viper.GetString("gmailcredentials")
	cfg.GmailToken = viper.GetString("gmailtoken")
	cfg.GmailQuery = viper.GetString("gmailquery")
	cfg.GmailPollPeriod = viper.GetDuration("gmailpoll")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.LogFormat = viper.GetString("logformat")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	if c.DatabasePath == "" {
		return errors.New("database path cannot be empty")
	}

	if c.StorageDir == "" {
		return errors.New("storage directory cannot be empty")
	}

	// Check if storage directory exists, create if it doesn't
	if _, err := os.Stat(c.StorageDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.StorageDir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create storage directory %s: %w", c.StorageDir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access storage directory %s: %w", c.StorageDir, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.CycleDays <= 0 {
		return errors.New("cycle days must be positive")
	}

	if c.DueSoonDays < 0 || c.DueSoonDays > c.CycleDays {
		return fmt.Errorf("due-soon threshold must be between 0 and %d days", c.CycleDays)
	}

	if c.GmailIngestEnabled() && c.GmailPollPeriod < time.Second {
		return errors.New("gmail poll interval must be at least one second")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s (must be console or json)", c.LogFormat)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// GmailIngestEnabled reports whether the Gmail ingestion loop should run
func (c *Config) GmailIngestEnabled() bool {
	return c.GmailCredentials != "" && c.GmailToken != ""
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Host: %s, Port: %d, DatabasePath: %s, StorageDir: %s, CycleDays: %d, DueSoonDays: %d, LogLevel: %s}",
		c.Host, c.Port, c.DatabasePath, c.StorageDir, c.CycleDays, c.DueSoonDays, c.LogLevel)
}
