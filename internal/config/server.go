package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Server holds the settings of innometrics-server.
type Server struct {
	// ListenAddress is the HTTP API address.
	ListenAddress string `yaml:"listen_addr"`
	// HealthAddress is the gRPC health service address.
	HealthAddress string `yaml:"health_addr"`
	// SecretKey signs session tokens. INNOMETRICS_SECRET_KEY overrides it.
	SecretKey string `yaml:"secret_key"`
	// Database is the SQLite file, relative to the installation root.
	Database string `yaml:"database"`
	// AllowedOrigins are the CORS origins allowed to send credentials.
	AllowedOrigins []string `yaml:"allowed_origins"`
	// TokenTTL is how long an issued token stays valid.
	TokenTTL time.Duration `yaml:"token_ttl"`
	// LogFile receives a copy of every log entry, relative to the installation root.
	LogFile string `yaml:"log_file"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// DocumentationFile is where the API description is written at startup.
	DocumentationFile string `yaml:"documentation_file"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

const (
	// DefaultServerFilename is looked up in the installation root.
	DefaultServerFilename = "innometrics-settings.yaml"

	// SecretKeyVariable overrides Server.SecretKey.
	SecretKeyVariable = "INNOMETRICS_SECRET_KEY"

	// DefaultTimeout bounds network calls such as the health probe.
	DefaultTimeout = 5 * time.Second

	// DefaultTokenTTL matches the lifetime of tokens issued by the original service.
	DefaultTokenTTL = 30 * 24 * time.Hour

	defaultListenAddress   = ":5000"
	defaultHealthAddress   = ":50051"
	defaultDatabase        = "innometrics.db"
	defaultLogFile         = "logs/innometrics.log"
	defaultDocumentation   = "documentation.yaml"
	defaultShutdownTimeout = 10 * time.Second
)

var (
	errSecretKeyRequired = errors.New("secret key must be provided")
	errBadOrigin         = errors.New("invalid allowed origin")
)

// LoadServer reads server settings from path, or from DefaultServerFilename under
// root when path is empty. A missing default file yields defaults. Relative
// paths are resolved against root.
func LoadServer(root, path string) (*Server, error) {
	var cfg Server

	if path == "" {
		path = filepath.Join(root, DefaultServerFilename)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}

	if path != "" {
		if err := readYAML(path, &cfg); err != nil {
			return nil, err
		}
	}

	if secret := os.Getenv(SecretKeyVariable); secret != "" {
		cfg.SecretKey = secret
	}

	if err := ValidateServer(&cfg); err != nil {
		return nil, err
	}

	cfg.Database = resolve(root, cfg.Database)
	cfg.LogFile = resolve(root, cfg.LogFile)
	cfg.DocumentationFile = resolve(root, cfg.DocumentationFile)

	return &cfg, nil
}

// SaveServer writes cfg to path after validating it.
func SaveServer(path string, cfg *Server) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if err := ValidateServer(cfg); err != nil {
		return err
	}

	return writeYAML(path, cfg)
}

// ValidateServer fills defaults and checks addresses, origins and the secret key.
func ValidateServer(cfg *Server) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	fillServerDefaults(cfg)

	if cfg.SecretKey == "" {
		return errSecretKeyRequired
	}

	for _, address := range []string{cfg.ListenAddress, cfg.HealthAddress} {
		if _, err := net.ResolveTCPAddr("tcp", address); err != nil {
			return fmt.Errorf("invalid listen address %q: %w", address, err)
		}
	}

	for _, origin := range cfg.AllowedOrigins {
		parsed, err := url.ParseRequestURI(origin)
		if err != nil {
			return fmt.Errorf("%w %q: %w", errBadOrigin, origin, err)
		}

		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%w %q", errBadOrigin, origin)
		}
	}

	return nil
}

func fillServerDefaults(cfg *Server) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = defaultListenAddress
	}

	if cfg.HealthAddress == "" {
		cfg.HealthAddress = defaultHealthAddress
	}

	if cfg.Database == "" {
		cfg.Database = defaultDatabase
	}

	if cfg.AllowedOrigins == nil {
		cfg.AllowedOrigins = []string{"https://innometrics.guru"}
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}

	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.DocumentationFile == "" {
		cfg.DocumentationFile = defaultDocumentation
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
}
