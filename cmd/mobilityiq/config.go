package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/socketrpc"
)

const (
	defaultBindHost     = "127.0.0.1"
	defaultAPIPort      = model.DefaultAPIPort
	defaultQueryTimeout = model.DefaultQueryTimeout
	defaultUploadDir    = model.DefaultUploadDir
	defaultSkin         = model.DefaultSkin
	defaultLogLevel     = "info"
	defaultExportLog    = 20
)

// appConfig is the service's runtime configuration.
type appConfig struct {
	Host         string        `mapstructure:"host"`
	APIEnabled   bool          `mapstructure:"api-enabled"`
	APIPort      int           `mapstructure:"api-port"`
	APIAddr      string        `mapstructure:"api-addr"`
	SocketPath   string        `mapstructure:"socket-path"`
	QueryTimeout time.Duration `mapstructure:"query-timeout"`
	LogLevel     string        `mapstructure:"log-level"`
	UploadDir    string        `mapstructure:"upload-dir"`
	Skin         string        `mapstructure:"skin"`
	ExportLog    int           `mapstructure:"export-history"`
	Preload      bool          `mapstructure:"preload-upload"`
	ConfigPath   string        `mapstructure:"-"`
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("MOBILITYIQ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("host", defaultBindHost)
	v.SetDefault("api-enabled", true)
	v.SetDefault("api-port", defaultAPIPort)
	v.SetDefault("api-addr", "")
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("upload-dir", defaultUploadDir)
	v.SetDefault("skin", defaultSkin)
	v.SetDefault("export-history", defaultExportLog)
	v.SetDefault("preload-upload", false)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "mobilityiq", "config.yml"))
	}

	found := false
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	} else {
		found = true
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if found {
		cfg.ConfigPath = v.ConfigFileUsed()
	}
	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return cfg, fmt.Errorf("invalid api-port: %d", cfg.APIPort)
	}
	if cfg.QueryTimeout <= 0 {
		return cfg, fmt.Errorf("invalid query-timeout: %s", cfg.QueryTimeout)
	}
	if cfg.ExportLog < 0 {
		return cfg, fmt.Errorf("invalid export-history: %d", cfg.ExportLog)
	}

	if strings.HasPrefix(cfg.SocketPath, "~/") {
		cfg.SocketPath = filepath.Join(home, cfg.SocketPath[2:])
	}
	if cfg.Host == "" {
		cfg.Host = defaultBindHost
	}
	if cfg.APIAddr == "" {
		cfg.APIAddr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.APIPort))
	}

	return cfg, nil
}
