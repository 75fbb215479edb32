package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/sirupsen/logrus"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	LocalToolGetTime       = "get_time"
	LocalToolGetServerTime = "get_server_time"
)

type Config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	Transport  string `env:"TRANSPORT" envDefault:"stdio"` // stdio or http
	ServerName string `env:"SERVER_NAME" envDefault:"mcp-simple-timeserver"`

	// HTTP transport settings
	Host                  string   `env:"HOST" envDefault:"0.0.0.0"`
	Port                  int      `env:"PORT" envDefault:"8000"`
	MCPEndpoint           string   `env:"MCP_ENDPOINT" envDefault:"/mcp"`
	MetricsPort           int      `env:"METRICS_PORT" envDefault:"9103"`
	PprofEnabled          bool     `env:"PPROF_ENABLED" envDefault:"true"`
	CorsEnable            bool     `env:"CORS_ENABLE"`
	RPSLimit              int      `env:"RPS_LIMIT" envDefault:"10"`
	RateLimitsByPassToken []string `env:"RATE_LIMITS_BY_PASS_TOKEN"`
	ConnectionsLimit      int      `env:"CONNECTIONS_LIMIT" envDefault:"50"`
	TrustedProxyRanges    []string `env:"TRUSTED_PROXY_RANGES" envDefault:"0.0.0.0/0"`
	SelfSignedTLS         bool     `env:"SELF_SIGNED_TLS" envDefault:"false"`

	// Time tools
	NTPDefaultServer  string `env:"NTP_DEFAULT_SERVER" envDefault:"pool.ntp.org"`
	NTPVersion        int    `env:"NTP_VERSION" envDefault:"3"`
	NTPHealthInterval int    `env:"NTP_HEALTH_INTERVAL" envDefault:"60"` // seconds
	NTPHealthTimeout  int    `env:"NTP_HEALTH_TIMEOUT" envDefault:"5"`   // seconds
	LocalTimeTool     string `env:"LOCAL_TIME_TOOL" envDefault:"get_time"`
	Timezone          string `env:"TIMEZONE"` // empty means the host zone
}

// Load parses the environment and applies the log level.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config parsing failed: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		log.Printf("Invalid LOG_LEVEL '%s', using default 'info'. Valid levels: panic, fatal, error, warn, info, debug, trace", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unsupported TRANSPORT %q: expected %q or %q", c.Transport, TransportStdio, TransportHTTP)
	}
	switch c.LocalTimeTool {
	case LocalToolGetTime, LocalToolGetServerTime:
	default:
		return fmt.Errorf("unsupported LOCAL_TIME_TOOL %q: expected %q or %q", c.LocalTimeTool, LocalToolGetTime, LocalToolGetServerTime)
	}
	if strings.TrimSpace(c.NTPDefaultServer) == "" {
		return fmt.Errorf("NTP_DEFAULT_SERVER must not be empty")
	}
	if c.NTPVersion < 2 || c.NTPVersion > 4 {
		return fmt.Errorf("NTP_VERSION must be between 2 and 4, got %d", c.NTPVersion)
	}
	if !strings.HasPrefix(c.MCPEndpoint, "/") {
		return fmt.Errorf("MCP_ENDPOINT must start with '/', got %q", c.MCPEndpoint)
	}
	return nil
}
