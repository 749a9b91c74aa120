package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	Providers ProvidersConfig `yaml:"providers" mapstructure:"providers"`
	Browser   BrowserConfig   `yaml:"browser" mapstructure:"browser"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// HTTPConfig configures the shared outbound HTTP client.
type HTTPConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs" validate:"gt=0"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent" validate:"required"`
}

// Timeout returns the client timeout as a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ProviderConfig toggles a single provider and sets its endpoint.
type ProviderConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	URL     string `yaml:"url" mapstructure:"url" validate:"required_if=Enabled true,omitempty,url"`
}

// ProvidersConfig lists every known provider. Registration order is fixed
// in the extract registry, not here.
type ProvidersConfig struct {
	RunPod       ProviderConfig `yaml:"runpod" mapstructure:"runpod"`
	Vast         ProviderConfig `yaml:"vast" mapstructure:"vast"`
	DigitalOcean ProviderConfig `yaml:"digitalocean" mapstructure:"digitalocean"`
	Hyperbolic   ProviderConfig `yaml:"hyperbolic" mapstructure:"hyperbolic"`
}

// BrowserConfig configures the headless browser used for rendered pages.
type BrowserConfig struct {
	Headless              bool   `yaml:"headless" mapstructure:"headless"`
	ExecPath              string `yaml:"exec_path" mapstructure:"exec_path"`
	NavigationTimeoutSecs int    `yaml:"navigation_timeout_secs" mapstructure:"navigation_timeout_secs" validate:"gt=0"`
	IdleConnections       int    `yaml:"idle_connections" mapstructure:"idle_connections" validate:"gte=0"`
	IdleQuietMS           int    `yaml:"idle_quiet_ms" mapstructure:"idle_quiet_ms" validate:"gt=0"`
}

// NavigationTimeout returns the page navigation deadline.
func (c BrowserConfig) NavigationTimeout() time.Duration {
	return time.Duration(c.NavigationTimeoutSecs) * time.Second
}

// IdleQuiet returns how long the network must stay quiet before a page is ready.
func (c BrowserConfig) IdleQuiet() time.Duration {
	return time.Duration(c.IdleQuietMS) * time.Millisecond
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port" validate:"gt=0,lte=65535"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// StoreConfig configures the snapshot database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver" validate:"oneof=sqlite postgres"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url" validate:"required"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

var validate = validator.New()

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GPUPRICES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("http.timeout_secs", 30)
	v.SetDefault("http.user_agent", "gpu-prices/1.0")
	v.SetDefault("providers.runpod.enabled", true)
	v.SetDefault("providers.runpod.url", "https://api.runpod.io/v2/gpu-types")
	v.SetDefault("providers.vast.enabled", true)
	v.SetDefault("providers.vast.url", "https://vast.ai/pricing")
	v.SetDefault("providers.digitalocean.enabled", true)
	v.SetDefault("providers.digitalocean.url", "https://www.digitalocean.com/pricing/droplets-with-gpus")
	v.SetDefault("providers.hyperbolic.enabled", false)
	v.SetDefault("providers.hyperbolic.url", "https://api.hyperbolic.xyz/v1/marketplace")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.navigation_timeout_secs", 30)
	v.SetDefault("browser.idle_connections", 2)
	v.SetDefault("browser.idle_quiet_ms", 500)
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "gpu-prices.db")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return eris.Wrap(err, "config: validate")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
