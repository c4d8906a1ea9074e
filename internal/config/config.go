package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"greeting-cards/internal/cards"
	"greeting-cards/internal/sharestore"
)

// Config is the top-level service configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Store      StoreConfig      `mapstructure:"store"`
	Generation GenerationConfig `mapstructure:"generation"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	ShareBaseURL string        `mapstructure:"share_base_url"`
}

// StoreConfig selects and configures the durable backend for shared cards.
type StoreConfig struct {
	Backend   string                 `mapstructure:"backend"` // "file" or "redis"
	FilePath  string                 `mapstructure:"file_path"`
	StatsPath string                 `mapstructure:"stats_path"`
	TTL       time.Duration          `mapstructure:"ttl"`
	Redis     sharestore.RedisConfig `mapstructure:"redis"`
}

// GenerationConfig configures the two generation collaborators.
type GenerationConfig struct {
	Text  cards.GeneratorConfig `mapstructure:"text"`
	Image cards.GeneratorConfig `mapstructure:"image"`
}

// LoggerConfig configures zap.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LoadConfig reads configuration from config files and environment
// variables, with environment taking precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/greeting-cards")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("GC")

	viper.BindEnv("server.share_base_url", "GC_SHARE_BASE_URL")
	viper.BindEnv("store.backend", "GC_STORE_BACKEND")
	viper.BindEnv("store.file_path", "GC_STORE_FILE_PATH")
	viper.BindEnv("store.stats_path", "GC_STORE_STATS_PATH")
	viper.BindEnv("store.ttl", "GC_STORE_TTL")
	viper.BindEnv("store.redis.addresses", "GC_REDIS_ADDRESSES")
	viper.BindEnv("store.redis.password", "GC_REDIS_PASSWORD")
	viper.BindEnv("generation.text.api_key", "OPENAI_API_KEY")
	viper.BindEnv("generation.image.api_key", "HUGGINGFACE_TOKEN")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file: defaults plus environment.
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if config.Store.Backend != "file" && config.Store.Backend != "redis" {
		return nil, fmt.Errorf("unknown store backend %q", config.Store.Backend)
	}
	if config.Store.TTL <= 0 {
		return nil, fmt.Errorf("store ttl must be positive, got %s", config.Store.TTL)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.share_base_url", "http://localhost:8080")

	// Store defaults
	viper.SetDefault("store.backend", "file")
	viper.SetDefault("store.file_path", "data/shares.json")
	viper.SetDefault("store.stats_path", "data/stats.json")
	viper.SetDefault("store.ttl", "48h")
	viper.SetDefault("store.redis.addresses", []string{"localhost:6379"})
	viper.SetDefault("store.redis.password", "")
	viper.SetDefault("store.redis.database", 0)
	viper.SetDefault("store.redis.max_retries", 3)
	viper.SetDefault("store.redis.pool_size", 10)
	viper.SetDefault("store.redis.min_idle_conns", 5)
	viper.SetDefault("store.redis.dial_timeout", "5s")
	viper.SetDefault("store.redis.read_timeout", "3s")
	viper.SetDefault("store.redis.write_timeout", "3s")

	// Generation defaults
	viper.SetDefault("generation.text.base_url", "https://api.openai.com/v1")
	viper.SetDefault("generation.text.model", "gpt-3.5-turbo")
	viper.SetDefault("generation.text.timeout", "30s")
	viper.SetDefault("generation.text.max_retries", 2)
	viper.SetDefault("generation.image.base_url", "https://api-inference.huggingface.co")
	viper.SetDefault("generation.image.model", "stabilityai/stable-diffusion-2-1")
	viper.SetDefault("generation.image.timeout", "60s")
	viper.SetDefault("generation.image.max_retries", 2)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "json")
	viper.SetDefault("logger.output_path", "stdout")
}

// GetAddress returns the full listen address.
func (sc *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", sc.Host, sc.Port)
}
