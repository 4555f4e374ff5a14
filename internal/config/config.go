package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store          StoreConfig          `yaml:"store" mapstructure:"store"`
	Discovery      DiscoveryConfig      `yaml:"discovery" mapstructure:"discovery"`
	Perplexity     PerplexityConfig     `yaml:"perplexity" mapstructure:"perplexity"`
	Anthropic      AnthropicConfig      `yaml:"anthropic" mapstructure:"anthropic"`
	CompaniesHouse CompaniesHouseConfig `yaml:"companies_house" mapstructure:"companies_house"`
	Postcodes      PostcodesConfig      `yaml:"postcodes" mapstructure:"postcodes"`
	Campaign       CampaignConfig       `yaml:"campaign" mapstructure:"campaign"`
	Validate       ValidateConfig       `yaml:"validate" mapstructure:"validate"`
	Dedup          DedupConfig          `yaml:"dedup" mapstructure:"dedup"`
	Server         ServerConfig         `yaml:"server" mapstructure:"server"`
	Log            LogConfig            `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// DiscoveryConfig configures discovery tier ordering and timeouts. Tiers are
// attempted in order with exactly one failover; both failing fails the
// campaign with no automatic retry.
type DiscoveryConfig struct {
	SearchTimeoutSecs    int `yaml:"search_timeout_secs" mapstructure:"search_timeout_secs"`
	KnowledgeTimeoutSecs int `yaml:"knowledge_timeout_secs" mapstructure:"knowledge_timeout_secs"`
}

// SearchTimeout returns the search-augmented tier timeout.
func (c DiscoveryConfig) SearchTimeout() time.Duration {
	return time.Duration(c.SearchTimeoutSecs) * time.Second
}

// KnowledgeTimeout returns the knowledge-only tier timeout.
func (c DiscoveryConfig) KnowledgeTimeout() time.Duration {
	return time.Duration(c.KnowledgeTimeoutSecs) * time.Second
}

// PerplexityConfig holds Perplexity API settings (search-augmented tier).
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings (knowledge-only tier).
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CompaniesHouseConfig holds registry enrichment settings.
type CompaniesHouseConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// RatePerSec bounds outbound request rate; the public API allows
	// 600 requests per 5 minutes.
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	RateBurst  int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// PostcodesConfig holds postcode geocoding settings.
type PostcodesConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CampaignConfig configures the campaign runner.
type CampaignConfig struct {
	WorkerConcurrency int `yaml:"worker_concurrency" mapstructure:"worker_concurrency"`
	// PersistRetries is the number of attempts for a single lead write before
	// it is counted as a non-fatal per-candidate failure.
	PersistRetries        int     `yaml:"persist_retries" mapstructure:"persist_retries"`
	PersistBackoffMS      int     `yaml:"persist_backoff_ms" mapstructure:"persist_backoff_ms"`
	StuckAfterMins        int     `yaml:"stuck_after_mins" mapstructure:"stuck_after_mins"`
	DefaultRadiusMiles    int     `yaml:"default_radius_miles" mapstructure:"default_radius_miles"`
	DefaultMaxResults     int     `yaml:"default_max_results" mapstructure:"default_max_results"`
	ProjectValueSmallGBP  float64 `yaml:"project_value_small_gbp" mapstructure:"project_value_small_gbp"`
	ProjectValueMediumGBP float64 `yaml:"project_value_medium_gbp" mapstructure:"project_value_medium_gbp"`
	ProjectValueLargeGBP  float64 `yaml:"project_value_large_gbp" mapstructure:"project_value_large_gbp"`
}

// ValidateConfig configures candidate validation.
type ValidateConfig struct {
	ScoreMin float64 `yaml:"score_min" mapstructure:"score_min"`
	ScoreMax float64 `yaml:"score_max" mapstructure:"score_max"`
	// PostcodePattern overrides the default UK postcode shape when targeting
	// a different market.
	PostcodePattern string `yaml:"postcode_pattern" mapstructure:"postcode_pattern"`
}

// DedupConfig configures identity resolution.
type DedupConfig struct {
	// InwardCodeLen is the length of the trailing inward code stripped to
	// obtain the outward code when the postcode carries no space. UK inward
	// codes are always three characters.
	InwardCodeLen int `yaml:"inward_code_len" mapstructure:"inward_code_len"`
}

// ServerConfig configures the HTTP entry point.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("discovery.search_timeout_secs", 240)
	v.SetDefault("discovery.knowledge_timeout_secs", 60)
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 8192)
	v.SetDefault("companies_house.base_url", "https://api.company-information.service.gov.uk")
	v.SetDefault("companies_house.rate_per_sec", 2.0)
	v.SetDefault("companies_house.rate_burst", 5)
	v.SetDefault("postcodes.base_url", "https://api.postcodes.io")
	v.SetDefault("campaign.worker_concurrency", 5)
	v.SetDefault("campaign.persist_retries", 3)
	v.SetDefault("campaign.persist_backoff_ms", 250)
	v.SetDefault("campaign.stuck_after_mins", 30)
	v.SetDefault("campaign.default_radius_miles", 20)
	v.SetDefault("campaign.default_max_results", 100)
	v.SetDefault("campaign.project_value_small_gbp", 5000)
	v.SetDefault("campaign.project_value_medium_gbp", 25000)
	v.SetDefault("campaign.project_value_large_gbp", 75000)
	v.SetDefault("validate.score_min", 0)
	v.SetDefault("validate.score_max", 100)
	v.SetDefault("dedup.inward_code_len", 3)

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

	return &cfg, nil
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
