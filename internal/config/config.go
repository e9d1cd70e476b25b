package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	SerpAPI     SerpAPIConfig     `yaml:"serpapi" mapstructure:"serpapi"`
	GoHighLevel GoHighLevelConfig `yaml:"gohighlevel" mapstructure:"gohighlevel"`
	Analyzer    AnalyzerConfig    `yaml:"analyzer" mapstructure:"analyzer"`
	Score       ScoreWeights      `yaml:"score" mapstructure:"score"`
	Batch       BatchConfig       `yaml:"batch" mapstructure:"batch"`
	Export      ExportConfig      `yaml:"export" mapstructure:"export"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SerpAPIConfig holds SerpAPI credentials and search behavior.
type SerpAPIConfig struct {
	Key             string  `yaml:"key" mapstructure:"key"`
	BaseURL         string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSec      float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	LimitPerKeyword int     `yaml:"limit_per_keyword" mapstructure:"limit_per_keyword"`
}

// GoHighLevelConfig holds Go High Level CRM credentials.
type GoHighLevelConfig struct {
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	LocationID  string  `yaml:"location_id" mapstructure:"location_id"`
	WorkflowID  string  `yaml:"workflow_id" mapstructure:"workflow_id"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// AnalyzerConfig configures website fetching and contact extraction.
type AnalyzerConfig struct {
	TimeoutSecs     int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent       string `yaml:"user_agent" mapstructure:"user_agent"`
	AcceptLanguage  string `yaml:"accept_language" mapstructure:"accept_language"`
	MaxContactPages int    `yaml:"max_contact_pages" mapstructure:"max_contact_pages"`
}

// ScoreWeights holds the per-feature opportunity score weights.
// The defaults sum to 100 so a site with nothing scores 100 and a
// site with everything scores 0. Weights are independently tunable
// and may sum past 100, which is why scoring clamps.
type ScoreWeights struct {
	Website   int `yaml:"weight_website" mapstructure:"weight_website"`
	SSL       int `yaml:"weight_ssl" mapstructure:"weight_ssl"`
	Chat      int `yaml:"weight_chat" mapstructure:"weight_chat"`
	WhatsApp  int `yaml:"weight_whatsapp" mapstructure:"weight_whatsapp"`
	Form      int `yaml:"weight_form" mapstructure:"weight_form"`
	Facebook  int `yaml:"weight_facebook" mapstructure:"weight_facebook"`
	Instagram int `yaml:"weight_instagram" mapstructure:"weight_instagram"`
	LinkedIn  int `yaml:"weight_linkedin" mapstructure:"weight_linkedin"`
	Analytics int `yaml:"weight_analytics" mapstructure:"weight_analytics"`
	Pixel     int `yaml:"weight_pixel" mapstructure:"weight_pixel"`
}

// DefaultScoreWeights returns the standard weight set (sums to 100).
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Website:   15,
		SSL:       5,
		Chat:      20,
		WhatsApp:  15,
		Form:      10,
		Facebook:  10,
		Instagram: 10,
		LinkedIn:  5,
		Analytics: 5,
		Pixel:     5,
	}
}

// BatchConfig configures batch analysis.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ExportConfig configures CRM export.
type ExportConfig struct {
	MinScore int `yaml:"min_score" mapstructure:"min_score"`
}

// ServerConfig configures the HTTP API server.
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
	v.SetEnvPrefix("LEADSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Credential keys default to empty so AutomaticEnv can
	// see them; viper only unmarshals keys it already knows about.
	v.SetDefault("serpapi.key", "")
	v.SetDefault("gohighlevel.api_key", "")
	v.SetDefault("gohighlevel.location_id", "")
	v.SetDefault("gohighlevel.workflow_id", "")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leadscan.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent", 5)
	v.SetDefault("export.min_score", 60)
	v.SetDefault("serpapi.base_url", "https://serpapi.com/search.json")
	v.SetDefault("serpapi.rate_per_sec", 1.0)
	v.SetDefault("serpapi.limit_per_keyword", 20)
	v.SetDefault("gohighlevel.base_url", "https://rest.gohighlevel.com/v1")
	v.SetDefault("gohighlevel.timeout_secs", 30)
	v.SetDefault("gohighlevel.rate_per_sec", 2.0)
	v.SetDefault("analyzer.timeout_secs", 15)
	v.SetDefault("analyzer.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("analyzer.accept_language", "es-AR,es;q=0.9,en;q=0.8")
	v.SetDefault("analyzer.max_contact_pages", 2)

	w := DefaultScoreWeights()
	v.SetDefault("score.weight_website", w.Website)
	v.SetDefault("score.weight_ssl", w.SSL)
	v.SetDefault("score.weight_chat", w.Chat)
	v.SetDefault("score.weight_whatsapp", w.WhatsApp)
	v.SetDefault("score.weight_form", w.Form)
	v.SetDefault("score.weight_facebook", w.Facebook)
	v.SetDefault("score.weight_instagram", w.Instagram)
	v.SetDefault("score.weight_linkedin", w.LinkedIn)
	v.SetDefault("score.weight_analytics", w.Analytics)
	v.SetDefault("score.weight_pixel", w.Pixel)

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
