package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sevigo/reposcribe/internal/logger"
	"github.com/spf13/viper"
)

const (
	llmProviderGemini = "gemini"

	// ClassificationApplications and friends are the seven canonical
	// repository classification tags.
	ClassificationApplications         = "Applications"
	ClassificationFrameworks           = "Frameworks"
	ClassificationLibraries            = "Libraries"
	ClassificationDevelopmentTools     = "DevelopmentTools"
	ClassificationCLITools             = "CLITools"
	ClassificationDevOpsConfiguration  = "DevOpsConfiguration"
	ClassificationDocumentation        = "Documentation"
)

// AllClassifications lists the canonical tags in the order the
// RepositoryClassification prompt documents them.
var AllClassifications = []string{
	ClassificationApplications,
	ClassificationFrameworks,
	ClassificationLibraries,
	ClassificationDevelopmentTools,
	ClassificationCLITools,
	ClassificationDevOpsConfiguration,
	ClassificationDocumentation,
}

// Config represents the top-level configuration structure.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Document DocumentConfig `mapstructure:"document"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Database DBConfig       `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  logger.Config  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// LLMConfig describes the provider and model the Tool Kernel talks to.
// ModelProvider is one of openai, azureopenai, anthropic, ollama, gemini.
type LLMConfig struct {
	ModelProvider string `mapstructure:"model_provider"`
	Endpoint      string `mapstructure:"endpoint"`
	ChatAPIKey    string `mapstructure:"chat_api_key"`
	ChatModel     string `mapstructure:"chat_model"`
	AnalysisModel string `mapstructure:"analysis_model"`
	OllamaHost    string `mapstructure:"ollama_host"`
	GeminiAPIKey  string `mapstructure:"gemini_api_key"`
}

func (c *LLMConfig) Validate() error {
	switch c.ModelProvider {
	case "openai", "anthropic":
		if c.ChatAPIKey == "" {
			return fmt.Errorf("llm.chat_api_key is required for %s provider", c.ModelProvider)
		}
	case "azureopenai":
		if c.ChatAPIKey == "" || c.Endpoint == "" {
			return errors.New("llm.chat_api_key and llm.endpoint are required for azureopenai provider")
		}
	case "ollama":
	case llmProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("llm.gemini_api_key is required for gemini provider")
		}
	default:
		return fmt.Errorf("unsupported llm.model_provider: %q", c.ModelProvider)
	}
	return nil
}

// DocumentConfig is the spec §6 "Config surface (enumerated)" for the
// documentation pipeline, preserved field-for-field.
type DocumentConfig struct {
	EnableSmartFilter            bool   `mapstructure:"enable_smart_filter"`
	EnableCodeCompression        bool   `mapstructure:"enable_code_compression"`
	EnableCodeDependencyAnalysis bool   `mapstructure:"enable_code_dependency_analysis"`
	CatalogueFormat              string `mapstructure:"catalogue_format"` // compact | json | pathlist
	UpdateIntervalDays           int    `mapstructure:"update_interval_days"`
	EnableWarehouseCommit        bool   `mapstructure:"enable_warehouse_commit"`
}

type WorkerConfig struct {
	LeaseDuration time.Duration `mapstructure:"lease_duration"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	// Concurrency is how many independent Worker Loop goroutines this
	// process runs; each still processes one repository at a time (spec
	// §5), so this is the process's share of at-most-one-worker-per-row
	// concurrency, not a per-row parallelism knob.
	Concurrency int `mapstructure:"concurrency"`
}

type StorageConfig struct {
	RepoPath string `mapstructure:"repo_path"`
}

type DBConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// LoadConfig loads the configuration using Viper with the hierarchy:
// Flags (handled by caller) > Env Vars > Config File > Defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.reposcribe")

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded configuration", "file", v.ConfigFileUsed())
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")

	v.SetDefault("llm.model_provider", "ollama")
	v.SetDefault("llm.ollama_host", "http://localhost:11434")
	v.SetDefault("llm.chat_model", "qwen2.5-coder:14b")
	v.SetDefault("llm.analysis_model", "qwen2.5-coder:14b")

	v.SetDefault("document.enable_smart_filter", true)
	v.SetDefault("document.enable_code_compression", false)
	v.SetDefault("document.enable_code_dependency_analysis", true)
	v.SetDefault("document.catalogue_format", "compact")
	v.SetDefault("document.update_interval_days", 7)
	v.SetDefault("document.enable_warehouse_commit", true)

	v.SetDefault("worker.lease_duration", "45m")
	v.SetDefault("worker.poll_interval", "5s")
	v.SetDefault("worker.concurrency", 1)

	v.SetDefault("storage.repo_path", "./data/repos")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "reposcribe")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "5m")
}

func (c *Config) ValidateForServer() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm config invalid: %w", err)
	}
	switch c.Document.CatalogueFormat {
	case "compact", "json", "pathlist":
	default:
		return fmt.Errorf("document.catalogue_format must be compact, json or pathlist, got %q", c.Document.CatalogueFormat)
	}
	if c.Worker.LeaseDuration <= 0 {
		return errors.New("worker.lease_duration must be positive")
	}
	return nil
}

func (c *Config) ValidateForCLI() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm config invalid: %w", err)
	}
	return nil
}

func (db *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host,
		db.Port,
		db.Username,
		db.Password,
		db.Database,
		db.SSLMode,
	)
}
