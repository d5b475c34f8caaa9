package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full gateway configuration surface described in spec §6.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Router    RouterConfig    `mapstructure:"router"`
	PII       PIIConfig       `mapstructure:"pii"`
	Budget    BudgetConfig    `mapstructure:"budget"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// AuthConfig governs tenant credential validation (spec §6 "Credentials").
type AuthConfig struct {
	CredentialHeader string            `mapstructure:"credential_header"`
	TenantKeys       map[string]string `mapstructure:"tenant_keys"`
	JWTSecret        string            `mapstructure:"jwt_secret"`
}

// ProviderCredentials holds the configuration predicate for one adapter.
type ProviderCredentials struct {
	APIKey          string `mapstructure:"api_key"`
	Endpoint        string `mapstructure:"endpoint"`
	APIVersion      string `mapstructure:"api_version"`
	DeploymentModel string `mapstructure:"deployment_model"`
}

type ProvidersConfig struct {
	Anthropic    ProviderCredentials `mapstructure:"anthropic"`
	OpenAI       ProviderCredentials `mapstructure:"openai"`
	AzureOpenAI  ProviderCredentials `mapstructure:"azure_openai"`
	Gemini       ProviderCredentials `mapstructure:"gemini"`
	PriorityList []string            `mapstructure:"priority_list"`
}

type RouterConfig struct {
	FailureThreshold int           `mapstructure:"failure_threshold"`
	Cooldown         time.Duration `mapstructure:"cooldown"`
	AdapterTimeout   time.Duration `mapstructure:"adapter_timeout"`
}

type PIIConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Entities       []string      `mapstructure:"entities"`
	Backend        string        `mapstructure:"backend"` // "presidio" or "regex"
	PresidioURL    string        `mapstructure:"presidio_url"`
	ScoreThreshold float64       `mapstructure:"score_threshold"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type BudgetConfig struct {
	DefaultDailyLimitUSD   float64 `mapstructure:"default_daily_limit_usd"`
	DefaultMonthlyLimitUSD float64 `mapstructure:"default_monthly_limit_usd"`
	Backend                string  `mapstructure:"backend"` // "memory" or "redis"
}

type AuditConfig struct {
	FilePath    string        `mapstructure:"file_path"`
	SIEMURL     string        `mapstructure:"siem_url"`
	SIEMTimeout time.Duration `mapstructure:"siem_timeout"`
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func Load(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.AddConfigPath(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/aigateway")
	}

	setDefaults()

	viper.AutomaticEnv()
	bindEnvVars()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if len(cfg.Providers.PriorityList) == 0 {
		cfg.Providers.PriorityList = []string{"anthropic", "openai", "azure_openai", "gemini"}
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "300s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "")

	viper.SetDefault("cors.allow_credentials", true)
	viper.SetDefault("cors.max_age", 86400)
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST"})
	viper.SetDefault("cors.allowed_headers", []string{"*"})

	viper.SetDefault("auth.credential_header", "X-API-Key")
	viper.SetDefault("auth.tenant_keys", map[string]string{})

	viper.SetDefault("providers.priority_list", []string{"anthropic", "openai", "azure_openai", "gemini"})
	viper.SetDefault("providers.anthropic.deployment_model", "claude-sonnet-4-6")
	viper.SetDefault("providers.openai.deployment_model", "gpt-4o")
	viper.SetDefault("providers.azure_openai.api_version", "2024-02-01")
	viper.SetDefault("providers.azure_openai.deployment_model", "gpt-4o")
	viper.SetDefault("providers.gemini.deployment_model", "gemini-1.5-flash")

	viper.SetDefault("router.failure_threshold", 3)
	viper.SetDefault("router.cooldown", "60s")
	viper.SetDefault("router.adapter_timeout", "60s")

	viper.SetDefault("pii.enabled", true)
	viper.SetDefault("pii.backend", "regex")
	viper.SetDefault("pii.score_threshold", 0.35)
	viper.SetDefault("pii.request_timeout", "3s")
	viper.SetDefault("pii.entities", []string{
		"PERSON", "EMAIL_ADDRESS", "PHONE_NUMBER", "CREDIT_CARD",
		"US_SSN", "IP_ADDRESS", "LOCATION", "DATE_TIME",
	})

	viper.SetDefault("budget.default_daily_limit_usd", 10.0)
	viper.SetDefault("budget.default_monthly_limit_usd", 200.0)
	viper.SetDefault("budget.backend", "memory")

	viper.SetDefault("audit.file_path", "audit_logs/gateway_audit.jsonl")
	viper.SetDefault("audit.siem_timeout", "3s")

	viper.SetDefault("redis.db", 0)
}

func bindEnvVars() {
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("logging.format", "LOG_FORMAT")

	viper.BindEnv("auth.credential_header", "CREDENTIAL_HEADER")
	viper.BindEnv("auth.jwt_secret", "JWT_SECRET")

	viper.BindEnv("providers.anthropic.api_key", "ANTHROPIC_API_KEY")
	viper.BindEnv("providers.openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("providers.azure_openai.api_key", "AZURE_OPENAI_API_KEY")
	viper.BindEnv("providers.azure_openai.endpoint", "AZURE_OPENAI_ENDPOINT")
	viper.BindEnv("providers.azure_openai.api_version", "AZURE_OPENAI_API_VERSION")
	viper.BindEnv("providers.azure_openai.deployment_model", "AZURE_OPENAI_DEPLOYMENT")
	viper.BindEnv("providers.gemini.api_key", "GOOGLE_API_KEY")

	viper.BindEnv("pii.enabled", "PII_REDACTION_ENABLED")
	viper.BindEnv("pii.backend", "PII_BACKEND")
	viper.BindEnv("pii.presidio_url", "PRESIDIO_URL")

	viper.BindEnv("audit.file_path", "AUDIT_LOG_FILE")
	viper.BindEnv("audit.siem_url", "SIEM_WEBHOOK_URL")

	viper.BindEnv("budget.backend", "BUDGET_BACKEND")
	viper.BindEnv("budget.default_daily_limit_usd", "DEFAULT_TEAM_DAILY_BUDGET_USD")
	viper.BindEnv("budget.default_monthly_limit_usd", "DEFAULT_TEAM_MONTHLY_BUDGET_USD")

	viper.BindEnv("redis.url", "REDIS_URL")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
}
