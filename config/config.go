package config

import (
	"github.com/ericlagergren/decimal"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gitlab.com/agentlink-marketplace/attribution_api/conv"
	"gitlab.com/agentlink-marketplace/attribution_api/monitor"
	"gitlab.com/agentlink-marketplace/attribution_api/net/kafka"
)

// Config structure
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	DatabaseCluster DatabaseClusterConfig `mapstructure:"database_cluster"`
	Kafka           kafka.Config          `mapstructure:"kafka"`
	Attribution     AttributionConfig     `mapstructure:"attribution"`
	Fraud           FraudConfig           `mapstructure:"fraud"`
	Commission      CommissionConfig      `mapstructure:"commission"`
	Crons           Crons                 `mapstructure:"crons"`
}

// ServerConfig structure
type ServerConfig struct {
	Monitoring monitor.Config `mapstructure:"monitoring"`
	API        APIConfig      `mapstructure:"api"`
}

// APIConfig structure
type APIConfig struct {
	Port      int    `mapstructure:"port"`
	KeepAlive bool   `mapstructure:"keep_alive"`
	Domain    string `mapstructure:"domain"`
}

// AttributionConfig controls signal extraction, the cookie verifier and the
// identity binder
type AttributionConfig struct {
	CookieSecret     string `mapstructure:"cookie_secret"`
	CookieMaxAgeDays int    `mapstructure:"cookie_max_age_days"`
	CodeLength       int    `mapstructure:"code_length"`
	CodeMaxRetries   int    `mapstructure:"code_max_retries"`
	AttemptTTLDays   int    `mapstructure:"attempt_ttl_days"`
}

// FraudConfig holds the advisory velocity thresholds
type FraudConfig struct {
	VelocityWindowSeconds int64 `mapstructure:"velocity_window_seconds"`
	VelocityMaxCount      int64 `mapstructure:"velocity_max_count"`
}

// CommissionConfig holds the routing rates and the ledger timing knobs.
// Rates are injected here rather than hard coded so environments and tests
// can override them
type CommissionConfig struct {
	PlatformRate      float64 `mapstructure:"platform_rate"`
	AgentRate         float64 `mapstructure:"agent_rate"`
	HoldPeriodDays    int     `mapstructure:"hold_period_days"`
	PayoutMaxAttempts int     `mapstructure:"payout_max_attempts"`
	PayoutBatchSize   int     `mapstructure:"payout_batch_size"`
}

// GetPlatformRate godoc
func (cfg *CommissionConfig) GetPlatformRate() *decimal.Big {
	return conv.MoneyFromFloat(cfg.PlatformRate)
}

// GetAgentRate godoc
func (cfg *CommissionConfig) GetAgentRate() *decimal.Big {
	return conv.MoneyFromFloat(cfg.AgentRate)
}

// Crons - mapping of ids to execution frequency
type Crons map[string]string

// DatabaseClusterConfig structure
type DatabaseClusterConfig struct {
	Writer DatabaseConfig `mapstructure:"writer"`
	Reader DatabaseConfig `mapstructure:"reader"`
}

// DatabaseConfig structure
type DatabaseConfig struct {
	Type            string // postgres
	Host            string
	Username        string
	Password        string
	Name            string
	SSLmode         string `mapstructure:"sslmode"`
	ApplicationName string `mapstructure:"application_name"`
	Port            int
}

// LoadConfig Load server configuration from the yaml file
func LoadConfig(viperConf *viper.Viper) Config {
	var config Config

	err := viperConf.Unmarshal(&config)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to decode config into struct")
	}
	return config
}

// OpenConfig godoc
func OpenConfig(file string) {
	if file != "" {
		// Use config file from the flag.
		viper.SetConfigFile(file)
	}

	viper.SetConfigType("yaml")
	viper.SetConfigName(".config")
	viper.AddConfigPath(".")                       // First try to load the config from the current directory
	viper.AddConfigPath("$HOME")                   // Then try to load it from the HOME directory
	viper.AddConfigPath("/etc/attribution_api/")   // As a last resort try to load it from /etc/
	viper.SetEnvPrefix("CFG")
	viper.AutomaticEnv()
	setDefaultVariables()

	err := viper.ReadInConfig() // Find and read the config file
	if err != nil {             // Handle errors reading the config file
		log.Fatal().Err(err).Msg("Unable to read configuration file")
	}
}

func setDefaultVariables() {
	viper.SetDefault("attribution.cookie_max_age_days", 30)
	viper.SetDefault("attribution.code_length", 7)
	viper.SetDefault("attribution.code_max_retries", 10)
	viper.SetDefault("attribution.attempt_ttl_days", 30)
	viper.SetDefault("fraud.velocity_window_seconds", 3600)
	viper.SetDefault("fraud.velocity_max_count", 25)
	viper.SetDefault("commission.platform_rate", 0.10)
	viper.SetDefault("commission.agent_rate", 0.10)
	viper.SetDefault("commission.hold_period_days", 7)
	viper.SetDefault("commission.payout_max_attempts", 3)
	viper.SetDefault("commission.payout_batch_size", 100)
}
