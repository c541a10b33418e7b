// Package config provides configuration management for puckline.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig          `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig     `mapstructure:"database" validate:"required"`
	ValueBet    ValueBetConfig     `mapstructure:"value_bet" validate:"required"`
	Reconcile   ReconcileConfig    `mapstructure:"reconcile" validate:"required"`
	Generate    GenerateConfig     `mapstructure:"generate" validate:"required"`
	Cache       CacheConfig        `mapstructure:"cache"`
	Leagues     []LeagueConfig     `mapstructure:"leagues" validate:"required,min=1,dive"`
	OddsCatalog []OddsCatalogEntry `mapstructure:"odds_catalog" validate:"omitempty,dive"`
	Metrics     MetricsConfig      `mapstructure:"metrics"`
	Secrets     SecretsConfig      `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	LogFormat   string `mapstructure:"log_format" validate:"omitempty,oneof=json text"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// ValueBetConfig holds the value bet thresholds and the recency decay
type ValueBetConfig struct {
	MinValue   float64 `mapstructure:"min_value" validate:"required,gt=0"`
	MinOdds    float64 `mapstructure:"min_odds" validate:"required,gt=1"`
	MinMatches int     `mapstructure:"min_matches" validate:"required,gt=0"`
	Decay      float64 `mapstructure:"decay" validate:"required,gt=0,lt=1"`
}

// ReconcileConfig holds the reconciliation sweep schedule and windows
type ReconcileConfig struct {
	Schedule           string `mapstructure:"schedule" validate:"required,cron"`
	FloorHours         int    `mapstructure:"floor_hours" validate:"required,gt=0"`
	CeilingDays        int    `mapstructure:"ceiling_days" validate:"required,gt=0"`
	MatchWindowMinutes int    `mapstructure:"match_window_minutes" validate:"required,gt=0"`
	Workers            int    `mapstructure:"workers" validate:"required,gt=0,lte=64"`
}

// GenerateConfig holds the value bet generation schedule
type GenerateConfig struct {
	Schedule     string `mapstructure:"schedule" validate:"required,cron"`
	HorizonHours int    `mapstructure:"horizon_hours" validate:"required,gt=0"`
}

// CacheConfig holds the team statistics cache settings
type CacheConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes" validate:"gte=0"`
}

// LeagueConfig describes one league and the provider that feeds it
type LeagueConfig struct {
	Name      string  `mapstructure:"name" validate:"required"`
	Source    string  `mapstructure:"source" validate:"required,oneof=nhl_web postgres"`
	BaseURL   string  `mapstructure:"base_url" validate:"omitempty,url"`
	Season    string  `mapstructure:"season" validate:"omitempty,len=8,numeric"`
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`
	Enabled   bool    `mapstructure:"enabled"`
	// UseLocal serves stats and fixtures from the synced games table; sync still reads Source
	UseLocal bool `mapstructure:"use_local"`
}

// Remote reports whether the league has an upstream source that sync can read
func (l LeagueConfig) Remote() bool {
	return l.Source != "postgres"
}

// ServedLocally reports whether stats and reconciliation read the games table
func (l LeagueConfig) ServedLocally() bool {
	return !l.Remote() || l.UseLocal
}

// OddsCatalogEntry is one configured line of the odds catalog
type OddsCatalogEntry struct {
	Category  string  `mapstructure:"category" validate:"required,oneof=home-it away-it match-total"`
	Line      float64 `mapstructure:"line" validate:"required,gt=0"`
	OverOdds  float64 `mapstructure:"over_odds" validate:"required,gt=1"`
	UnderOdds float64 `mapstructure:"under_odds" validate:"required,gt=1"`
}

// MetricsConfig represents metrics and health server configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// SecretsConfig controls the AWS Secrets Manager overlay
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

// DSN returns a PostgreSQL connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
}

// EnabledLeagues returns the leagues switched on in configuration
func (c *Config) EnabledLeagues() []LeagueConfig {
	var out []LeagueConfig
	for _, l := range c.Leagues {
		if l.Enabled {
			out = append(out, l)
		}
	}
	return out
}

// SyncLeagues returns the enabled leagues with an upstream source
func (c *Config) SyncLeagues() []LeagueConfig {
	var out []LeagueConfig
	for _, l := range c.EnabledLeagues() {
		if l.Remote() {
			out = append(out, l)
		}
	}
	return out
}

// MinAge is the youngest a fixture may be before it is reconciled
func (r ReconcileConfig) MinAge() time.Duration {
	return time.Duration(r.FloorHours) * time.Hour
}

// MaxAge is the oldest a fixture may be and still be reconciled
func (r ReconcileConfig) MaxAge() time.Duration {
	return time.Duration(r.CeilingDays) * 24 * time.Hour
}

// MatchWindow is the tolerance between predicted and actual kickoff
func (r ReconcileConfig) MatchWindow() time.Duration {
	return time.Duration(r.MatchWindowMinutes) * time.Minute
}

// Horizon is how far ahead fixtures are screened
func (g GenerateConfig) Horizon() time.Duration {
	return time.Duration(g.HorizonHours) * time.Hour
}

// TTL returns the cache entry lifetime
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}
