package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/cypherlabdev/value-bet-service/internal/export"
	"github.com/cypherlabdev/value-bet-service/internal/fetch"
	"github.com/cypherlabdev/value-bet-service/internal/models"
	"github.com/cypherlabdev/value-bet-service/pkg/detector"
	"github.com/cypherlabdev/value-bet-service/pkg/oddsmath"
)

// Config holds all configuration for value-bet-service
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Leagues   []string        `mapstructure:"leagues"`
	Sizing    SizingConfig    `mapstructure:"sizing"`
	BetLog    BetLogConfig    `mapstructure:"betlog"`
	Export    ExportConfig    `mapstructure:"export"`
	Scan      ScanConfig      `mapstructure:"scan"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled            bool     `mapstructure:"enabled"`
	Brokers            []string `mapstructure:"brokers"`
	SnapshotTopic      string   `mapstructure:"snapshot_topic"`      // raw league snapshots to consume
	OpportunitiesTopic string   `mapstructure:"opportunities_topic"` // newly flagged opportunities to publish
	GroupID            string   `mapstructure:"group_id"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ProvidersConfig holds both books' endpoints and credentials
type ProvidersConfig struct {
	Pinnacle PinnacleConfig `mapstructure:"pinnacle"`
	FanDuel  FanDuelConfig  `mapstructure:"fanduel"`
}

// TransportConfig holds per-provider HTTP settings
type TransportConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

// PinnacleConfig holds reference-book settings
type PinnacleConfig struct {
	TransportConfig `mapstructure:",squash"`
	APIKey          string `mapstructure:"api_key"`
	DeviceUUID      string `mapstructure:"device_uuid"`
}

// FanDuelConfig holds retail-book settings
type FanDuelConfig struct {
	TransportConfig `mapstructure:",squash"`
	APIKey          string `mapstructure:"api_key"`
	Timezone        string `mapstructure:"timezone"`
}

// SizingConfig holds devig and staking parameters
type SizingConfig struct {
	Method            string  `mapstructure:"method"` // power | multiplicative
	Cap               float64 `mapstructure:"cap"`
	Scale             float64 `mapstructure:"scale"`
	ConfidenceFloor   float64 `mapstructure:"confidence_floor"`
	ConfidenceCeiling float64 `mapstructure:"confidence_ceiling"`
	Bankroll          float64 `mapstructure:"bankroll"`
	UnitDivisor       float64 `mapstructure:"unit_divisor"` // 0 shows stakes in currency
}

// BetLogConfig holds bet log storage configuration
type BetLogConfig struct {
	Path string `mapstructure:"path"` // SQLite file, or ":memory:"
}

// ExportConfig holds sheet export configuration
type ExportConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	AppendURL    string        `mapstructure:"append_url"`
	Token        string        `mapstructure:"token"` // static bearer token; ignored when token_url is set
	TokenURL     string        `mapstructure:"token_url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// ScanConfig holds periodic scan configuration
type ScanConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig loads configuration from file and environment variables.
// A .env file in the working directory is loaded first when present.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("server.port", 8082)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.snapshot_topic", "league_snapshots")
	v.SetDefault("kafka.opportunities_topic", "value_opportunities")
	v.SetDefault("kafka.group_id", "value-bet-service")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 15*time.Minute)

	v.SetDefault("providers.pinnacle.base_url", "")
	v.SetDefault("providers.pinnacle.timeout", 10*time.Second)
	v.SetDefault("providers.pinnacle.rate_per_second", 5.0)
	v.SetDefault("providers.pinnacle.burst", 2)
	v.SetDefault("providers.pinnacle.max_retries", 2)
	v.SetDefault("providers.pinnacle.api_key", "")
	v.SetDefault("providers.pinnacle.device_uuid", "")
	v.SetDefault("providers.fanduel.base_url", "")
	v.SetDefault("providers.fanduel.timeout", 10*time.Second)
	v.SetDefault("providers.fanduel.rate_per_second", 5.0)
	v.SetDefault("providers.fanduel.burst", 2)
	v.SetDefault("providers.fanduel.max_retries", 2)
	v.SetDefault("providers.fanduel.api_key", "")
	v.SetDefault("providers.fanduel.timezone", "America/New_York")

	leagues := make([]string, 0, len(models.Leagues()))
	for _, l := range models.Leagues() {
		leagues = append(leagues, string(l))
	}
	v.SetDefault("leagues", leagues)

	policy := models.DefaultSizingPolicy()
	v.SetDefault("sizing.method", string(policy.Method))
	v.SetDefault("sizing.cap", policy.Cap)
	v.SetDefault("sizing.scale", policy.Scale)
	v.SetDefault("sizing.confidence_floor", policy.ConfidenceFloor)
	v.SetDefault("sizing.confidence_ceiling", policy.ConfidenceCeiling)
	v.SetDefault("sizing.bankroll", policy.Bankroll.InexactFloat64())
	v.SetDefault("sizing.unit_divisor", 0.0)

	v.SetDefault("betlog.path", "goodbets.db")

	v.SetDefault("export.enabled", false)
	v.SetDefault("export.append_url", "")
	v.SetDefault("export.token", "")
	v.SetDefault("export.token_url", "")
	v.SetDefault("export.client_id", "")
	v.SetDefault("export.client_secret", "")
	v.SetDefault("export.timeout", 10*time.Second)

	v.SetDefault("scan.enabled", true)
	v.SetDefault("scan.interval", 5*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("VALUE_BET")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Provider secrets also answer to their bare names
	secrets := map[string]string{
		"providers.pinnacle.api_key":     "PINNACLE_API_KEY",
		"providers.pinnacle.device_uuid": "PINNACLE_DEVICE_UUID",
		"providers.fanduel.api_key":      "FANDUEL_API_KEY",
	}
	for key, bare := range secrets {
		prefixed := "VALUE_BET_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, bare); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// EnabledLeagues parses the configured league list
func (c *Config) EnabledLeagues() ([]models.League, error) {
	out := make([]models.League, 0, len(c.Leagues))
	for _, name := range c.Leagues {
		l, err := models.ParseLeague(name)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// ToPolicy converts config to a validated sizing policy
func (c *SizingConfig) ToPolicy() (models.SizingPolicy, error) {
	method, err := oddsmath.ParseMethod(c.Method)
	if err != nil {
		return models.SizingPolicy{}, err
	}

	policy := models.SizingPolicy{
		Method:            method,
		Cap:               c.Cap,
		Scale:             c.Scale,
		ConfidenceFloor:   c.ConfidenceFloor,
		ConfidenceCeiling: c.ConfidenceCeiling,
		Bankroll:          decimal.NewFromFloat(c.Bankroll),
	}
	if err := detector.ValidatePolicy(policy); err != nil {
		return models.SizingPolicy{}, err
	}
	return policy, nil
}

// UnitSize is bankroll / unit divisor, or zero when stakes are shown in currency
func (c *SizingConfig) UnitSize() decimal.Decimal {
	if c.UnitDivisor <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(c.Bankroll).Div(decimal.NewFromFloat(c.UnitDivisor))
}

func (t TransportConfig) client() fetch.ClientConfig {
	return fetch.ClientConfig{
		BaseURL:       t.BaseURL,
		Timeout:       t.Timeout,
		RatePerSecond: t.RatePerSecond,
		Burst:         t.Burst,
		MaxRetries:    t.MaxRetries,
	}
}

// ToFetch converts config to the reference client settings
func (c *PinnacleConfig) ToFetch() fetch.PinnacleConfig {
	return fetch.PinnacleConfig{
		ClientConfig: c.client(),
		APIKey:       c.APIKey,
		DeviceUUID:   c.DeviceUUID,
	}
}

// ToFetch converts config to the retail client settings
func (c *FanDuelConfig) ToFetch() fetch.FanDuelConfig {
	return fetch.FanDuelConfig{
		ClientConfig: c.client(),
		APIKey:       c.APIKey,
		Timezone:     c.Timezone,
	}
}

// TokenSource picks the client-credentials grant when a token URL is set, else the static token
func (c *ExportConfig) TokenSource() export.TokenSource {
	if c.TokenURL != "" {
		return &export.ClientCredentials{
			TokenURL:     c.TokenURL,
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
		}
	}
	return export.StaticToken(c.Token)
}

// ToExport converts config to exporter settings
func (c *ExportConfig) ToExport() export.Config {
	return export.Config{
		AppendURL: c.AppendURL,
		Timeout:   c.Timeout,
	}
}
