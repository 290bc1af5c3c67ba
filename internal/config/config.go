package config

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig    `yaml:"store" mapstructure:"store"`
	Telegram  TelegramConfig `yaml:"telegram" mapstructure:"telegram"`
	Geocode   GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Routing   RoutingConfig  `yaml:"routing" mapstructure:"routing"`
	Journey   JourneyConfig  `yaml:"journey" mapstructure:"journey"`
	Server    ServerConfig   `yaml:"server" mapstructure:"server"`
	Log       LogConfig      `yaml:"log" mapstructure:"log"`
	Timezone  string         `yaml:"timezone" mapstructure:"timezone"`
	ExportDir string         `yaml:"export_dir" mapstructure:"export_dir"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// TelegramConfig holds bot credentials and the chat allow-list.
type TelegramConfig struct {
	Token          string  `yaml:"token" mapstructure:"token"`
	AllowedChatIDs []int64 `yaml:"allowed_chat_ids" mapstructure:"allowed_chat_ids"`
	WebhookSecret  string  `yaml:"webhook_secret" mapstructure:"webhook_secret"`
	PollTimeout    int     `yaml:"poll_timeout_secs" mapstructure:"poll_timeout_secs"`
}

// GeocodeConfig configures the geocoding providers.
type GeocodeConfig struct {
	UserAgent        string `yaml:"user_agent" mapstructure:"user_agent"`
	GeoNamesUsername string `yaml:"geonames_username" mapstructure:"geonames_username"`
	Region           string `yaml:"region" mapstructure:"region"`
}

// RoutingConfig configures the driving-distance provider.
type RoutingConfig struct {
	ORSKey          string `yaml:"ors_api_key" mapstructure:"ors_api_key"`
	MinIntervalSecs int    `yaml:"min_interval_secs" mapstructure:"min_interval_secs"`
}

// JourneyConfig configures resolution behavior.
type JourneyConfig struct {
	HomeAddress        string `yaml:"home_address" mapstructure:"home_address"`
	KnownAddressesPath string `yaml:"known_addresses_path" mapstructure:"known_addresses_path"`
	SettlementsPath    string `yaml:"settlements_path" mapstructure:"settlements_path"`
}

// ServerConfig configures the webhook server.
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
	v.SetEnvPrefix("JOURNEYLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "journeylog.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("timezone", "Europe/London")
	v.SetDefault("export_dir", ".")
	v.SetDefault("telegram.poll_timeout_secs", 30)
	v.SetDefault("geocode.user_agent", "journeylog/1.0")
	v.SetDefault("geocode.region", "Northern Ireland, UK")
	v.SetDefault("routing.min_interval_secs", 1)

	// Secrets and paths usually arrive via environment; viper only
	// unmarshals env values for keys it knows about.
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.allowed_chat_ids", []int64{})
	v.SetDefault("telegram.webhook_secret", "")
	v.SetDefault("routing.ors_api_key", "")
	v.SetDefault("geocode.geonames_username", "")
	v.SetDefault("journey.home_address", "")
	v.SetDefault("journey.known_addresses_path", "")
	v.SetDefault("journey.settlements_path", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		chatIDListHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// chatIDListHookFunc decodes the comma-separated environment form of the
// chat allow-list ("100,200") into []int64.
func chatIDListHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]int64(nil)) {
			return data, nil
		}
		raw := strings.TrimSpace(data.(string))
		if raw == "" {
			return []int64{}, nil
		}
		var ids []int64
		for _, field := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "config: parse chat id %q", field)
			}
			ids = append(ids, id)
		}
		return ids, nil
	}
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
