package config

import (
	"errors"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/viper"
)

// ErrorCode defines error types for configuration loading
type ErrorCode string

const (
	// ErrConfigNotFound represents a configuration file that cannot be read
	ErrConfigNotFound ErrorCode = "ConfigNotFound"
	// ErrConfigInvalid represents a configuration file that cannot be parsed or fails validation
	ErrConfigInvalid ErrorCode = "ConfigInvalid"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

const (
	// DefaultOddsProvider is the only odds provider supported
	DefaultOddsProvider = "THE_ODDS_API"
	DefaultOddsAPIBase  = "https://api.the-odds-api.com/v4"
	DefaultSportKey     = "soccer_epl"
	DefaultRegions      = "eu"
	DefaultMarkets      = "h2h,totals"
)

// Config is loaded once at startup and never modified afterwards
type Config struct {
	BaseURL   string    `mapstructure:"base_url" validate:"required,url"`
	Endpoints Endpoints `mapstructure:"endpoints"`
	ManagerID int64     `mapstructure:"manager_id" validate:"required,gt=0"`
	LeagueIDs []int64   `mapstructure:"league_ids" validate:"omitempty,dive,gt=0"`
	Odds      Odds      `mapstructure:"odds"`
	Extras    Extras    `mapstructure:"extras"`
}

// Endpoints are path templates appended to BaseURL.
// Entry contains {manager_id}, League contains {league_id}.
type Endpoints struct {
	BootstrapStatic string `mapstructure:"bootstrap_static" validate:"required"`
	Fixtures        string `mapstructure:"fixtures" validate:"required"`
	Entry           string `mapstructure:"entry" validate:"required"`
	League          string `mapstructure:"league" validate:"required"`
}

// Odds configures the betting odds provider
type Odds struct {
	Enabled  bool   `mapstructure:"enabled"`
	Provider string `mapstructure:"provider"`
	SportKey string `mapstructure:"sport_key"`
	Regions  string `mapstructure:"regions"`
	Markets  string `mapstructure:"markets"`

	// APIKey is read from EnvOddsAPIKey only. A key in the file is ignored.
	APIKey  string `mapstructure:"-"`
	APIBase string `mapstructure:"api_base"`
}

// Extras holds the remote sources of the optional feeds
type Extras struct {
	SetPiecesURL  string `mapstructure:"setpieces_url"`
	InjuriesURL   string `mapstructure:"injuries_url"`
	EliteFeedsURL string `mapstructure:"elite_feeds_url"`
}

// EnvOddsAPIKey is the only source of the odds API key
const EnvOddsAPIKey = "ODDS_API_KEY"

// envBindings maps configuration keys to the environment variables overriding them
var envBindings = map[string]string{
	"odds.api_base":          "ODDS_API_BASE",
	"odds.sport_key":         "ODDS_SPORT_KEY",
	"odds.regions":           "ODDS_REGIONS",
	"odds.markets":           "ODDS_MARKETS",
	"extras.setpieces_url":   "SETPIECES_URL",
	"extras.injuries_url":    "INJURIES_URL",
	"extras.elite_feeds_url": "ELITE_FEEDS_URL",
}

var validate = validator.New()

// Load reads the configuration document at path. The format follows the file
// extension (.json, .yaml, .yml). Environment variables win over the file,
// which wins over the built-in defaults.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, failure.New(ErrConfigNotFound,
			failure.Message("Configuration file not found"),
			failure.Context{
				"path":  path,
				"error": err.Error(),
			},
		)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("odds.enabled", false)
	v.SetDefault("odds.provider", DefaultOddsProvider)
	v.SetDefault("odds.api_base", DefaultOddsAPIBase)
	v.SetDefault("odds.sport_key", DefaultSportKey)
	v.SetDefault("odds.regions", DefaultRegions)
	v.SetDefault("odds.markets", DefaultMarkets)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, failure.Wrap(err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		msg := "Failed to parse configuration file"
		var unsupported viper.UnsupportedConfigError
		if errors.As(err, &unsupported) {
			msg = "Unsupported configuration file type"
		}
		return nil, failure.New(ErrConfigInvalid,
			failure.Message(msg),
			failure.Context{
				"path":  path,
				"error": err.Error(),
			},
		)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, failure.New(ErrConfigInvalid,
			failure.Message("Failed to decode configuration"),
			failure.Context{
				"path":  path,
				"error": err.Error(),
			},
		)
	}
	c.Odds.APIKey = oddsAPIKey()
	c.normalize()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// oddsAPIKey reads the key from the environment through a viper instance
// that has no config file, so secrets never come from config.json
func oddsAPIKey() string {
	env := viper.New()
	if err := env.BindEnv("api_key", EnvOddsAPIKey); err != nil {
		return ""
	}
	return env.GetString("api_key")
}

// normalize trims values that are compared or concatenated later
func (c *Config) normalize() {
	c.Odds.APIKey = strings.TrimSpace(c.Odds.APIKey)
	c.Extras.SetPiecesURL = strings.TrimSpace(c.Extras.SetPiecesURL)
	c.Extras.InjuriesURL = strings.TrimSpace(c.Extras.InjuriesURL)
	c.Extras.EliteFeedsURL = strings.TrimSpace(c.Extras.EliteFeedsURL)
}

// Validate checks the fields the collector cannot run without
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		field := ""
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field = verrs[0].Namespace()
		}
		return failure.New(ErrConfigInvalid,
			failure.Message("Invalid configuration: "+err.Error()),
			failure.Context{
				"field": field,
			},
		)
	}
	return nil
}
