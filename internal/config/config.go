// Package config loads server configuration from an optional YAML file overlaid with
// IDLE_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/xtding233/idle-venues/internal/logger"
)

// EnvPrefix prefixes every environment override, e.g. IDLE_TICK_INTERVAL=5s.
const EnvPrefix = "IDLE"

var ErrInvalidConfig = errors.New("invalid config")

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr" validate:"required"`
	GRPCAddr string `mapstructure:"grpc_addr"` // empty disables the health server
}

type CatalogConfig struct {
	Dir   string `mapstructure:"dir"` // empty uses the embedded catalog
	Watch bool   `mapstructure:"watch"`
}

type StoreConfig struct {
	Path   string `mapstructure:"path"` // empty keeps saves in memory
	SaveID string `mapstructure:"save_id" validate:"omitempty,uuid"`
}

type TickConfig struct {
	Interval  time.Duration `mapstructure:"interval" validate:"min=1s"`
	SaveEvery time.Duration `mapstructure:"save_every" validate:"min=1s"`
}

type EconomyConfig struct {
	StartingGems int64 `mapstructure:"starting_gems" validate:"min=0"`
}

type RNGConfig struct {
	Seed uint64 `mapstructure:"seed"` // 0 uses the crypto source
}

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Store   StoreConfig   `mapstructure:"store"`
	Tick    TickConfig    `mapstructure:"tick"`
	Log     logger.Config `mapstructure:"log"`
	Economy EconomyConfig `mapstructure:"economy"`
	RNG     RNGConfig     `mapstructure:"rng"`
}

var validate = validator.New()

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server:  ServerConfig{HTTPAddr: ":8080", GRPCAddr: ":9090"},
		Catalog: CatalogConfig{},
		Store:   StoreConfig{Path: "idle.db"},
		Tick:    TickConfig{Interval: time.Second, SaveEvery: 30 * time.Second},
		Log:     logger.Config{Level: "info", Format: logger.JSONFormat},
		Economy: EconomyConfig{StartingGems: 1000},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.http_addr", d.Server.HTTPAddr)
	v.SetDefault("server.grpc_addr", d.Server.GRPCAddr)
	v.SetDefault("catalog.dir", d.Catalog.Dir)
	v.SetDefault("catalog.watch", d.Catalog.Watch)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.save_id", d.Store.SaveID)
	v.SetDefault("tick.interval", d.Tick.Interval)
	v.SetDefault("tick.save_every", d.Tick.SaveEvery)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("economy.starting_gems", d.Economy.StartingGems)
	v.SetDefault("rng.seed", d.RNG.Seed)
}

// Load reads path (optional; "" skips the file), applies IDLE_* environment overrides
// and validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct tags and reports every failing field.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate config")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
		}
	}
	return errors.Wrapf(ErrInvalidConfig, "%s", strings.Join(msgs, "; "))
}
