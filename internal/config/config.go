package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	Telegram struct {
		Token       string
		AdminChatID int64   `mapstructure:"admin_chat_id"`
		NotifyChats []int64 `mapstructure:"notify_chats"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Storage struct {
		Driver string
	} `mapstructure:"storage"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	SQLite struct {
		Path string
	} `mapstructure:"sqlite"`

	Prices struct {
		Path string
	} `mapstructure:"prices"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`
}

// Recipients: админ-чат и дополнительные чаты для оповещений.
func (c Config) Recipients() []int64 {
	return append([]int64{c.Telegram.AdminChatID}, c.Telegram.NotifyChats...)
}

// Load читает yaml, поверх: переменные APP_* (APP_POSTGRES_DSN и т.п.).
// Необязательный .env рядом с процессом подгружается первым.
func Load(path string) (Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "prod")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("sqlite.path", "cashier.db")
	v.SetDefault("prices.path", "prices.yaml")

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	switch c.Storage.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return c, fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	return c, nil
}
