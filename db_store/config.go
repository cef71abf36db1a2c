package db_store

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type DBConfig struct {
	Addr     string `koanf:"addr"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Db       string `koanf:"db"`

	MaxPool int `koanf:"max_pool"`

	MigrationsPath string `koanf:"migrations_path"`
}

func (cfg *DBConfig) SetFromUri(uri *url.URL) error {
	if ui := uri.User; ui != nil {
		cfg.User = ui.Username()
		cfg.Password, _ = ui.Password()
	}
	cfg.Addr = uri.Host
	cfg.Db = strings.TrimLeft(uri.Path, "/")
	if cfg.Db == "" {
		return errors.New("no database name in uri path")
	}
	return nil
}

func (cfg *DBConfig) AsDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", cfg.User, cfg.Password, cfg.Addr, cfg.Db)
}

func (cfg *DBConfig) Validate() error {
	if cfg.Addr == "" {
		return errors.New("no db addr configured")
	}
	if cfg.Db == "" {
		return errors.New("no db name configured")
	}
	if cfg.MaxPool < 0 {
		return errors.New("db max_pool should be >= 0")
	}
	return nil
}
