package httpserver

import "errors"

const DEFAULT_MAX_REQUEST_MB = 32

type Config struct {
	Addr         string `koanf:"addr"`
	MaxRequestMB int64  `koanf:"max_request_mb"`
}

func (cfg *Config) Validate() error {
	if cfg.Addr == "" {
		return errors.New("no http addr configured")
	}
	if cfg.MaxRequestMB < 1 {
		return errors.New("'http.max_request_mb' should be >= 1")
	}
	return nil
}

func GetDefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:9043",
		MaxRequestMB: DEFAULT_MAX_REQUEST_MB,
	}
}
