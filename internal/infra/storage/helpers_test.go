package storage

import "github.com/bryanwahyu/safeweb/internal/config"

func configWithBackend(name string) *config.Config {
	cfg := config.Default()
	cfg.History.Backend = name
	return cfg
}
