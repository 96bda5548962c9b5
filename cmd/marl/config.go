package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/marl"
)

// Config selects the backing store for the CLI.
type Config struct {
	Endpoint      string `yaml:"endpoint"`
	MongoDatabase string `yaml:"mongoDatabase"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
}

func loadConfig(path string) (Config, error) {
	cfg := Config{Endpoint: "memory://"}
	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "memory://"
	}
	return cfg, nil
}

// openSession connects the store selected by flags and config file.
func openSession(ctx context.Context) (*marl.Session, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}

	opts := []marl.Option{marl.WithLogger(slog.Default())}
	if cfg.MongoDatabase != "" {
		opts = append(opts, marl.WithMongoDatabase(cfg.MongoDatabase))
	}
	if cfg.RedisPassword != "" {
		opts = append(opts, marl.WithRedisPassword(cfg.RedisPassword))
	}
	if cfg.RedisDB != 0 {
		opts = append(opts, marl.WithRedisDB(cfg.RedisDB))
	}

	return marl.Connect(ctx, cfg.Endpoint, opts...)
}
