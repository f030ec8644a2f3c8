package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Listen struct {
	BindIp string `yaml:"bind_ip" env:"BIND_IP" env-default:"0.0.0.0"`
	Port   string `yaml:"port" env:"PORT" env-default:"8080"`
}

type TelegramConfig struct {
	ApiKey   string  `yaml:"api_key" env:"BOT_TOKEN" env-default:""`
	OwnerId  int64   `yaml:"owner_id" env:"OWNER_ID" env-default:"0"`
	AdminIds []int64 `yaml:"admin_ids" env:"ADMIN_IDS" env-separator:" "`
	PageSize int     `yaml:"page_size" env-default:"8"`
}

type MongoConfig struct {
	Enabled  bool   `yaml:"enabled" env:"MONGO_ENABLED" env-default:"true"`
	Host     string `yaml:"host" env:"MONGO_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"MONGO_PORT" env-default:"27017"`
	User     string `yaml:"user" env:"MONGO_USER" env-default:""`
	Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:""`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"linkvault"`
}

type LinksConfig struct {
	TTLMinutes           int `yaml:"ttl_minutes" env:"LINK_TTL_MINUTES" env-default:"5"`
	SweepIntervalMinutes int `yaml:"sweep_interval_minutes" env:"SWEEP_INTERVAL_MINUTES" env-default:"60"`
}

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Links    LinksConfig    `yaml:"links"`
	Listen   Listen         `yaml:"listen"`
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
}

var instance *Config
var once sync.Once

// MustLoad reads the config file once and exits the process on any problem.
// Serving without a bot token, owner or database would be pointless.
func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("config: %s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
		if err = validateRequired(instance); err != nil {
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}

func validateRequired(c *Config) error {
	if c.Telegram.ApiKey == "" {
		return fmt.Errorf("config: telegram.api_key is required")
	}
	if c.Telegram.OwnerId == 0 {
		return fmt.Errorf("config: telegram.owner_id is required")
	}
	if c.Mongo.Enabled && c.Mongo.Database == "" {
		return fmt.Errorf("config: mongo.database is required")
	}
	return nil
}
