package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBUsername string `yaml:"db_username"`
	DBPassword string `yaml:"db_password"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBName     string `yaml:"db_name"`
	DisableTLS bool   `yaml:"disable_tls"`

	RedisHost string `yaml:"redis_host"`
	RedisPort string `yaml:"redis_port"`

	ServerPort string `yaml:"server_port"`
	BaseUrl    string `yaml:"base_url"`

	PrivateKeyPath string `yaml:"private_key_path"`

	// Timezone is the school's local timezone. Every "today" and
	// "in the past" decision uses this calendar, never UTC.
	Timezone string `yaml:"timezone"`
}

func NewConfig(path string) (*Config, error) {
	var c Config

	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(yamlFile, &c)
	if err != nil {
		return nil, err
	}

	if c.DBUsername == "" || c.DBPassword == "" || c.DBHost == "" || c.DBName == "" {
		return nil, errors.New("missing required database configuration")
	}

	if c.ServerPort == "" {
		c.ServerPort = ":8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Jakarta"
	}
	if c.PrivateKeyPath == "" {
		c.PrivateKeyPath = "./private.pem"
	}

	return &c, nil
}

// Location resolves the configured timezone. Business logic receives the
// *time.Location explicitly instead of reading configuration ad hoc.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
