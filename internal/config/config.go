package config

import (
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	FQDN   string `yaml:"fqdn"`
	Server Server `yaml:"server"`
	SMTP   SMTP   `yaml:"smtp"`
	Ops    Ops    `yaml:"ops"`
}

type Server struct {
	Bind          string `yaml:"bind"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type SMTP struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type Ops struct {
	// Mailbox receives deletion feedback notifications.
	Mailbox string `yaml:"mailbox"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.Bind == "" {
		config.Server.Bind = ":8000"
	}

	return config, nil
}
