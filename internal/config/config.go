package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string        `yaml:"log-level" env-default:"info"`
	HTTPPort   string        `yaml:"http-port" env-default:"9090"`
	SocketPort string        `yaml:"socket-port" env-default:"9091"`
	GameTTL    time.Duration `yaml:"game-ttl" env-default:"24h"`
	Redis      Redis         `yaml:"redis"`
	Defaults   GameDefaults  `yaml:"defaults"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// GameDefaults are used for In A Row games created without explicit settings.
type GameDefaults struct {
	Rows    int `yaml:"rows" env-default:"6"`
	Cols    int `yaml:"cols" env-default:"7"`
	Target  int `yaml:"target" env-default:"4"`
	Players int `yaml:"players" env-default:"2"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
