package agent

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

var ErrConfigPathIsEmpty = errors.New("config path is empty")

type AppConfig struct {
	Region       string        `yaml:"region" env-default:"eu-central"`
	ProbeTimeout time.Duration `yaml:"probe_timeout" env-default:"10s"`

	HTTPServer struct {
		Host string `yaml:"host" env-default:"0.0.0.0"`
		Port uint16 `yaml:"port" env-default:"8090"`

		Timeout struct {
			Read  time.Duration `yaml:"read" env-default:"15s"`
			Write time.Duration `yaml:"write" env-default:"15s"`
			Idle  time.Duration `yaml:"idle" env-default:"60s"`
		} `yaml:"timeout"`
	} `yaml:"http_server"`

	Log struct {
		Level      string `yaml:"level" env-default:"info"`
		FormatJSON bool   `yaml:"format_json"`
	} `yaml:"log"`
}

func MustLoadConfig() *AppConfig {
	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}

	return cfg
}

func LoadConfig() (*AppConfig, error) {
	path := fetchConfigPath()
	if path == "" {
		return nil, ErrConfigPathIsEmpty
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var config AppConfig

	if err := cleanenv.ReadConfig(path, &config); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return &config, nil
}

func fetchConfigPath() string {
	var result string

	flag.StringVar(&result, "config", "", "Path to config file")
	flag.Parse()

	if result == "" {
		result = os.Getenv("AGENT_CONFIG_PATH")
	}

	return result
}
