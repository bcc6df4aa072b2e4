package config

import (
	"errors"
	"os"
)

// RelayConfig is everything cmd/relay needs; it never talks to the
// scheduling API.
type RelayConfig struct {
	DatabaseURL     string
	RabbitMQURL     string
	ChangeQueueName string
	HealthPort      string
}

func LoadRelayConfig() *RelayConfig {
	loadDotEnv()
	cfg, err := loadRelayConfig(os.Getenv)
	if err != nil {
		panic("Failed to load relay configuration: " + err.Error())
	}
	return cfg
}

func loadRelayConfig(getenv func(string) string) (*RelayConfig, error) {
	cfg := &RelayConfig{
		DatabaseURL:     getenv("DB_CONNECTION_STRING"),
		RabbitMQURL:     getenv("RABBITMQ_URL"),
		ChangeQueueName: getenv("CHANGE_QUEUE_NAME"),
		HealthPort:      getenv("HEALTH_PORT"),
	}

	var errs []error
	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DB_CONNECTION_STRING is required"))
	}
	if cfg.RabbitMQURL == "" {
		errs = append(errs, errors.New("RABBITMQ_URL is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if cfg.ChangeQueueName == "" {
		cfg.ChangeQueueName = "dashboard-changes"
	}
	if cfg.HealthPort == "" {
		cfg.HealthPort = "8090"
	}
	return cfg, nil
}
