package service

import (
	"fmt"
	"os"
)

type Config struct {
	Environment string
	Port        string
	DBPath      string

	Moodle struct {
		URL     string
		Service string
	}
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8000"),
		DBPath:      getEnv("DB_PATH", "./db/campus.db"),
	}

	// Moodle
	config.Moodle.URL = getEnv("MOODLE_URL", "https://prueba.soluciones-hericraft.com")
	config.Moodle.Service = getEnv("MOODLE_SERVICE", "moodle_mobile_app")

	if config.Moodle.URL == "" {
		return nil, fmt.Errorf("MOODLE_URL must not be empty")
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
