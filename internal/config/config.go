package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		APIURL string `yaml:"api_url"`
	} `yaml:"server"`
	Stream struct {
		AdminURL string `yaml:"admin_url"`
		QuizURL  string `yaml:"quiz_url"`
	} `yaml:"stream"`
	Quiz struct {
		Session          string `yaml:"session"`
		CountdownSeconds int    `yaml:"countdown_seconds"`
		ConfirmWindow    string `yaml:"confirm_window"`
		QuestionCount    int    `yaml:"question_count"`
	} `yaml:"quiz"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{}
	cfg.Server.APIURL = "http://localhost:8080"
	cfg.Stream.AdminURL = "ws://localhost:8080/stream/admin"
	cfg.Stream.QuizURL = "ws://localhost:8080/stream/quiz"
	cfg.Quiz.Session = "default"
	cfg.Quiz.CountdownSeconds = 10
	cfg.Quiz.ConfirmWindow = "2s"
	cfg.Quiz.QuestionCount = 10
	return cfg
}

// Load reads YAML config from path. An empty path yields Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Quiz.CountdownSeconds <= 0 {
		cfg.Quiz.CountdownSeconds = 10
	}
	if cfg.Quiz.QuestionCount <= 0 {
		cfg.Quiz.QuestionCount = 10
	}
	return cfg, nil
}

// DurationOr parses a duration string or returns the fallback if empty.
func DurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
