package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML config file layout. All fields are optional;
// set fields override environment values.
type fileConfig struct {
	Server struct {
		Port        *int     `yaml:"port"`
		Bind        *string  `yaml:"bind"`
		Debug       *bool    `yaml:"debug"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Database struct {
		Path *string `yaml:"path"`
	} `yaml:"database"`
	Queue struct {
		URL     *string `yaml:"url"`
		Workers *int    `yaml:"workers"`
	} `yaml:"queue"`
	LLM struct {
		Challenge providerFile `yaml:"challenge"`
		Review    providerFile `yaml:"review"`
	} `yaml:"llm"`
	Auth struct {
		SessionMaxAge *int `yaml:"session_max_age"`
	} `yaml:"auth"`
}

type providerFile struct {
	Provider *string `yaml:"provider"`
	APIKey   *string `yaml:"api_key"`
	Model    *string `yaml:"model"`
}

// applyFile overlays settings from a YAML file onto the config.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.Server.Port != nil {
		c.Port = *fc.Server.Port
	}
	if fc.Server.Bind != nil {
		c.Bind = *fc.Server.Bind
	}
	if fc.Server.Debug != nil {
		c.Debug = *fc.Server.Debug
	}
	if len(fc.Server.CORSOrigins) > 0 {
		c.CORSOrigins = fc.Server.CORSOrigins
	}
	if fc.Database.Path != nil {
		c.DBPath = *fc.Database.Path
	}
	if fc.Queue.URL != nil {
		c.QueueURL = *fc.Queue.URL
	}
	if fc.Queue.Workers != nil {
		c.QueueWorkers = *fc.Queue.Workers
	}
	if fc.LLM.Challenge.Provider != nil {
		c.ChallengeProvider = *fc.LLM.Challenge.Provider
	}
	if fc.LLM.Challenge.APIKey != nil {
		c.ChallengeAPIKey = *fc.LLM.Challenge.APIKey
	}
	if fc.LLM.Challenge.Model != nil {
		c.ChallengeModel = *fc.LLM.Challenge.Model
	}
	if fc.LLM.Review.Provider != nil {
		c.ReviewProvider = *fc.LLM.Review.Provider
	}
	if fc.LLM.Review.APIKey != nil {
		c.ReviewAPIKey = *fc.LLM.Review.APIKey
	}
	if fc.LLM.Review.Model != nil {
		c.ReviewModel = *fc.LLM.Review.Model
	}
	if fc.Auth.SessionMaxAge != nil {
		c.SessionMaxAge = *fc.Auth.SessionMaxAge
	}

	return nil
}
