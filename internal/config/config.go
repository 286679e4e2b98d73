// Package config provides application configuration loading from environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Slack    SlackConfig
	Export   ExportConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host        string
	Port        string
	BaseURL     string
	CORSOrigins []string
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level       string
	Development bool
}

// SlackConfig enables Slack notifications when both fields are set.
type SlackConfig struct {
	BotToken  string
	ChannelID string
}

// Enabled reports whether Slack notifications are configured.
func (c SlackConfig) Enabled() bool {
	return c.BotToken != "" && c.ChannelID != ""
}

// ExportConfig enables Google Sheets export when a credentials file is set.
type ExportConfig struct {
	GoogleCredentialsFile string
}

// Enabled reports whether spreadsheet export is configured.
func (c ExportConfig) Enabled() bool {
	return c.GoogleCredentialsFile != ""
}

var requiredKeys = []string{
	"SERVER_PORT",
	"DB_HOST",
	"DB_PORT",
	"DB_USER",
	"DB_PASSWORD",
	"DB_NAME",
}

// Load reads configuration from a .env file (if present) and environment variables.
// Returns error if required variables are not set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEV", false)
	v.SetDefault("CORS_ORIGINS", "*")

	for _, key := range requiredKeys {
		if _, err := getRequired(v, key); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        v.GetString("SERVER_HOST"),
			Port:        v.GetString("SERVER_PORT"),
			BaseURL:     strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),
			CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Log: LogConfig{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEV"),
		},
		Slack: SlackConfig{
			BotToken:  v.GetString("SLACK_BOT_TOKEN"),
			ChannelID: v.GetString("SLACK_CHANNEL_ID"),
		},
		Export: ExportConfig{
			GoogleCredentialsFile: v.GetString("GOOGLE_CREDENTIALS_FILE"),
		},
	}

	return cfg, nil
}

// DSN returns PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr returns the listen address of the HTTP server.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// getRequired reads required variable or returns error.
func getRequired(v *viper.Viper, key string) (string, error) {
	value := v.GetString(key)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return value, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
