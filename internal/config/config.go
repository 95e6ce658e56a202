// Package config loads application configuration from a YAML file, a .env
// file, and environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      App      `mapstructure:"app"`
	AI       AI       `mapstructure:"ai"`
	Lookup   Lookup   `mapstructure:"lookup"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// Lookup holds the external fragrance source configuration
type Lookup struct {
	RapidAPI RapidAPIConfig `mapstructure:"rapidapi"`
	Scrape   ScrapeConfig   `mapstructure:"scrape"`
}

// RapidAPIConfig holds FragranceFinder/RapidAPI configuration
type RapidAPIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Host   string `mapstructure:"host"`
}

// ScrapeConfig holds the encyclopedia scraper configuration
type ScrapeConfig struct {
	SearchURL string `mapstructure:"search_url"`
	Delay     string `mapstructure:"delay"`
}

// Server holds HTTP server configuration
type Server struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Database holds SQLite configuration
type Database struct {
	Directory string `mapstructure:"directory"`
	Timeout   string `mapstructure:"timeout"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".scentlab")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".scentlab")

	// AI defaults
	viper.SetDefault("ai.gemini.model", "gemini-1.5-flash")
	viper.SetDefault("ai.gemini.timeout", "30s")

	// Lookup defaults
	viper.SetDefault("lookup.rapidapi.host", "fragrancefinder-api.p.rapidapi.com")
	viper.SetDefault("lookup.scrape.search_url", "https://www.fragrantica.com/search/")
	viper.SetDefault("lookup.scrape.delay", "1s")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.cors_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	// Database defaults
	viper.SetDefault("database.directory", ".scentlab")
	viper.SetDefault("database.timeout", "5s")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("lookup.rapidapi.api_key", []string{
		"RAPIDAPI_KEY",
		"RAPID_API_KEY",
		"FRAGRANCEFINDER_API_KEY",
	})

	bindEnvKeys("server.port", []string{
		"PORT",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"SCENTLAB_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	if config.Database.Directory != "" {
		config.Database.Directory = expandPath(config.Database.Directory)
	}

	durations := map[string]string{
		"ai.gemini.timeout":   config.AI.Gemini.Timeout,
		"lookup.scrape.delay": config.Lookup.Scrape.Delay,
		"database.timeout":    config.Database.Timeout,
	}
	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures the configuration is usable. The API keys are
// optional: without them the lookup chain simply skips its API sources and
// recommendations are unavailable.
func validateConfig(config *Config) error {
	var errors []string

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid server port: %d", config.Server.Port))
	}

	if key := config.Lookup.RapidAPI.APIKey; key != "" && !isValidAPIKey(key) {
		errors = append(errors, "RapidAPI key looks like a placeholder. Set RAPIDAPI_KEY to a real key or remove it")
	}
	if key := config.AI.Gemini.APIKey; key != "" && !isValidAPIKey(key) {
		errors = append(errors, "Gemini API key looks like a placeholder. Set GEMINI_API_KEY to a real key or remove it")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	placeholders := []string{
		"your-api-key", "your-rapidapi-key", "your-gemini-key",
		"YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}
	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Convenience getters for commonly used configuration values
func GetApp() App           { return Get().App }
func GetAI() AI             { return Get().AI }
func GetLookup() Lookup     { return Get().Lookup }
func GetServer() Server     { return Get().Server }
func GetDatabase() Database { return Get().Database }

// Specific convenience getters for frequently accessed values
func GetGeminiAPIKey() string   { return Get().AI.Gemini.APIKey }
func GetGeminiModel() string    { return Get().AI.Gemini.Model }
func GetRapidAPIKey() string    { return Get().Lookup.RapidAPI.APIKey }
func GetRapidAPIHost() string   { return Get().Lookup.RapidAPI.Host }
func GetDataDirectory() string  { return Get().Database.Directory }
func IsDebugMode() bool         { return Get().App.Debug }

// HasRapidAPI reports whether the FragranceFinder API sources can run.
func HasRapidAPI() bool {
	return isValidAPIKey(GetRapidAPIKey())
}

// HasGemini reports whether AI recommendations can run.
func HasGemini() bool {
	return isValidAPIKey(GetGeminiAPIKey())
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
