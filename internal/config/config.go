package config

import (
	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	DB struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"db"`
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	LLM struct {
		Enabled bool   `mapstructure:"enabled"`
		APIBase string `mapstructure:"api_base"`
		APIKey  string `mapstructure:"api_key"`
		Model   string `mapstructure:"model"`
	} `mapstructure:"llm"`
	Upload struct {
		Dir     string `mapstructure:"dir"`
		MaxSize int64  `mapstructure:"max_size"`
	} `mapstructure:"upload"`
}

// LoadConfig loads the configuration from a file and the environment. An
// explicit path wins over the default search locations.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}
	viper.AutomaticEnv()

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.user", "postgres")
	viper.SetDefault("db.name", "sop_architect")
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("llm.api_base", "https://api.openai.com/v1")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("upload.dir", "uploads")
	viper.SetDefault("upload.max_size", 10*1024*1024)

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
