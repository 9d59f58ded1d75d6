package config

import (
	"github.com/spf13/viper"
)

// Config holds every runtime setting, read from the environment or a
// .env file.
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	ServerPort  string `mapstructure:"SERVER_PORT"`

	// Remote data service
	RemoteURL    string `mapstructure:"REMOTE_URL"`
	RemoteAPIKey string `mapstructure:"REMOTE_API_KEY"`

	// Auth service
	AuthURL string `mapstructure:"AUTH_URL"`

	// Federated sign-in
	GoogleClientID       string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	FacebookClientID     string `mapstructure:"FACEBOOK_CLIENT_ID"`
	FacebookClientSecret string `mapstructure:"FACEBOOK_CLIENT_SECRET"`
	OAuthRedirectURL     string `mapstructure:"OAUTH_REDIRECT_URL"`

	// Offline GET cache
	OfflineCachePath string `mapstructure:"OFFLINE_CACHE_PATH"`

	// Logging
	LogFile string `mapstructure:"LOG_FILE"`
}

// LoadConfig reads the configuration from a .env file in path, falling
// back to plain environment variables when the file is absent.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("OFFLINE_CACHE_PATH", "./offline.db")

	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
