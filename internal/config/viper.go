package config

import (
	"os"

	"github.com/spf13/viper"
)

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	// If Viper doesn't have it but OS does, return OS value
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// Secret resolves a credential declared indirectly as an environment
// variable name. An empty variable name means the source needs no
// credential; ok=false means the variable was named but is unset.
func Secret(envName string) (string, bool) {
	if envName == "" {
		return "", true
	}
	value := GetString(envName)
	return value, value != ""
}
