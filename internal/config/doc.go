// Package config defines the application configuration structure and handles
// loading settings from environment variables and config files using viper.
// All configuration is validated with go-playground/validator before use so
// that misconfiguration fails fast at startup rather than at first use.
package config
