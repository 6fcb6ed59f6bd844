// Package config provides configuration loading and validation for
// guardkit applications.
//
// It uses Viper to load configuration from YAML files and environment
// variables, with optional .env files loaded through godotenv. Struct
// validation uses go-playground/validator tags.
//
// # Usage
//
//	var cfg guard.Config
//	if err := config.Load("payments", &cfg); err != nil {
//	    return err
//	}
//	if err := config.Validate(&cfg); err != nil {
//	    return err
//	}
//
// Environment variables override file values using underscore-separated
// paths (e.g., BREAKER_MAX_FAILURE_COUNT for breaker.max_failure_count).
package config
