package config

import "errors"

var (
	// ErrParsingConfig is returned when the environment cannot be parsed into the config struct
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrInvalidConfigType is returned when the type parameter is not a struct
	ErrInvalidConfigType = errors.New("config type must be a struct")

	// ErrLoadingEnvFile is returned when an explicitly named .env file cannot be read
	ErrLoadingEnvFile = errors.New("failed to load env file")
)
