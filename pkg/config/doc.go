// Package config loads typed configuration from environment variables.
//
// Every package of the service declares its own Config struct with
// `env` / `envDefault` tags (github.com/caarlos0/env/v11). Load parses one
// such struct, after loading ./.env once via github.com/joho/godotenv, and
// caches the result per type:
//
//	emailCfg, err := config.Load[email.Config]()
//	queueCfg := config.MustLoad[queue.Config]()
//
// LoadEnv loads explicit .env files. Reload and Reset exist for tests that
// change the environment between loads.
package config
