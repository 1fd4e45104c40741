package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// cache keeps one parsed copy per config type
type cache struct {
	mu     sync.Mutex
	values map[reflect.Type]any
}

var (
	global = &cache{values: make(map[reflect.Type]any)}

	dotenvOnce sync.Once
)

// LoadEnv loads the given .env files into the process environment.
// Variables already set are kept, earlier files win over later ones.
// Without arguments it loads ./.env and ignores a missing file.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		dotenvOnce.Do(func() { _ = godotenv.Load() })
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Load parses the environment into a T using its env tags.
// The first successful result per type is cached and returned by later calls.
//
//	type Config struct {
//		DSN string `env:"DATABASE_URL,required"`
//	}
//
//	cfg, err := config.Load[Config]()
func Load[T any]() (T, error) {
	_ = LoadEnv()

	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrInvalidConfigType, typ)
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if cached, ok := global.values[typ]; ok {
		return cached.(T), nil
	}

	var v T
	if err := env.Parse(&v); err != nil {
		var zero T
		return zero, errors.Join(ErrParsingConfig, err)
	}
	global.values[typ] = v
	return v, nil
}

// MustLoad is Load for configuration the process cannot start without
func MustLoad[T any]() T {
	v, err := Load[T]()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return v
}

// Reload drops the cached T and parses the environment again
func Reload[T any]() (T, error) {
	global.mu.Lock()
	delete(global.values, reflect.TypeFor[T]())
	global.mu.Unlock()
	return Load[T]()
}

// Reset clears every cached config
func Reset() {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.values = make(map[reflect.Type]any)
}
