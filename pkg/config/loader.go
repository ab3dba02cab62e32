package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type cacheKey struct {
	typ    string
	prefix string
}

var (
	cacheMu sync.Mutex
	cache   = make(map[cacheKey]any)

	dotenvOnce sync.Once
)

// Option tweaks how a single Load call parses the environment.
type Option func(*env.Options)

// WithPrefix prepends prefix to every env tag of the target struct, so the
// same Config type can be loaded twice for two different components
// (for example "WS_" and "SSE_" hub settings).
func WithPrefix(prefix string) Option {
	return func(o *env.Options) { o.Prefix = prefix }
}

// Load fills v from the process environment. A .env file in the working
// directory is read once per process if present. Each (type, prefix) pair is
// parsed once; later calls receive a copy of the cached value.
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		// a missing .env file is not an error
		_ = godotenv.Load()
	})

	var o env.Options
	for _, opt := range opts {
		opt(&o)
	}
	key := cacheKey{typ: typeName[T](), prefix: o.Prefix}

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.ParseWithOptions(&parsed, o); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	cache[key] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics on failure. Meant for main().
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
