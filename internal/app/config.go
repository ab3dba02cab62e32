package app

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/carenotify/pkg/config"
	"github.com/dmitrymomot/carenotify/pkg/delivery"
	"github.com/dmitrymomot/carenotify/pkg/email"
	"github.com/dmitrymomot/carenotify/pkg/httpserver"
	"github.com/dmitrymomot/carenotify/pkg/jwt"
	"github.com/dmitrymomot/carenotify/pkg/mongo"
	"github.com/dmitrymomot/carenotify/pkg/pg"
	"github.com/dmitrymomot/carenotify/pkg/ratelimiter"
	"github.com/dmitrymomot/carenotify/pkg/redis"
	"github.com/dmitrymomot/carenotify/pkg/sms"
	"github.com/dmitrymomot/carenotify/pkg/sse"
	"github.com/dmitrymomot/carenotify/pkg/websocket"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

var ErrUnknownStorage = errors.New("unknown storage driver")

// Config selects the backends of the service.
type Config struct {
	Name           string `env:"APP_NAME" envDefault:"carenotify"`
	Env            string `env:"APP_ENV" envDefault:"development"`
	Storage        string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	AutoMigrate    bool   `env:"PG_AUTO_MIGRATE" envDefault:"false"`
	CacheEnabled   bool   `env:"CACHE_ENABLED" envDefault:"false"`
	ArchiveEnabled bool   `env:"ARCHIVE_ENABLED" envDefault:"false"`
	TemplatesFile  string `env:"TEMPLATES_FILE"`
}

// Settings is every configuration block the service reads. Backend blocks
// are zero when their backend is off.
type Settings struct {
	App      Config
	HTTP     httpserver.Config
	JWT      jwt.Config
	Email    email.Config
	SMS      sms.Config
	WS       websocket.Config
	SSE      sse.Config
	Delivery delivery.Config
	PG       pg.Config
	Redis    redis.Config
	Mongo    mongo.Config

	// DispatchLimit bounds /v1 calls per tenant, ConnectLimit bounds
	// realtime connects per client address.
	DispatchLimit ratelimiter.Config
	ConnectLimit  ratelimiter.Config
}

// LoadSettings reads Settings from the environment, skipping the blocks of
// disabled backends so their required variables may stay unset.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := config.Load(&s.App); err != nil {
		return s, err
	}
	loads := []func() error{
		func() error { return config.Load(&s.HTTP) },
		func() error { return config.Load(&s.JWT) },
		func() error { return config.Load(&s.Email) },
		func() error { return config.Load(&s.SMS) },
		func() error { return config.Load(&s.WS) },
		func() error { return config.Load(&s.SSE) },
		func() error { return config.Load(&s.Delivery) },
		func() error { return config.Load(&s.DispatchLimit, config.WithPrefix("RATE_LIMIT_DISPATCH_")) },
		func() error { return config.Load(&s.ConnectLimit, config.WithPrefix("RATE_LIMIT_CONNECT_")) },
	}
	switch s.App.Storage {
	case StoragePostgres:
		loads = append(loads, func() error { return config.Load(&s.PG) })
	case StorageMemory:
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownStorage, s.App.Storage)
	}
	if s.App.CacheEnabled {
		loads = append(loads, func() error { return config.Load(&s.Redis) })
	}
	if s.App.ArchiveEnabled {
		loads = append(loads, func() error { return config.Load(&s.Mongo) })
	}
	for _, load := range loads {
		if err := load(); err != nil {
			return s, err
		}
	}
	return s, nil
}
