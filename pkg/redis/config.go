package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"` // ConnectionURL is the URL of the database. It should be in the format "redis://:password@localhost:6379/0"
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`                      // RetryAttempts is the number of connection attempts before giving up.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`                     // RetryInterval is the wait before the second attempt; later waits double.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`                   // ConnectTimeout bounds the whole connection sequence.
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"carenotify"`                 // KeyPrefix namespaces every cache key.
	CacheTTL       time.Duration `env:"REDIS_CACHE_TTL" envDefault:"5m"`                          // CacheTTL is the lifetime of cached lookups.
}
