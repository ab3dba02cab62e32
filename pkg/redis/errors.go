package redis

import (
	"errors"
	"time"
)

// DefaultRetryInterval is used when Config.RetryInterval is not set.
const DefaultRetryInterval = 2 * time.Second

var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
	ErrCacheMiss                    = errors.New("redis: cache miss")
)
