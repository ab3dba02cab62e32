package mongo

import (
	"errors"
	"time"
)

// DefaultRetryInterval is used when Config.RetryInterval is not set.
const DefaultRetryInterval = 2 * time.Second

var (
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrEmptyConnectionURL     = errors.New("empty mongo connection URL")
	ErrHealthcheckFailed      = errors.New("mongo healthcheck failed")
)
