// Package mongolog archives delivery attempts in a MongoDB collection.
package mongolog

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/carenotify/pkg/notifications"
)

// DefaultCollection is the collection the service writes to.
const DefaultCollection = "delivery_attempts"

// Collection is the subset of *mongo.Collection the log uses.
type Collection interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error)
}

// Log implements notifications.DeliveryLog.
type Log struct {
	coll Collection
	now  func() time.Time
}

var _ notifications.DeliveryLog = (*Log)(nil)

// New creates a log writing to coll.
func New(coll Collection) *Log {
	return &Log{coll: coll, now: time.Now}
}

type attemptDoc struct {
	TenantID       string    `bson:"tenant_id"`
	NotificationID string    `bson:"notification_id"`
	Channel        string    `bson:"channel"`
	Status         string    `bson:"status"`
	Error          string    `bson:"error,omitempty"`
	CreatedAt      time.Time `bson:"created_at"`
}

func (l *Log) LogAttempt(ctx context.Context, a notifications.Attempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = l.now()
	}
	_, err := l.coll.InsertOne(ctx, attemptDoc{
		TenantID:       a.TenantID,
		NotificationID: a.NotificationID,
		Channel:        string(a.Channel),
		Status:         string(a.Status),
		Error:          a.Error,
		CreatedAt:      a.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("archive delivery attempt: %w", err)
	}
	return nil
}

// CountAttempts returns how many attempts were archived for a notification,
// optionally narrowed to one status.
func (l *Log) CountAttempts(ctx context.Context, tenantID, notificationID string, status notifications.AttemptStatus) (int64, error) {
	filter := bson.D{
		{Key: "tenant_id", Value: tenantID},
		{Key: "notification_id", Value: notificationID},
	}
	if status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(status)})
	}
	n, err := l.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count delivery attempts: %w", err)
	}
	return n, nil
}

// EnsureIndexes creates the lookup index used by CountAttempts.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "tenant_id", Value: 1},
			{Key: "notification_id", Value: 1},
			{Key: "created_at", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("create delivery attempt index: %w", err)
	}
	return nil
}
