// Package mongo connects to MongoDB with mongo-driver/v2.
//
// New applies the pool settings from Config and pings the server, retrying
// with exponential backoff so a cold Atlas cluster does not fail startup.
// Healthcheck adapts the client to a readiness probe.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	archive := mongolog.New(db.Collection(mongolog.DefaultCollection))
package mongo
