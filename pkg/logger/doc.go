// Package logger builds *slog.Logger instances for carenotify services.
//
// New applies functional options (format, level, static attributes, context
// extractors, environment presets) and wraps the resulting handler with
// LogHandlerDecorator so that request-scoped values such as the tenant id are
// attached to every record logged with a context.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "notifyd"),
//	    logger.WithContextExtractors(tenant.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
// Attribute helpers (Error, UserID, TenantID, Channel, NotificationID, ...)
// keep key names consistent across packages. Error returns an empty attribute
// for a nil error, so it can be passed unconditionally.
package logger
