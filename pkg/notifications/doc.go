// Package notifications defines the data model shared by the carenotify
// delivery pipeline: notifications, per-user channel settings, templates,
// delivery results and reports, and the collaborator interfaces the pipeline
// reads from (Store, SettingsStore, RecipientStore, TemplateStore,
// DeliveryLog).
//
// Persistence lives behind those interfaces. MemoryStore implements all of
// them for development and tests; subpackages provide PostgreSQL (pgstore),
// Redis-cached (rediscache) and MongoDB (mongolog) variants.
//
// Settings default to email, push and in-app on and SMS off when a user has
// stored nothing for a notification type:
//
//	settings, err := notifications.ResolveSettings(ctx, store, tenantID, userID, "lab_result")
//	if err != nil {
//	    log.WarnContext(ctx, "settings lookup failed, using defaults", logger.Error(err))
//	}
//
// Templates substitute {{key}} placeholders from Notification.Data:
//
//	notifications.Render("Hello {{name}}", map[string]any{"name": "Dr. Osei"})
package notifications
