package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/carenotify/pkg/notifications"
	"github.com/dmitrymomot/carenotify/pkg/pg"
)

// DB is the subset of *pgxpool.Pool the store uses. pgx.Tx satisfies it too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store is the PostgreSQL implementation of every notifications storage
// interface.
type Store struct {
	db  DB
	now func() time.Time
}

var (
	_ notifications.Store          = (*Store)(nil)
	_ notifications.SettingsStore  = (*Store)(nil)
	_ notifications.RecipientStore = (*Store)(nil)
	_ notifications.TemplateStore  = (*Store)(nil)
	_ notifications.DeliveryLog    = (*Store)(nil)
)

// New creates a store on top of db.
func New(db DB) *Store {
	return &Store{db: db, now: time.Now}
}

// insertNotification writes nothing unless the user is active in the tenant.
const insertNotification = `
INSERT INTO notifications (id, tenant_id, user_id, type, priority, title, message, data, created_at)
SELECT $1, u.tenant_id, u.id, $4, $5, $6, $7, $8, $9
FROM users u
WHERE u.tenant_id = $2 AND u.id = $3 AND u.active`

func (s *Store) CreateNotification(ctx context.Context, tenantID string, params notifications.CreateParams) (notifications.Notification, error) {
	if tenantID == "" {
		return notifications.Notification{}, notifications.ErrMissingTenant
	}
	if err := params.Validate(); err != nil {
		return notifications.Notification{}, err
	}
	if params.Priority == "" {
		params.Priority = notifications.PriorityMedium
	}

	n := notifications.Notification{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		UserID:    params.UserID,
		Type:      params.Type,
		Priority:  params.Priority,
		Title:     params.Title,
		Message:   params.Message,
		Data:      params.Data,
		CreatedAt: s.now().UTC(),
	}

	tag, err := s.db.Exec(ctx, insertNotification,
		n.ID, n.TenantID, n.UserID, n.Type, string(n.Priority), n.Title, n.Message, n.Data, n.CreatedAt)
	if err != nil {
		return notifications.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notifications.Notification{}, notifications.ErrRecipientNotFound
	}
	return n, nil
}

func (s *Store) ListActiveUsers(ctx context.Context, tenantID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM users WHERE tenant_id = $1 AND active ORDER BY id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	return ids, nil
}

const selectStats = `
SELECT count(*), count(*) FILTER (WHERE read_at IS NULL)
FROM notifications
WHERE tenant_id = $1 AND user_id = $2 AND deleted_at IS NULL AND archived_at IS NULL`

func (s *Store) Stats(ctx context.Context, tenantID, userID string) (notifications.Stats, error) {
	var st notifications.Stats
	if err := s.db.QueryRow(ctx, selectStats, tenantID, userID).Scan(&st.Total, &st.Unread); err != nil {
		return notifications.Stats{}, fmt.Errorf("notification stats: %w", err)
	}
	return st, nil
}

const selectSettings = `
SELECT tenant_id, user_id, notification_type, email_enabled, sms_enabled, push_enabled,
       in_app_enabled, quiet_hours_start, quiet_hours_end, digest_enabled, coalesce(digest_frequency, '')
FROM notification_settings
WHERE tenant_id = $1 AND user_id = $2 AND notification_type = $3`

func (s *Store) GetSettings(ctx context.Context, tenantID, userID, notifType string) (*notifications.Settings, error) {
	var st notifications.Settings
	err := s.db.QueryRow(ctx, selectSettings, tenantID, userID, notifType).Scan(
		&st.TenantID, &st.UserID, &st.NotificationType,
		&st.EmailEnabled, &st.SMSEnabled, &st.PushEnabled, &st.InAppEnabled,
		&st.QuietHoursStart, &st.QuietHoursEnd,
		&st.DigestEnabled, &st.DigestFrequency,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, notifications.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &st, nil
}

const upsertSettings = `
INSERT INTO notification_settings (tenant_id, user_id, notification_type, email_enabled, sms_enabled,
    push_enabled, in_app_enabled, quiet_hours_start, quiet_hours_end, digest_enabled, digest_frequency)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, nullif($11, ''))
ON CONFLICT (tenant_id, user_id, notification_type) DO UPDATE SET
    email_enabled = EXCLUDED.email_enabled,
    sms_enabled = EXCLUDED.sms_enabled,
    push_enabled = EXCLUDED.push_enabled,
    in_app_enabled = EXCLUDED.in_app_enabled,
    quiet_hours_start = EXCLUDED.quiet_hours_start,
    quiet_hours_end = EXCLUDED.quiet_hours_end,
    digest_enabled = EXCLUDED.digest_enabled,
    digest_frequency = EXCLUDED.digest_frequency`

// PutSettings creates or replaces the preferences of one user for one type.
func (s *Store) PutSettings(ctx context.Context, st notifications.Settings) error {
	if st.TenantID == "" {
		return notifications.ErrMissingTenant
	}
	if st.UserID == "" {
		return notifications.ErrMissingUser
	}
	if st.NotificationType == "" {
		return notifications.ErrMissingType
	}
	_, err := s.db.Exec(ctx, upsertSettings,
		st.TenantID, st.UserID, st.NotificationType,
		st.EmailEnabled, st.SMSEnabled, st.PushEnabled, st.InAppEnabled,
		st.QuietHoursStart, st.QuietHoursEnd, st.DigestEnabled, st.DigestFrequency,
	)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return fmt.Errorf("put settings: %w", notifications.ErrRecipientNotFound)
		}
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}

func (s *Store) GetEmail(ctx context.Context, tenantID, userID string) (string, error) {
	return s.contact(ctx, `SELECT coalesce(email, '') FROM users WHERE tenant_id = $1 AND id = $2`, tenantID, userID)
}

func (s *Store) GetPhone(ctx context.Context, tenantID, userID string) (string, error) {
	return s.contact(ctx, `SELECT coalesce(phone, '') FROM users WHERE tenant_id = $1 AND id = $2`, tenantID, userID)
}

func (s *Store) contact(ctx context.Context, query, tenantID, userID string) (string, error) {
	var v string
	if err := s.db.QueryRow(ctx, query, tenantID, userID).Scan(&v); err != nil {
		if pg.IsNotFoundError(err) {
			return "", notifications.ErrRecipientNotFound
		}
		return "", fmt.Errorf("get contact: %w", err)
	}
	return v, nil
}

const upsertUser = `
INSERT INTO users (id, tenant_id, email, phone, active)
VALUES ($1, $2, nullif($3, ''), nullif($4, ''), TRUE)
ON CONFLICT (tenant_id, id) DO UPDATE SET
    email = EXCLUDED.email,
    phone = EXCLUDED.phone,
    active = TRUE`

// UpsertUser registers an active user with optional contact details.
func (s *Store) UpsertUser(ctx context.Context, tenantID, userID, email, phone string) error {
	if tenantID == "" {
		return notifications.ErrMissingTenant
	}
	if userID == "" {
		return notifications.ErrMissingUser
	}
	if _, err := s.db.Exec(ctx, upsertUser, userID, tenantID, email, phone); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (s *Store) GetTemplate(ctx context.Context, notifType string) (*notifications.Template, error) {
	var t notifications.Template
	err := s.db.QueryRow(ctx,
		`SELECT type, subject_template, body_template, sms_template FROM notification_templates WHERE type = $1`,
		notifType,
	).Scan(&t.Type, &t.SubjectTemplate, &t.BodyTemplate, &t.SMSTemplate)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, notifications.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return &t, nil
}

const upsertTemplate = `
INSERT INTO notification_templates (type, subject_template, body_template, sms_template, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (type) DO UPDATE SET
    subject_template = EXCLUDED.subject_template,
    body_template = EXCLUDED.body_template,
    sms_template = EXCLUDED.sms_template,
    updated_at = now()`

// SeedTemplates upserts every template of set in one batch.
func (s *Store) SeedTemplates(ctx context.Context, set notifications.TemplateSet) error {
	if len(set) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for typ, t := range set {
		batch.Queue(upsertTemplate, typ, t.SubjectTemplate, t.BodyTemplate, t.SMSTemplate)
	}
	br := s.db.SendBatch(ctx, batch)
	defer br.Close()
	for range set {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("seed templates: %w", err)
		}
	}
	return nil
}

const insertAttempt = `
INSERT INTO notification_delivery_log (tenant_id, notification_id, channel, status, error, created_at)
VALUES ($1, $2, $3, $4, nullif($5, ''), $6)`

func (s *Store) LogAttempt(ctx context.Context, a notifications.Attempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	_, err := s.db.Exec(ctx, insertAttempt,
		a.TenantID, a.NotificationID, string(a.Channel), string(a.Status), a.Error, a.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("log delivery attempt: %w", err)
	}
	return nil
}

const selectAttempts = `
SELECT tenant_id, notification_id, channel, status, coalesce(error, ''), created_at
FROM notification_delivery_log
WHERE tenant_id = $1 AND notification_id = $2
ORDER BY id`

// Attempts returns the delivery log of one notification in write order.
func (s *Store) Attempts(ctx context.Context, tenantID, notificationID string) ([]notifications.Attempt, error) {
	rows, err := s.db.Query(ctx, selectAttempts, tenantID, notificationID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	attempts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (notifications.Attempt, error) {
		var a notifications.Attempt
		var ch, status string
		err := row.Scan(&a.TenantID, &a.NotificationID, &ch, &status, &a.Error, &a.CreatedAt)
		a.Channel = notifications.Channel(ch)
		a.Status = notifications.AttemptStatus(status)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}
