package notifications

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type settingsKey struct {
	tenantID, userID, notifType string
}

type userKey struct {
	tenantID, userID string
}

type contact struct {
	email, phone string
}

// MemoryStore is an in-memory implementation of every collaborator interface
// in this package. Suitable for development and testing.
type MemoryStore struct {
	mu            sync.RWMutex
	notifications map[string][]Notification // tenantID -> notifications
	users         map[string][]string       // tenantID -> active user ids
	settings      map[settingsKey]Settings
	contacts      map[userKey]contact
	templates     TemplateSet
	attempts      []Attempt
	now           func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notifications: make(map[string][]Notification),
		users:         make(map[string][]string),
		settings:      make(map[settingsKey]Settings),
		contacts:      make(map[userKey]contact),
		templates:     make(TemplateSet),
		now:           time.Now,
	}
}

// AddUser registers an active user of a tenant with optional contacts.
func (s *MemoryStore) AddUser(tenantID, userID, email, phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.users[tenantID], userID) {
		s.users[tenantID] = append(s.users[tenantID], userID)
	}
	s.contacts[userKey{tenantID, userID}] = contact{email: email, phone: phone}
}

// PutSettings stores preferences for (tenant, user, type).
func (s *MemoryStore) PutSettings(st Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[settingsKey{st.TenantID, st.UserID, st.NotificationType}] = st
}

// PutTemplate stores a template for its type.
func (s *MemoryStore) PutTemplate(t Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[t.Type] = t
}

// Attempts returns a copy of every logged attempt.
func (s *MemoryStore) Attempts() []Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.attempts)
}

// Notifications returns a copy of the tenant's notifications.
func (s *MemoryStore) Notifications(tenantID string) []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notifications[tenantID])
}

func (s *MemoryStore) CreateNotification(_ context.Context, tenantID string, params CreateParams) (Notification, error) {
	if tenantID == "" {
		return Notification{}, ErrMissingTenant
	}
	if err := params.Validate(); err != nil {
		return Notification{}, err
	}
	if params.Priority == "" {
		params.Priority = PriorityMedium
	}

	n := Notification{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		UserID:    params.UserID,
		Type:      params.Type,
		Priority:  params.Priority,
		Title:     params.Title,
		Message:   params.Message,
		Data:      params.Data,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.users[tenantID], params.UserID) {
		return Notification{}, ErrRecipientNotFound
	}
	s.notifications[tenantID] = append(s.notifications[tenantID], n)
	return n, nil
}

func (s *MemoryStore) ListActiveUsers(_ context.Context, tenantID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users[tenantID]), nil
}

func (s *MemoryStore) Stats(_ context.Context, tenantID, userID string) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	for _, n := range s.notifications[tenantID] {
		if n.UserID != userID || n.DeletedAt != nil || n.ArchivedAt != nil {
			continue
		}
		st.Total++
		if !n.IsRead() {
			st.Unread++
		}
	}
	return st, nil
}

func (s *MemoryStore) GetSettings(_ context.Context, tenantID, userID, notifType string) (*Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.settings[settingsKey{tenantID, userID, notifType}]
	if !ok {
		return nil, ErrSettingsNotFound
	}
	return &st, nil
}

func (s *MemoryStore) GetEmail(_ context.Context, tenantID, userID string) (string, error) {
	c, err := s.contact(tenantID, userID)
	return c.email, err
}

func (s *MemoryStore) GetPhone(_ context.Context, tenantID, userID string) (string, error) {
	c, err := s.contact(tenantID, userID)
	return c.phone, err
}

func (s *MemoryStore) contact(tenantID, userID string) (contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[userKey{tenantID, userID}]
	if !ok {
		return contact{}, ErrRecipientNotFound
	}
	return c, nil
}

func (s *MemoryStore) GetTemplate(ctx context.Context, notifType string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.templates.GetTemplate(ctx, notifType)
}

func (s *MemoryStore) LogAttempt(_ context.Context, attempt Attempt) error {
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = s.now()
	}
	s.mu.Lock()
	s.attempts = append(s.attempts, attempt)
	s.mu.Unlock()
	return nil
}
