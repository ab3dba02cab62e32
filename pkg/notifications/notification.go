package notifications

import (
	"fmt"
	"strings"
	"time"
)

// Priority is the urgency of a notification. Values are ordered:
// low < medium < high < critical.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var priorityRank = map[Priority]int{
	PriorityLow:      0,
	PriorityMedium:   1,
	PriorityHigh:     2,
	PriorityCritical: 3,
}

// Rank returns the ordinal position of the priority, or -1 if unknown.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return -1
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool { return p.Rank() >= 0 }

// IsCritical reports whether notifications of this priority bypass quiet hours.
func (p Priority) IsCritical() bool { return p == PriorityCritical }

// ParsePriority converts a case-insensitive name into a Priority.
// An empty string yields PriorityMedium.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

// Notification is a message addressed to one user of one tenant.
// It is treated as an immutable value by the delivery pipeline.
type Notification struct {
	ID         string         `json:"id"`
	TenantID   string         `json:"tenant_id"`
	UserID     string         `json:"user_id"`
	Type       string         `json:"type"`
	Priority   Priority       `json:"priority"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Data       map[string]any `json:"data,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	ReadAt     *time.Time     `json:"read_at,omitempty"`
	ArchivedAt *time.Time     `json:"archived_at,omitempty"`
	DeletedAt  *time.Time     `json:"deleted_at,omitempty"`
}

// IsRead reports whether the notification was marked as read.
func (n Notification) IsRead() bool { return n.ReadAt != nil }

// CreateParams carries the caller-provided fields of a new notification.
// Identity, tenant and timestamps are assigned by the Store.
type CreateParams struct {
	UserID   string         `json:"user_id"`
	Type     string         `json:"type"`
	Priority Priority       `json:"priority"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
}

// Validate checks the fields required to create a notification.
func (p CreateParams) Validate() error {
	if p.UserID == "" {
		return ErrMissingUser
	}
	if p.Type == "" {
		return ErrMissingType
	}
	if p.Priority != "" && !p.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, p.Priority)
	}
	return nil
}

// Stats are the aggregate counters a client shows on its notification badge.
type Stats struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
}
