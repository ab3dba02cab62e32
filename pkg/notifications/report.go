package notifications

import "time"

// AttemptStatus is the outcome recorded for one delivery attempt.
type AttemptStatus string

const (
	AttemptSent      AttemptStatus = "sent"
	AttemptDelivered AttemptStatus = "delivered"
	AttemptFailed    AttemptStatus = "failed"
	AttemptPending   AttemptStatus = "pending"
)

// Attempt is one delivery-log record.
type Attempt struct {
	TenantID       string        `json:"tenant_id"`
	NotificationID string        `json:"notification_id"`
	Channel        Channel       `json:"channel"`
	Status         AttemptStatus `json:"status"`
	Error          string        `json:"error,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// DeliveryResult is the outcome of one channel for one notification.
type DeliveryResult struct {
	Channel   Channel `json:"channel"`
	Success   bool    `json:"success"`
	MessageID string  `json:"message_id,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// Succeeded builds a successful result.
func Succeeded(ch Channel, messageID string) DeliveryResult {
	return DeliveryResult{Channel: ch, Success: true, MessageID: messageID}
}

// Failed builds a failed result carrying reason.
func Failed(ch Channel, reason string) DeliveryResult {
	return DeliveryResult{Channel: ch, Success: false, Error: reason}
}

// Summary counts the results of a report.
type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// DeliveryReport aggregates every channel attempted for one notification.
type DeliveryReport struct {
	NotificationID string           `json:"notification_id"`
	UserID         string           `json:"user_id"`
	Results        []DeliveryResult `json:"results"`
	Summary        Summary          `json:"summary"`
}

// NewDeliveryReport computes the summary from results, so the counts always
// match the list.
func NewDeliveryReport(n Notification, results []DeliveryResult) DeliveryReport {
	if results == nil {
		results = []DeliveryResult{}
	}
	summary := Summary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}
	return DeliveryReport{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Results:        results,
		Summary:        summary,
	}
}

// Result returns the result for ch, if that channel was attempted.
func (r DeliveryReport) Result(ch Channel) (DeliveryResult, bool) {
	for _, res := range r.Results {
		if res.Channel == ch {
			return res, true
		}
	}
	return DeliveryResult{}, false
}
