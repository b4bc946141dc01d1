package domain

import "time"

// Status tracks the delivery lifecycle of a queued notification.
// Every record starts pending; only the dispatcher moves it to sent or
// failed, and only the retry sweep moves failed back to pending.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// NotificationRecord is one queued alignment-change notification for one
// recipient. SourceName and the labels are snapshots taken at enqueue time,
// so the record keeps describing the event as it happened even if the
// source is later renamed or re-scored.
type NotificationRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	SourceID     string    `json:"source_id"`
	SourceName   string    `json:"source_name"`
	OldScore     int       `json:"old_score"`
	NewScore     int       `json:"new_score"`
	OldLabel     *string   `json:"old_label,omitempty"`
	NewLabel     string    `json:"new_label"`
	ChangeReason string    `json:"change_reason"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DeliveryEntry is the audit row written after a successful push fan-out,
// immediately before the record is marked sent.
type DeliveryEntry struct {
	ID             string    `json:"id"`
	NotificationID string    `json:"notification_id"`
	UserID         string    `json:"user_id"`
	DeviceCount    int       `json:"device_count"`
	DeliveredAt    time.Time `json:"delivered_at"`
}

// Follower is a user following a news source. Read-only external fact.
type Follower struct {
	UserID string `json:"user_id"`
}

// NotificationPreference is a user's explicit opt-in/opt-out row.
// Users without a row are treated as opted in (default-enabled).
type NotificationPreference struct {
	UserID           string `json:"user_id"`
	AlignmentChanges bool   `json:"notif_alignment_changes"`
}

// Device is a registered push destination for a user.
type Device struct {
	FCMToken   string `json:"fcm_token"`
	DeviceType string `json:"device_type"`
}

// DispatchResult summarises one dispatcher batch.
type DispatchResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// QueueCounts is the monitoring snapshot of queue depth by status.
type QueueCounts struct {
	Pending int `json:"pending"`
	Failed  int `json:"failed"`
}
