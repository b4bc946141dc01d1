package push

import (
	"context"
	"fmt"

	"github.com/newslens/alignment-notifier/internal/domain"
)

// Payload is the notification content delivered to a device.
// Title and Body are what the OS shows; Data rides along for the mobile
// client to deep-link into the source screen.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// NewAlignmentPayload builds the push payload for one queue record.
// Wording depends on whether the source had a prior label: a first-ever
// classification reads differently from a shift between labels.
func NewAlignmentPayload(n *domain.NotificationRecord) Payload {
	var body string
	if n.OldLabel != nil {
		body = fmt.Sprintf("%s moved from %s to %s. %s",
			n.SourceName, *n.OldLabel, n.NewLabel, n.ChangeReason)
	} else {
		body = fmt.Sprintf("%s has been classified as %s. %s",
			n.SourceName, n.NewLabel, n.ChangeReason)
	}

	return Payload{
		Title: fmt.Sprintf("%s alignment update", n.SourceName),
		Body:  body,
		Data: map[string]string{
			"type":      "alignment_change",
			"source_id": n.SourceID,
			"new_label": n.NewLabel,
		},
	}
}

// Provider abstracts push delivery to a single device.
// Mocking this interface in tests gives full control over transport
// behaviour without making real HTTP calls. Delivery is at-least-once:
// a retried record may push the same payload twice.
type Provider interface {
	Send(ctx context.Context, device domain.Device, payload Payload) error
}
