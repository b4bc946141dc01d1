package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/newslens/alignment-notifier/internal/domain"
)

// fcmMessage is the JSON body posted to the FCM legacy HTTP endpoint.
type fcmMessage struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// fcmResponse maps the fields of the FCM response we care about.
type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// FCMProvider delivers pushes through Firebase Cloud Messaging's HTTP API.
// The endpoint is injected from config so tests can point to a local mock.
type FCMProvider struct {
	endpoint   string
	serverKey  string
	httpClient *http.Client
}

func NewFCMProvider(endpoint, serverKey string, timeout time.Duration) *FCMProvider {
	return &FCMProvider{
		endpoint:  endpoint,
		serverKey: serverKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts the payload to FCM for one device token and expects a 200
// response reporting success for the message.
func (p *FCMProvider) Send(ctx context.Context, device domain.Device, payload Payload) error {
	body, err := json.Marshal(fcmMessage{
		To: device.FCMToken,
		Notification: fcmNotification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	})
	if err != nil {
		return fmt.Errorf("marshal fcm message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+p.serverKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected fcm status: %d", resp.StatusCode)
	}

	var fcmResp fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&fcmResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if fcmResp.Failure > 0 {
		return fmt.Errorf("fcm rejected message for token")
	}

	return nil
}

// compile-time check that FCMProvider implements Provider
var _ Provider = (*FCMProvider)(nil)
