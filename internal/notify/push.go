package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// PushSender forwards announcements to an external push-notification
// gateway as a JSON POST. The gateway URL comes from PUSH_WEBHOOK_URL;
// with none configured the sender is a no-op so deployments without a
// push provider still broadcast over the other channels.
type PushSender struct {
	Client *http.Client
}

func NewPushSender() *PushSender {
	return &PushSender{Client: &http.Client{Timeout: 15 * time.Second}}
}

// Send posts {user_id, title, body} to the configured gateway.
func (s *PushSender) Send(ctx context.Context, to Recipient, msg Message) error {
	url := os.Getenv("PUSH_WEBHOOK_URL")
	if url == "" {
		return nil
	}
	payload := map[string]any{
		"user_id": to.UserID,
		"title":   msg.Title,
		"body":    msg.Body,
	}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if key := os.Getenv("PUSH_API_KEY"); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("push gateway error: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
