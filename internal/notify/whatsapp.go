package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// WhatsAppSender delivers announcement text through the WhatsApp
// Cloud API (graph.facebook.com). Credentials come from
// WHATSAPP_ACCESS_TOKEN and WHATSAPP_PHONE_NUMBER_ID.
type WhatsAppSender struct {
	Client *http.Client
}

// NewWhatsAppSender builds a sender with a 30s HTTP timeout.
func NewWhatsAppSender() *WhatsAppSender {
	return &WhatsAppSender{Client: &http.Client{Timeout: 30 * time.Second}}
}

// Send posts a text message to the recipient's phone number. A
// recipient without a phone number is skipped, not an error.
func (s *WhatsAppSender) Send(ctx context.Context, to Recipient, msg Message) error {
	if to.Phone == "" {
		return nil
	}
	token := strings.TrimSpace(os.Getenv("WHATSAPP_ACCESS_TOKEN"))
	phoneID := strings.TrimSpace(os.Getenv("WHATSAPP_PHONE_NUMBER_ID"))
	if token == "" || phoneID == "" {
		return fmt.Errorf("WHATSAPP_ACCESS_TOKEN or WHATSAPP_PHONE_NUMBER_ID not set")
	}

	url := fmt.Sprintf("https://graph.facebook.com/v20.0/%s/messages", phoneID)
	reqBody := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to.Phone,
		"type":              "text",
		"text": map[string]any{
			"body": msg.Title + "\n\n" + msg.Body,
		},
	}
	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp api error: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
