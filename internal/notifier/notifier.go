// server/internal/notifier/notifier.go
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notifier posts outbound notifications to a webhook. It is a collaborator
// of the core, not part of it; failures are surfaced to the caller and never
// block a domain transaction.
type Notifier struct {
	WebhookURL string
	client     *http.Client
}

func New(webhookURL string) *Notifier {
	return &Notifier{
		WebhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) SendPasswordReset(ctx context.Context, email, token string) error {
	if n.WebhookURL == "" {
		return fmt.Errorf("password reset webhook URL is not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"event": "password_reset",
		"email": email,
		"token": token,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("password reset webhook returned status %d", resp.StatusCode)
	}
	return nil
}
