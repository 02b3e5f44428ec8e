package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	mail "github.com/go-mail/mail/v2"
)

// NotifyTimeout bounds every notification attempt. A slow or dead notifier
// must never hold up a training run.
const NotifyTimeout = 5 * time.Second

// Notifier signals interested parties that a training run finished. All
// implementations are best-effort: callers log the returned error and move on.
type Notifier interface {
	NotifyTrainingComplete(ctx context.Context, runID string, updated int) error
}

// WebhookNotifier POSTs a small JSON payload to the notification endpoint
// (the email relay in the original deployment).
type WebhookNotifier struct {
	URL    string
	Client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:    url,
		Client: &http.Client{Timeout: NotifyTimeout},
	}
}

func (n *WebhookNotifier) NotifyTrainingComplete(ctx context.Context, runID string, updated int) error {
	payload, err := json.Marshal(map[string]any{
		"event":   "training_complete",
		"runId":   runID,
		"updated": updated,
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, NotifyTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("notify webhook: status %d", resp.StatusCode)
	}
	return nil
}

// SMTPNotifier mails the training summary directly instead of going through
// a webhook.
type SMTPNotifier struct {
	Host string
	Port int
	User string
	Pass string
	From string
	To   string
}

func (n *SMTPNotifier) NotifyTrainingComplete(_ context.Context, runID string, updated int) error {
	m := mail.NewMessage()
	m.SetHeader("From", n.From)
	m.SetHeader("To", n.To)
	m.SetHeader("Subject", "Global recommendation model updated")
	m.SetBody("text/plain", fmt.Sprintf("Training run %s updated %d book scores.", runID, updated))

	d := mail.NewDialer(n.Host, n.Port, n.User, n.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.Timeout = NotifyTimeout
	return d.DialAndSend(m)
}
