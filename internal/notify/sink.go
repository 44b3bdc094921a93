package notify

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// LogSink writes reminders to the process log. Default when no webhook is
// configured.
type LogSink struct{}

func (LogSink) Deliver(r Reminder) {
	log.Printf("reminder [%s]: %s / %s", r.CorrelationID, r.Title, r.Body)
}

// WebhookSink POSTs each reminder as JSON to a configured URL, e.g. a chat
// webhook or a push relay. Delivery failures are logged and dropped.
type WebhookSink struct {
	URL    string
	Client *http.Client
}

func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WebhookSink) Deliver(r Reminder) {
	b, err := json.Marshal(r)
	if err != nil {
		log.Printf("webhook encode reminder: %v", err)
		return
	}
	resp, err := s.Client.Post(s.URL, "application/json", bytes.NewReader(b))
	if err != nil {
		log.Printf("webhook deliver [%s]: %v", r.CorrelationID, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("webhook deliver [%s]: status %d", r.CorrelationID, resp.StatusCode)
	}
}
