package webhook

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Event is the envelope posted to the configured webhook URL.
type Event struct {
	Type   string      `json:"type"`
	SentAt time.Time   `json:"sent_at"`
	Data   interface{} `json:"data"`
}

// Dispatcher posts order and opname events to an external URL. Deliveries are
// fire-and-forget: a failed POST is logged and dropped, never retried.
type Dispatcher struct {
	client *http.Client
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Dispatch delivers the event in the background. A blank URL disables
// notifications silently.
func (d *Dispatcher) Dispatch(url, token, eventType string, data interface{}) {
	if url == "" {
		return
	}
	go func() {
		if err := d.post(url, token, eventType, data); err != nil {
			log.Printf("webhook: failed to deliver %s: %v", eventType, err)
		}
	}()
}

func (d *Dispatcher) post(url, token, eventType string, data interface{}) error {
	body, err := json.Marshal(Event{
		Type:   eventType,
		SentAt: time.Now(),
		Data:   data,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Webhook-Token", token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return http.StatusText(e.Code)
}
