package webhook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDispatchDeliversEvent(t *testing.T) {
	received := make(chan Event, 1)
	var gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Webhook-Token")
		var event Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Errorf("decode event: %v", err)
		}
		received <- event
	}))
	defer server.Close()

	d := NewDispatcher()
	d.Dispatch(server.URL, "shared-token", "opname.completed", map[string]interface{}{
		"code": "SO-20260829-1",
	})

	select {
	case event := <-received:
		if event.Type != "opname.completed" {
			t.Errorf("type = %s, want opname.completed", event.Type)
		}
		if event.SentAt.IsZero() {
			t.Error("sent_at is zero")
		}
		data, ok := event.Data.(map[string]interface{})
		if !ok || data["code"] != "SO-20260829-1" {
			t.Errorf("data = %v, want code payload", event.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was never delivered")
	}

	if gotToken != "shared-token" {
		t.Errorf("token header = %q, want shared-token", gotToken)
	}
}

func TestDispatchBlankURLIsNoop(t *testing.T) {
	d := NewDispatcher()
	// Must not panic or block.
	d.Dispatch("", "token", "order.created", nil)
}

func TestPostReportsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	d := NewDispatcher()
	err := d.post(server.URL, "", "order.created", nil)
	statusErr, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("post error = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusBadGateway {
		t.Errorf("code = %d, want 502", statusErr.Code)
	}
}
