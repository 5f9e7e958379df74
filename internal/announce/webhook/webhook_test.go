package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zerovacancy/zerovacancy/internal/announce"
	"github.com/zerovacancy/zerovacancy/internal/core"
)

func TestWebhook_ImplementsSink(t *testing.T) {
	var _ announce.Sink = (*Webhook)(nil)
}

func TestWebhook_Name(t *testing.T) {
	w, _ := New("http://example.com/hook", nil)
	if w.Name() != "webhook" {
		t.Errorf("expected 'webhook', got %s", w.Name())
	}
}

func TestWebhook_New_RequiresURL(t *testing.T) {
	if _, err := New("", nil); err == nil {
		t.Error("expected error for missing URL")
	}
}

func TestWebhook_Send(t *testing.T) {
	var received struct {
		Type         string                `json:"type"`
		Notification announce.Notification `json:"notification"`
	}
	var auth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	w, _ := New(server.URL, map[string]string{"Authorization": "Bearer hook-secret"})

	n := announce.Notification{
		Title:    "Session expired",
		Message:  "Please sign in again",
		Kind:     core.KindAuth,
		Variant:  announce.VariantDestructive,
		Redirect: "/login",
		At:       time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
	}

	if err := w.Send(context.Background(), n); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if received.Type != "notification" {
		t.Errorf("expected type 'notification', got %v", received.Type)
	}
	if received.Notification.Kind != core.KindAuth || received.Notification.Redirect != "/login" {
		t.Errorf("unexpected payload: %+v", received.Notification)
	}
	if auth != "Bearer hook-secret" {
		t.Errorf("expected custom header, got %q", auth)
	}
}

func TestWebhook_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	w, _ := New(server.URL, nil)
	if err := w.Send(context.Background(), announce.Notification{Message: "x"}); err == nil {
		t.Error("expected error for server error response")
	}
}
