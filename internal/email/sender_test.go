package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newshub/newshub/internal/testutil"
)

func TestSendWithoutAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made without an API key")
	}))
	defer srv.Close()

	s := NewResendSender(Config{Endpoint: srv.URL}, testutil.NullLogger())

	err := s.Send(context.Background(), Message{To: "a@example.com", Subject: "Hi", Text: "body"})
	if err != nil {
		t.Errorf("keyless send should pretend success, got %v", err)
	}
}

func TestSendPostsToAPI(t *testing.T) {
	var got resendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": "email_123"}`))
	}))
	defer srv.Close()

	s := NewResendSender(Config{
		APIKey:    "re_test",
		FromEmail: "NewsHub <digest@example.com>",
		Endpoint:  srv.URL,
	}, testutil.NullLogger())

	err := s.Send(context.Background(), Message{
		To:      "a@example.com",
		Subject: "Your digest",
		HTML:    "<p>hi</p>",
		Text:    "hi",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if auth != "Bearer re_test" {
		t.Errorf("authorization = %q", auth)
	}
	if got.From != "NewsHub <digest@example.com>" {
		t.Errorf("from = %q", got.From)
	}
	if len(got.To) != 1 || got.To[0] != "a@example.com" {
		t.Errorf("to = %v", got.To)
	}
	if got.Subject != "Your digest" || got.HTML == "" || got.Text == "" {
		t.Errorf("payload = %+v", got)
	}
}

func TestSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message": "invalid from address"}`))
	}))
	defer srv.Close()

	s := NewResendSender(Config{APIKey: "re_test", Endpoint: srv.URL}, testutil.NullLogger())

	err := s.Send(context.Background(), Message{To: "a@example.com", Subject: "x"})
	if err == nil {
		t.Fatal("Send should surface API errors")
	}
}

func TestSendServerUnreachable(t *testing.T) {
	s := NewResendSender(Config{APIKey: "re_test", Endpoint: "http://127.0.0.1:1"}, testutil.NullLogger())

	if err := s.Send(context.Background(), Message{To: "a@example.com"}); err == nil {
		t.Error("Send should fail when the API is unreachable")
	}
}
