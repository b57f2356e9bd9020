package line

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mamadbah2/farmperf/internal/config"
)

func TestPushText(t *testing.T) {
	var got pushRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/bot/message/push" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	client := NewClient(config.LineConfig{ChannelToken: "secret", BaseURL: srv.URL + "/"})
	if err := client.PushText(context.Background(), "C123", "hello"); err != nil {
		t.Fatalf("PushText returned error: %v", err)
	}
	if auth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if got.To != "C123" || len(got.Messages) != 1 || got.Messages[0].Text != "hello" || got.Messages[0].Type != "text" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestPushTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"The request body has 1 error(s)","details":[{"message":"must be specified","property":"to"}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.LineConfig{ChannelToken: "secret", BaseURL: srv.URL})
	err := client.PushText(context.Background(), "C123", "hello")
	if err == nil || !strings.Contains(err.Error(), "code=400") || !strings.Contains(err.Error(), "must be specified") {
		t.Fatalf("expected descriptive api error, got %v", err)
	}
}

func TestSplitText(t *testing.T) {
	parts := splitText("aaaa\nbbbb\ncc", 6)
	want := []string{"aaaa", "bbbb", "cc"}
	if len(parts) != len(want) {
		t.Fatalf("expected %v, got %q", want, parts)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Fatalf("expected %v, got %q", want, parts)
		}
	}
}
