package mail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := &Client{
		APIKey:     "re_test_123",
		BaseURL:    srv.URL,
		FromDomain: "coparrent.app",
		HTTPClient: srv.Client(),
	}
	return client, srv
}

func TestSend(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		w.Write([]byte(`{"id":"email_123"}`))
	})
	defer srv.Close()

	result := client.Send(context.Background(), Message{
		To:       "parent@example.com",
		Subject:  "Your CoParrent subscription is active",
		HTML:     "<p>Welcome!</p>",
		Category: CategoryWelcome,
	})
	if result == nil || result.ID != "email_123" {
		t.Fatalf("expected accepted result, got %+v", result)
	}
	if gotAuth != "Bearer re_test_123" {
		t.Fatalf("unexpected authorization header: %q", gotAuth)
	}
	if gotBody["to"] != "parent@example.com" || gotBody["subject"] != "Your CoParrent subscription is active" {
		t.Fatalf("unexpected request body: %v", gotBody)
	}
	if gotBody["from"] != "CoParrent <welcome@coparrent.app>" {
		t.Fatalf("unexpected from address: %q", gotBody["from"])
	}
}

func TestSendNeverSurfacesFailures(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"rate limited"}`, http.StatusTooManyRequests)
	})
	defer srv.Close()

	// A rejected delivery returns nil, it never panics or errors out.
	if result := client.Send(context.Background(), Message{To: "parent@example.com", Subject: "x"}); result != nil {
		t.Fatalf("expected rejected delivery to return nil, got %+v", result)
	}

	// Missing recipient and missing API key are dropped the same way.
	if result := client.Send(context.Background(), Message{Subject: "x"}); result != nil {
		t.Fatalf("expected missing recipient to return nil, got %+v", result)
	}
	client.APIKey = ""
	if result := client.Send(context.Background(), Message{To: "parent@example.com"}); result != nil {
		t.Fatalf("expected missing api key to return nil, got %+v", result)
	}
}

func TestFromAddressPerCategory(t *testing.T) {
	client := &Client{FromDomain: "coparrent.app"}

	tests := []struct {
		category string
		want     string
	}{
		{category: CategoryWelcome, want: "CoParrent <welcome@coparrent.app>"},
		{category: CategorySupport, want: "CoParrent Support <support@coparrent.app>"},
		{category: CategoryCancellation, want: "CoParrent <goodbye@coparrent.app>"},
		{category: CategoryUpdate, want: "CoParrent <updates@coparrent.app>"},
		{category: "anything-else", want: "CoParrent <updates@coparrent.app>"},
	}

	for _, tt := range tests {
		if got := client.fromAddress(tt.category); got != tt.want {
			t.Fatalf("fromAddress(%q) = %q, want %q", tt.category, got, tt.want)
		}
	}
}
