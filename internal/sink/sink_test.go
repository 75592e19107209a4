package sink

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHonorificClient(t *testing.T) {
	t.Run("SetTitle", func(t *testing.T) {
		var gotMethod, gotPath, gotBody, gotType string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			gotType = r.Header.Get("Content-Type")
			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)
		}))
		defer srv.Close()

		client := NewHonorificClient(srv.URL, nil)
		payload := `{"Title":"Hi","IsPrefix":false,"Color":null,"Glow":null}`
		if err := client.SetTitle(context.Background(), 0, payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotMethod != http.MethodPut {
			t.Errorf("expected PUT, got %s", gotMethod)
		}
		if gotPath != "/title/0" {
			t.Errorf("expected /title/0, got %s", gotPath)
		}
		if gotBody != payload {
			t.Errorf("expected payload passed through verbatim, got %s", gotBody)
		}
		if gotType != "application/json" {
			t.Errorf("expected JSON content type, got %s", gotType)
		}
	})

	t.Run("ClearTitle", func(t *testing.T) {
		var gotMethod, gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
		}))
		defer srv.Close()

		client := NewHonorificClient(srv.URL, nil)
		if err := client.ClearTitle(context.Background(), 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotMethod != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", gotMethod)
		}
		if gotPath != "/title/3" {
			t.Errorf("expected /title/3, got %s", gotPath)
		}
	})

	t.Run("NonSuccessStatus", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewHonorificClient(srv.URL, nil)
		if err := client.SetTitle(context.Background(), 0, "{}"); err == nil {
			t.Error("expected error for 500 response")
		}
	})

	t.Run("ConnectionRefused", func(t *testing.T) {
		client := NewHonorificClient("http://127.0.0.1:1", nil)
		if err := client.SetTitle(context.Background(), 0, "{}"); err == nil {
			t.Error("expected error when the host endpoint is down")
		}
	})

	t.Run("TrailingSlashTrimmed", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
		}))
		defer srv.Close()

		client := NewHonorificClient(srv.URL+"/", nil)
		if err := client.ClearTitle(context.Background(), 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotPath != "/title/0" {
			t.Errorf("expected /title/0, got %s", gotPath)
		}
	})
}
