package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProxyTransport(t *testing.T) {
	var gotPath, gotQuery, gotHeader string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotHeader = r.Header.Get("X-Requested-With")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"values":[["id"],["r1"]]}`))
	}))
	defer proxy.Close()

	hc := &http.Client{Transport: &ProxyTransport{Prefix: proxy.URL + "/"}}
	client := New("sheet-id", "k", WithHTTPClient(hc))

	rows, err := client.GetValues(context.Background(), "Rooms")
	if err != nil {
		t.Fatalf("GetValues through proxy failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}

	wantPath := "/https://sheets.googleapis.com/v4/spreadsheets/sheet-id/values/Rooms"
	if gotPath != wantPath {
		t.Errorf("proxied path: got %q, want %q", gotPath, wantPath)
	}
	if gotQuery != "key=k" {
		t.Errorf("proxied query: got %q, want %q", gotQuery, "key=k")
	}
	if gotHeader != "XMLHttpRequest" {
		t.Errorf("X-Requested-With: got %q", gotHeader)
	}
}

func TestProxyTransportPassthrough(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	hc := &http.Client{Transport: &ProxyTransport{}}
	client := New("id", "k", WithBaseURL(ts.URL), WithHTTPClient(hc))
	rows, err := client.GetValues(context.Background(), "Rooms")
	if err != nil {
		t.Fatalf("GetValues failed: %v", err)
	}
	if len(rows) != 0 || hits != 1 {
		t.Errorf("got %d rows, %d hits", len(rows), hits)
	}
}

func TestNewHTTPClient(t *testing.T) {
	hc := NewHTTPClient(5*time.Second, "https://proxy.example/")
	if hc.Timeout != 5*time.Second {
		t.Errorf("timeout: got %v", hc.Timeout)
	}
	if hc.Transport == nil {
		t.Error("expected instrumented transport")
	}
}
