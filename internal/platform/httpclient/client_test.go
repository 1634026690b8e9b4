package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDoJSON_RelativePathAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/echo" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Key") != "k" {
			t.Errorf("missing header")
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
	}))
	defer srv.Close()

	c, err := NewWithBaseURL(srv.URL+"/v1/", time.Second)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var out map[string]string
	if err := c.DoJSON(context.Background(), http.MethodPost, "echo", map[string]string{"X-Key": "k"}, map[string]string{"msg": "hi"}, &out); err != nil {
		t.Fatalf("do: %v", err)
	}
	if out["echo"] != "hi" {
		t.Fatalf("unexpected out: %v", out)
	}
}

func TestDoJSON_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := New(time.Second).DoJSON(context.Background(), http.MethodGet, srv.URL, nil, nil, nil)
	if StatusOf(err) != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
}

func TestDoJSON_RelativeWithoutBase(t *testing.T) {
	if err := New(0).DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := NewWithBaseURL("::bad", 0); err == nil {
		t.Fatalf("expected invalid base url")
	}
}
