package mcp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestAPIClientGet(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client := NewAPIClient(server.URL+"/", "mcp-assistant")
	query := url.Values{}
	query.Set("status", "ACTIVE")

	body, status, err := client.Get(context.Background(), "/assets", query)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if body != `{"success":true}` {
		t.Errorf("body = %q", body)
	}
	if gotPath != "/assets" {
		t.Errorf("path = %q, want /assets (base URL trailing slash must be trimmed)", gotPath)
	}
	if gotQuery != "status=ACTIVE" {
		t.Errorf("query = %q, want status=ACTIVE", gotQuery)
	}
}

func TestAPIClientSend(t *testing.T) {
	var gotMethod, gotActor, gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotActor = r.Header.Get("X-Actor-Id")
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"success":false}`))
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, "analyst-1")
	payload := map[string]string{"status": "FIXED"}

	body, status, err := client.Send(context.Background(), http.MethodPatch, "/vulnerabilities/findings/f1/status", payload)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if status != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", status)
	}
	if body != `{"success":false}` {
		t.Errorf("body = %q", body)
	}
	if gotMethod != http.MethodPatch {
		t.Errorf("method = %q, want PATCH", gotMethod)
	}
	if gotActor != "analyst-1" {
		t.Errorf("X-Actor-Id = %q, want analyst-1", gotActor)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotBody != `{"status":"FIXED"}` {
		t.Errorf("request body = %q", gotBody)
	}
}

func TestAPIClientSendWithoutActor(t *testing.T) {
	var sawActorHeader bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawActorHeader = r.Header["X-Actor-Id"]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, "")
	if _, _, err := client.Send(context.Background(), http.MethodPost, "/assets", nil); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if sawActorHeader {
		t.Error("X-Actor-Id must not be sent when no actor is configured")
	}
}

func TestAPIResultFlagsErrors(t *testing.T) {
	result, _, err := apiResult(`{"success":false}`, 422, nil)
	if err != nil {
		t.Fatalf("apiResult returned error: %v", err)
	}
	if !result.IsError {
		t.Error("a 422 response should surface as a tool error")
	}

	result, _, _ = apiResult(`{"success":true}`, 200, nil)
	if result.IsError {
		t.Error("a 200 response should not be a tool error")
	}

	result, _, err = apiResult("", 0, errors.New("connection refused"))
	if err != nil {
		t.Fatalf("transport failures should become tool errors, not handler errors: %v", err)
	}
	if !result.IsError {
		t.Error("a transport failure should be a tool error")
	}
}

func TestSetIf(t *testing.T) {
	query := url.Values{}
	setIf(query, "status", "")
	setIf(query, "severity", "HIGH")
	if query.Has("status") {
		t.Error("empty values must not be set")
	}
	if query.Get("severity") != "HIGH" {
		t.Errorf("severity = %q, want HIGH", query.Get("severity"))
	}
}
