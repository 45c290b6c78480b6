package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestInvokeReturnsBodyOnSuccess(t *testing.T) {
	var got Invocation
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode invocation: %v", err)
		}
		_, _ = w.Write([]byte(`{"status_code":200,"body":{"choices":[{"message":{"content":"hello"}}]}}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second, testLogger())
	body, err := client.Invoke(context.Background(), Invocation{
		ExecutionID: "exec-1",
		UserID:      "user-2",
		ProductID:   "prod-3",
		Service:     "chat-gpt-4o",
		Size:        "1x",
		Prompt:      "write something",
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got.Service != "chat-gpt-4o" || got.ExecutionID != "exec-1" {
		t.Fatalf("unexpected invocation payload: %+v", got)
	}

	text, err := ChatText(body)
	if err != nil {
		t.Fatalf("ChatText: %v", err)
	}
	if text != "hello" {
		t.Fatalf("expected %q, got %q", "hello", text)
	}
}

func TestInvokeNonSuccessStatusCodeIsInvocationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status_code":500,"body":"model overloaded"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second, testLogger())
	_, err := client.Invoke(context.Background(), Invocation{Service: "chat-gpt-4o"})

	var invErr *InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected InvocationError, got %v", err)
	}
	if invErr.StatusCode != 500 {
		t.Fatalf("expected status 500, got %d", invErr.StatusCode)
	}
	if invErr.Body != `"model overloaded"` {
		t.Fatalf("expected remote body preserved, got %q", invErr.Body)
	}
}

func TestInvokeTransportFailureIsInvocationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second, testLogger())
	_, err := client.Invoke(context.Background(), Invocation{})

	var invErr *InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected InvocationError, got %v", err)
	}
	if invErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", invErr.StatusCode)
	}
}

func TestChatTextRejectsEmptyChoices(t *testing.T) {
	if _, err := ChatText(json.RawMessage(`{"choices":[]}`)); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestImageURL(t *testing.T) {
	url, err := ImageURL(json.RawMessage(`{"data":[{"url":"https://img.example.com/pic.png?sig=abc"}]}`))
	if err != nil {
		t.Fatalf("ImageURL: %v", err)
	}
	if url != "https://img.example.com/pic.png?sig=abc" {
		t.Fatalf("unexpected url %q", url)
	}

	if _, err := ImageURL(json.RawMessage(`{"data":[]}`)); err == nil {
		t.Fatal("expected error for empty data")
	}
}
