package report

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

func TestReportDeliversEnvelope(t *testing.T) {
	var gotBody Envelope
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode envelope: %v", err)
		}
	}))
	defer srv.Close()

	rep := NewWebhookReporter(srv.URL, time.Second, testLogger())
	env := Envelope{
		ExecutionID: "exec-1",
		UserID:      "user-2",
		ProductID:   "prod-3",
		Token:       "tok-4",
		Status:      StatusSuccessful,
		Results:     "<div>ok</div>",
	}
	if err := rep.Report(context.Background(), env); err != nil {
		t.Fatalf("Report: %v", err)
	}

	if gotBody != env {
		t.Fatalf("expected %+v, got %+v", env, gotBody)
	}
	if ct := gotHeaders.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}
	if cl := gotHeaders.Get("Content-Length"); cl == "" {
		t.Fatal("expected explicit content length")
	}
}

func TestReportNon200IsDeliveryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("invalid token"))
	}))
	defer srv.Close()

	rep := NewWebhookReporter(srv.URL, time.Second, testLogger())
	err := rep.Report(context.Background(), Envelope{Status: StatusFailed})

	var delErr *DeliveryError
	if !errors.As(err, &delErr) {
		t.Fatalf("expected DeliveryError, got %v", err)
	}
	if delErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", delErr.StatusCode)
	}
	if delErr.Body != "invalid token" {
		t.Fatalf("expected remote body verbatim, got %q", delErr.Body)
	}
}
