package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/promptintellect/socialgen/config"
	"github.com/promptintellect/socialgen/internal/ai"
	"github.com/promptintellect/socialgen/internal/feed"
	"github.com/promptintellect/socialgen/internal/report"
	"github.com/promptintellect/socialgen/internal/storage"
)

func testLogger() *log.Logger { return log.New(io.Discard, "", 0) }

// fakeAI scripts one response or error per service kind and records calls.
type fakeAI struct {
	responses map[string]json.RawMessage
	errs      map[string]error
	calls     []ai.Invocation
}

func (f *fakeAI) Invoke(ctx context.Context, inv ai.Invocation) (json.RawMessage, error) {
	f.calls = append(f.calls, inv)
	if err, ok := f.errs[inv.Service]; ok {
		return nil, err
	}
	resp, ok := f.responses[inv.Service]
	if !ok {
		return nil, fmt.Errorf("unexpected service %q", inv.Service)
	}
	return resp, nil
}

// fakeReporter records deliveries and can reject the success delivery
// while accepting the failure report that follows it.
type fakeReporter struct {
	envelopes  []report.Envelope
	successErr error
}

func (f *fakeReporter) Report(ctx context.Context, env report.Envelope) error {
	f.envelopes = append(f.envelopes, env)
	if env.Status == report.StatusSuccessful && f.successErr != nil {
		return f.successErr
	}
	return nil
}

type fakeSource struct {
	entries []feed.Entry
	err     error
}

func (f *fakeSource) Latest(ctx context.Context) ([]feed.Entry, error) {
	return f.entries, f.err
}

// memStore records object puts in memory.
type memStore struct {
	objects map[string][]byte
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (m *memStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func testCore(t *testing.T, aiClient ai.Client, store storage.Client, rep report.Reporter) *Core {
	t.Helper()
	cfg := &config.Config{}
	cfg.Storage.S3.ResultsFolder = "results"
	cfg.AI.ChatService = "chat-gpt-4o"
	cfg.AI.ImageService = "image-dall-e-3"
	cfg.AI.Size = "1x"

	mat := storage.NewMaterializer(store, time.Second, testLogger())
	return NewCore(cfg, aiClient, mat, rep, testLogger())
}

func captionEvent(explanation string) map[string]interface{} {
	return map[string]interface{}{
		"execution_id":  "exec-9",
		"user_id":       "user-7",
		"product_id":    "prod-5",
		"token":         "tok-1",
		"custom_inputs": map[string]interface{}{"explanation": explanation},
	}
}

func digestEvent(keywords string) map[string]interface{} {
	return map[string]interface{}{
		"execution_id":  "exec-9",
		"user_id":       "user-7",
		"product_id":    "prod-5",
		"token":         "tok-1",
		"custom_inputs": map[string]interface{}{"keywords": keywords},
	}
}

func onlyEnvelope(t *testing.T, rep *fakeReporter) report.Envelope {
	t.Helper()
	if len(rep.envelopes) != 1 {
		t.Fatalf("expected exactly one envelope, got %d", len(rep.envelopes))
	}
	return rep.envelopes[0]
}
