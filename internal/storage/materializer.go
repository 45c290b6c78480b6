package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// TransferError reports a failed artifact fetch or store write. Not retried.
type TransferError struct {
	URL string
	Key string
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("failed to transfer %s to %s: %v", e.URL, e.Key, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// Materializer downloads generated artifacts by URL and persists them to
// object storage under a deterministic key.
type Materializer struct {
	store  Client
	client *http.Client
	logger *log.Logger
}

// NewMaterializer creates a Materializer writing through store.
func NewMaterializer(store Client, timeout time.Duration, logger *log.Logger) *Materializer {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Materializer{
		store:  store,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// StoreFromURL fetches the bytes behind srcURL and writes them under
// {folder}/{file name derived from the URL}. Returns the stored key.
func (m *Materializer) StoreFromURL(ctx context.Context, srcURL, folder string) (string, error) {
	key := folder + "/" + FileNameFromURL(srcURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return "", &TransferError{URL: srcURL, Key: key, Err: err}
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return "", &TransferError{URL: srcURL, Key: key, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &TransferError{URL: srcURL, Key: key, Err: fmt.Errorf("fetch returned status %d", resp.StatusCode)}
	}

	if err := m.store.Put(ctx, key, resp.Body, resp.Header.Get("Content-Type")); err != nil {
		return "", &TransferError{URL: srcURL, Key: key, Err: err}
	}
	m.logger.Printf("artifact %s stored", key)
	return key, nil
}

// StoreJSON persists v pretty-printed under key.
func (m *Materializer) StoreJSON(ctx context.Context, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return &TransferError{Key: key, Err: err}
	}
	if err := m.store.Put(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return &TransferError{Key: key, Err: err}
	}
	m.logger.Printf("raw result %s stored", key)
	return nil
}
