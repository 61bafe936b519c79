package service

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"signsync/internal/storage"
)

// Archiver mirrors completed signed documents from the provider's short-lived
// download URLs into the agency's own object storage.
type Archiver struct {
	store storage.Storage
	httpc *http.Client
}

// NewArchiver constructs an Archiver over the given object store.
func NewArchiver(store storage.Storage) *Archiver {
	return &Archiver{
		store: store,
		httpc: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Archive downloads the signed document and streams it into object storage
// under signed/<submissionID>/<name>. The provider expires its download URLs,
// so the copy has to happen while the completion event is in hand.
func (a *Archiver) Archive(ctx context.Context, submissionID, docURL, docName string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}

	resp, err := a.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("download signed document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download signed document: unexpected status %d", resp.StatusCode)
	}

	if docName == "" {
		docName = "document.pdf"
	}
	key := path.Join("signed", submissionID, docName)

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}

	if _, err := a.store.Put(ctx, key, resp.Body, storage.PutObjectOptions{
		Size:        resp.ContentLength,
		ContentType: ct,
		Metadata: map[string]string{
			"submission-id": submissionID,
		},
	}); err != nil {
		return fmt.Errorf("store signed document: %w", err)
	}
	return nil
}
