package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/webindex"
)

// DefaultUpsertTimeout bounds a single batch upsert request.
const DefaultUpsertTimeout = 30 * time.Second

// Ensure IndexStore implements webindex.IndexStore at compile time.
var _ webindex.IndexStore = (*IndexStore)(nil)

// IndexStore writes index documents to a remote search service over HTTP.
// Each Upsert posts one JSON batch to the service's documents endpoint;
// documents are keyed by ID so re-sending a batch is idempotent.
type IndexStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// StoreOption configures an IndexStore.
type StoreOption func(*IndexStore)

// WithStoreClient sets the HTTP client used for upserts. Defaults to a
// client with DefaultUpsertTimeout.
func WithStoreClient(client *http.Client) StoreOption {
	return func(s *IndexStore) {
		s.client = client
	}
}

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) StoreOption {
	return func(s *IndexStore) {
		s.apiKey = key
	}
}

// NewIndexStore creates an IndexStore targeting the search service at
// baseURL (e.g. https://search.internal:7700).
func NewIndexStore(baseURL string, opts ...StoreOption) *IndexStore {
	s := &IndexStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultUpsertTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upsert sends one batch of documents to the remote index. A 429 or 503
// response maps to ERATELIMIT so the caller knows to back off and resend
// the same batch; other non-2xx responses map to EUNAVAILABLE and are
// fatal for the batch.
func (s *IndexStore) Upsert(ctx context.Context, docs []webindex.IndexDocument) error {
	if len(docs) == 0 {
		return nil
	}

	payload, err := json.Marshal(struct {
		Documents []webindex.IndexDocument `json:"documents"`
	}{Documents: docs})
	if err != nil {
		return webindex.Errorf(webindex.EINTERNAL, "encoding upsert batch: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/documents", bytes.NewReader(payload))
	if err != nil {
		return webindex.Errorf(webindex.EINTERNAL, "creating upsert request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return webindex.Errorf(webindex.ECANCELED, "upsert canceled: %v", ctx.Err())
		}
		return webindex.Errorf(webindex.EUNAVAILABLE, "index service unreachable: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		return webindex.Errorf(webindex.ERATELIMIT, "index service throttled upsert: HTTP %d", resp.StatusCode)
	default:
		return webindex.Errorf(webindex.EUNAVAILABLE, "index service rejected upsert: HTTP %d: %s",
			resp.StatusCode, readErrorBody(resp.Body))
	}
}

// readErrorBody returns a short excerpt of an error response body.
func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(b) == 0 {
		return "<no body>"
	}
	return string(bytes.TrimSpace(b))
}
