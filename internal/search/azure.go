package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/colombiang/sales-mcp/internal/shared"
)

const apiVersion = "2023-11-01"

// AzureClient talks to one Azure AI Search index over REST.
type AzureClient struct {
	endpoint   string
	index      string
	apiKey     string
	httpClient *http.Client
}

// NewAzureClient constructs a client for the given service endpoint and
// index.
func NewAzureClient(endpoint, index, apiKey string, timeout time.Duration) *AzureClient {
	return &AzureClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		index:      index,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type vectorQuery struct {
	Kind   string    `json:"kind"`
	Vector []float32 `json:"vector"`
	Fields string    `json:"fields"`
	K      int       `json:"k"`
}

type searchRequest struct {
	Search        string        `json:"search,omitempty"`
	Filter        string        `json:"filter,omitempty"`
	Top           int           `json:"top,omitempty"`
	VectorQueries []vectorQuery `json:"vectorQueries,omitempty"`
}

type searchHit struct {
	Score float64 `json:"@search.score"`
	Document
}

type searchResponse struct {
	Value []searchHit `json:"value"`
}

// Search runs a query against the index. vector may be nil for a purely
// lexical search.
func (c *AzureClient) Search(ctx context.Context, text, filter string, top int, vector []float32) ([]Result, error) {
	body := searchRequest{Search: text, Filter: filter, Top: top}
	if len(vector) > 0 {
		body.VectorQueries = []vectorQuery{{
			Kind: "vector", Vector: vector, Fields: "embedding", K: top,
		}}
	}
	var resp searchResponse
	if err := c.post(ctx, "/docs/search", body, &resp); err != nil {
		return nil, err
	}
	out := make([]Result, len(resp.Value))
	for i, hit := range resp.Value {
		out[i] = Result{Document: hit.Document, Score: hit.Score}
	}
	return out, nil
}

type indexAction struct {
	Action string `json:"@search.action"`
	Document
}

type indexBatch struct {
	Value []indexAction `json:"value"`
}

// Upload merges the documents into the index.
func (c *AzureClient) Upload(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	batch := indexBatch{Value: make([]indexAction, len(docs))}
	for i, doc := range docs {
		batch.Value[i] = indexAction{Action: "mergeOrUpload", Document: doc}
	}
	return c.post(ctx, "/docs/index", batch, nil)
}

func (c *AzureClient) post(ctx context.Context, path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/indexes/%s%s?api-version=%s", c.endpoint, c.index, path, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return shared.NewTransportError(shared.TransportTimeout, "search request timed out", err)
		}
		return shared.NewTransportError(shared.TransportUnavailable, "search service unreachable", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return shared.NewTransportError(shared.TransportUpstream,
			fmt.Sprintf("search service returned status %d", resp.StatusCode),
			fmt.Errorf("%s", strings.TrimSpace(string(detail))))
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
