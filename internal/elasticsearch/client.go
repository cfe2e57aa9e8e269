package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/mfenderov/pdfvault/internal/apperr"
	"github.com/mfenderov/pdfvault/internal/store"
	"github.com/mfenderov/pdfvault/pkg/models"
)

// Config holds Elasticsearch client configuration.
type Config struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

// Client is a store.Store backed by one Elasticsearch index.
type Client struct {
	es    *elasticsearch.Client
	index string
	now   func() time.Time
}

var _ store.Store = (*Client)(nil)

// listAllBatch is the page size used when walking the whole index.
const listAllBatch = 500

// New creates a new Elasticsearch client.
func New(config Config) (*Client, error) {
	if config.Index == "" {
		return nil, fmt.Errorf("index is required")
	}

	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	return &Client{
		es:    es,
		index: config.Index,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping error: %s", res.String())
	}
	return nil
}

// Close is a no-op; the transport holds no resources that need releasing.
func (c *Client) Close() error { return nil }

// indexMapping stores free-text fields as wildcard so that case-insensitive
// substring queries match the SQL backend.
var indexMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "keyword" },
			"filename": { "type": "wildcard" },
			"title": { "type": "wildcard" },
			"author": { "type": "wildcard" },
			"pdf_created_at": { "type": "date" },
			"page_count": { "type": "integer" },
			"word_count": { "type": "integer" },
			"char_count": { "type": "integer" },
			"file_size": { "type": "long" },
			"extracted_text": { "type": "wildcard" },
			"emails_found": { "type": "keyword" },
			"phone_numbers_found": { "type": "keyword" },
			"urls_found": { "type": "keyword" },
			"dates_found": { "type": "keyword" },
			"pii_found": { "type": "boolean" },
			"created_at": { "type": "date_nanos" }
		}
	}
}`

// CreateIndex creates the index with proper mapping.
func (c *Client) CreateIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}

	return nil
}

// DeleteIndex removes the index (for testing/cleanup).
func (c *Client) DeleteIndex(ctx context.Context) error {
	res, err := c.es.Indices.Delete([]string{c.index}, c.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

// Create indexes doc under a new ID and waits until it is searchable.
func (c *Client) Create(ctx context.Context, doc models.Document) (models.Document, error) {
	doc.ID = store.NewID()
	doc.CreatedAt = c.now()
	doc.Normalize()

	data, err := json.Marshal(doc)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to marshal document: %w", err)
	}

	res, err := c.es.Index(
		c.index,
		bytes.NewReader(data),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(doc.ID),
		c.es.Index.WithOpType("create"),
		c.es.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return models.Document{}, fmt.Errorf("error indexing document (status %d): %s", res.StatusCode, res.String())
	}

	return doc, nil
}

// getResponse represents ES get response structure.
type getResponse struct {
	Found  bool            `json:"found"`
	Source models.Document `json:"_source"`
}

// Get retrieves a document by ID.
func (c *Client) Get(ctx context.Context, id string) (models.Document, error) {
	res, err := c.es.Get(
		c.index,
		id,
		c.es.Get.WithContext(ctx),
	)
	if err != nil {
		return models.Document{}, fmt.Errorf("get failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return models.Document{}, apperr.NotFound(id)
	}

	if res.IsError() {
		return models.Document{}, fmt.Errorf("get error: %s", res.String())
	}

	var gr getResponse
	if err := json.NewDecoder(res.Body).Decode(&gr); err != nil {
		return models.Document{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if !gr.Found {
		return models.Document{}, apperr.NotFound(id)
	}

	gr.Source.Normalize()
	return gr.Source, nil
}

// Delete removes a document by ID.
func (c *Client) Delete(ctx context.Context, id string) error {
	res, err := c.es.Delete(
		c.index,
		id,
		c.es.Delete.WithContext(ctx),
		c.es.Delete.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return apperr.NotFound(id)
	}
	if res.IsError() {
		return fmt.Errorf("delete error: %s", res.String())
	}
	return nil
}

// searchResponse represents ES search response structure.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source models.Document `json:"_source"`
			Sort   []any           `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

var sortOrder = []map[string]any{
	{"created_at": "desc"},
	{"id": "desc"},
}

// Query returns one page of matching documents and the total match count.
func (c *Client) Query(ctx context.Context, q store.Query) ([]models.Document, int, error) {
	body := map[string]any{
		"query":            buildQuery(q),
		"sort":             sortOrder,
		"from":             q.Offset,
		"size":             q.Limit,
		"track_total_hits": true,
	}

	sr, err := c.search(ctx, body)
	if err != nil {
		return nil, 0, err
	}

	docs := make([]models.Document, len(sr.Hits.Hits))
	for i, hit := range sr.Hits.Hits {
		docs[i] = hit.Source
		docs[i].Normalize()
	}
	return docs, sr.Hits.Total.Value, nil
}

// ListAll walks the whole index with search_after.
func (c *Client) ListAll(ctx context.Context) ([]models.Document, error) {
	docs := []models.Document{}
	var after []any

	for {
		body := map[string]any{
			"query": map[string]any{"match_all": map[string]any{}},
			"sort":  sortOrder,
			"size":  listAllBatch,
		}
		if after != nil {
			body["search_after"] = after
		}

		sr, err := c.search(ctx, body)
		if err != nil {
			return nil, err
		}
		for _, hit := range sr.Hits.Hits {
			hit.Source.Normalize()
			docs = append(docs, hit.Source)
		}
		if len(sr.Hits.Hits) < listAllBatch {
			return docs, nil
		}
		after = sr.Hits.Hits[len(sr.Hits.Hits)-1].Sort
	}
}

func (c *Client) search(ctx context.Context, body map[string]any) (*searchResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &sr, nil
}

// date_nanos fields hold 1970-01-01 through 2262-04-11.
var (
	minNanosDate = time.Unix(0, 0).UTC()
	maxNanosDate = time.Unix(0, math.MaxInt64).UTC()
)

// nanosDate formats a range bound for a date_nanos field, clamped into its range.
func nanosDate(t time.Time) string {
	switch {
	case t.Before(minNanosDate):
		t = minNanosDate
	case t.After(maxNanosDate):
		t = maxNanosDate
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// buildQuery translates a store.Query into an ES bool query.
func buildQuery(q store.Query) map[string]any {
	var filters []any

	f := q.Filter
	if f.PIIFound != nil {
		filters = append(filters, map[string]any{"term": map[string]any{"pii_found": *f.PIIFound}})
	}
	if f.CreatedFrom != nil || f.CreatedTo != nil {
		rng := map[string]any{}
		if f.CreatedFrom != nil {
			rng["gte"] = nanosDate(*f.CreatedFrom)
		}
		if f.CreatedTo != nil {
			rng["lte"] = nanosDate(*f.CreatedTo)
		}
		filters = append(filters, map[string]any{"range": map[string]any{"created_at": rng}})
	}
	if f.Author != "" {
		filters = append(filters, substring("author", f.Author))
	}

	boolQuery := map[string]any{}
	if q.Text != "" {
		boolQuery["should"] = []any{
			substring("extracted_text", q.Text),
			substring("filename", q.Text),
			substring("title", q.Text),
			substring("author", q.Text),
		}
		boolQuery["minimum_should_match"] = 1
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}
	if len(boolQuery) == 0 {
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{"bool": boolQuery}
}

// substring builds a case-insensitive contains query with wildcard metacharacters escaped.
func substring(field, value string) map[string]any {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)
	return map[string]any{
		"wildcard": map[string]any{
			field: map[string]any{
				"value":            "*" + r.Replace(value) + "*",
				"case_insensitive": true,
			},
		},
	}
}
