package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/Itish41/ReguGuard/models"
)

const rulesIndex = "rules"

// ElasticRuleIndex keeps the current rule set searchable in Elasticsearch.
type ElasticRuleIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticRuleIndex connects to url. It returns nil, nil when url is empty.
func NewElasticRuleIndex(url string) (*ElasticRuleIndex, error) {
	if url == "" {
		log.Println("[NewElasticRuleIndex] ELASTICSEARCH_URL not set, search falls back to in-memory matching")
		return nil, nil
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{url}})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	return &ElasticRuleIndex{client: client, index: rulesIndex}, nil
}

type indexedRule struct {
	ControlID string    `json:"control_id"`
	Text      string    `json:"text"`
	Severity  string    `json:"severity"`
	Score     float64   `json:"score"`
	Category  string    `json:"category"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *ElasticRuleIndex) clearIndex(ctx context.Context) error {
	res, err := e.client.Indices.Delete(
		[]string{e.index},
		e.client.Indices.Delete.WithIgnoreUnavailable(true),
		e.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to clear rule index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch index delete failed: %s", res.String())
	}
	return nil
}

// ReplaceRules drops the previous rule set and bulk indexes rules.
func (e *ElasticRuleIndex) ReplaceRules(ctx context.Context, rules []models.Rule) error {
	if err := e.clearIndex(ctx); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	now := time.Now().UTC()
	for _, r := range rules {
		meta := map[string]any{"index": map[string]any{"_id": r.ControlID}}
		doc := indexedRule{
			ControlID: r.ControlID,
			Text:      r.Text,
			Severity:  string(r.Severity),
			Score:     r.Score,
			Category:  r.Category,
			Content:   r.SearchContent(),
			Timestamp: now,
		}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("failed to marshal bulk metadata: %w", err)
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to marshal rule %s for indexing: %w", r.ControlID, err)
		}
	}

	res, err := e.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithIndex(e.index),
		e.client.Bulk.WithRefresh("true"),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("bulk index request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch bulk index failed: %s", res.String())
	}

	var bulk struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulk); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if bulk.Errors {
		return fmt.Errorf("elasticsearch bulk index reported item errors")
	}
	log.Printf("[ElasticRuleIndex.ReplaceRules] Indexed %d rules", len(rules))
	return nil
}

// Search returns the control ids matching query, best match first.
func (e *ElasticRuleIndex) Search(ctx context.Context, query string) ([]string, error) {
	searchQuery := map[string]any{
		"size": 100,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"text", "control_id", "content"},
			},
		},
	}
	body, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search failed: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source indexedRule `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]string, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		if hit.Source.ControlID != "" {
			ids = append(ids, hit.Source.ControlID)
		}
	}
	return ids, nil
}
