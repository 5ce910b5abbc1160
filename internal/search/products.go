// internal/search/products.go

// Package search wraps the full-text index over product documents. The
// catalog treats it as an opaque provider: writes are best-effort and reads
// return a page of hits plus an approximate total.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lavshop/storefront-backend/internal/config"
	"github.com/lavshop/storefront-backend/internal/models"
)

// ProductDocument is the shape indexed per product.
type ProductDocument struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Discount    float64   `json:"discount"`
	Quantity    int64     `json:"quantity"`
	Categories  []string  `json:"categories"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProductIndex struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

func NewProductIndex(cfg config.ElasticsearchConfig) (*ProductIndex, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	idx := &ProductIndex{
		client: es,
		config: cfg,
	}

	// Check connection and create index if needed
	if err := idx.ensureIndex(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return idx, nil
}

func (p *ProductIndex) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{p.config.Index},
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		logrus.WithField("index", p.config.Index).Info("Elasticsearch index already exists")
		return nil
	}

	mapping := map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type": "keyword",
				},
				"name": map[string]interface{}{
					"type": "text",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{
							"type":         "keyword",
							"ignore_above": 256,
						},
					},
				},
				"description": map[string]interface{}{
					"type": "text",
				},
				"price": map[string]interface{}{
					"type": "double",
				},
				"discount": map[string]interface{}{
					"type": "double",
				},
				"quantity": map[string]interface{}{
					"type": "long",
				},
				"categories": map[string]interface{}{
					"type": "keyword",
				},
				"created_at": map[string]interface{}{
					"type": "date",
				},
			},
		},
	}

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: p.config.Index,
		Body:  strings.NewReader(string(mappingJSON)),
	}

	createRes, err := createReq.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	logrus.WithField("index", p.config.Index).Info("Created Elasticsearch index")
	return nil
}

// IndexProduct upserts the document for a product.
func (p *ProductIndex) IndexProduct(ctx context.Context, product *models.Product) error {
	doc := ProductDocument{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Discount:    product.Discount,
		Quantity:    product.Quantity,
		CreatedAt:   product.CreatedAt,
	}
	for _, category := range product.Categories {
		doc.Categories = append(doc.Categories, category.Name)
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal product document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      p.config.Index,
		DocumentID: doc.ID,
		Body:       strings.NewReader(string(docJSON)),
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("failed to index product: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}

	return nil
}

func (p *ProductIndex) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	req := esapi.DeleteRequest{
		Index:      p.config.Index,
		DocumentID: id.String(),
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("failed to delete product document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete error: %s", res.String())
	}

	return nil
}

// Search returns one page of hits and the approximate total count.
func (p *ProductIndex) Search(ctx context.Context, query string, page, limit int) ([]ProductDocument, int64, error) {
	from := 0
	if page > 0 && limit > 0 {
		from = (page - 1) * limit
	}
	if limit <= 0 {
		limit = 10
	}

	searchRequest := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": limit,
	}

	searchJSON, err := json.Marshal(searchRequest)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{p.config.Index},
		Body:  strings.NewReader(string(searchJSON)),
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source ProductDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]ProductDocument, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		hits[i] = hit.Source
	}

	return hits, response.Hits.Total.Value, nil
}

// HealthCheck verifies the cluster is reachable.
func (p *ProductIndex) HealthCheck(ctx context.Context) error {
	req := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       10 * time.Second,
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", res.String())
	}

	return nil
}
