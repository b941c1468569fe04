// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"laundry-workers/internal/common/config"
	"laundry-workers/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchClient holds the client used by the delivery-log audit mirror.
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	if !cfg.Enabled() {
		return nil, errors.NewValidationError("database.elasticsearch.addresses is empty")
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, errors.NewExternalServiceError("elasticsearch", err)
	}
	return &ElasticsearchClient{Client: es}, nil
}

func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return errors.NewExternalServiceError("elasticsearch", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewExternalServiceError("elasticsearch", fmt.Errorf("ping: %s", res.Status()))
	}
	return nil
}

// EnsureIndex creates index with the given mapping unless it already exists. Losing a
// create race to another replica counts as success.
func (c *ElasticsearchClient) EnsureIndex(ctx context.Context, index, mapping string) error {
	res, err := c.Client.Indices.Exists([]string{index}, c.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return errors.NewExternalServiceError("elasticsearch", err)
	}
	res.Body.Close()
	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return errors.NewExternalServiceError("elasticsearch", fmt.Errorf("index exists %s: %s", index, res.Status()))
	}

	res, err = c.Client.Indices.Create(index,
		c.Client.Indices.Create.WithContext(ctx),
		c.Client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return errors.NewExternalServiceError("elasticsearch", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusBadRequest && strings.Contains(res.String(), "resource_already_exists_exception") {
			return nil
		}
		return errors.NewExternalServiceError("elasticsearch", fmt.Errorf("create index %s: %s", index, res.Status()))
	}
	return nil
}
