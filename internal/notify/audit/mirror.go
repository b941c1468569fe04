// Package audit mirrors delivery-log rows into Elasticsearch for search and dashboards.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// Mapping is the index body for the audit index. Free text stays searchable; identifiers and
// enums are keywords so dashboards can aggregate on them.
const Mapping = `{
  "mappings": {
    "properties": {
      "@timestamp":         {"type": "date"},
      "id":                 {"type": "keyword"},
      "recipientId":        {"type": "keyword"},
      "recipient":          {"type": "keyword"},
      "channel":            {"type": "keyword"},
      "notificationType":   {"type": "keyword"},
      "subject":            {"type": "text"},
      "content":            {"type": "text"},
      "status":             {"type": "keyword"},
      "errorMessage":       {"type": "text"},
      "providerMessageId":  {"type": "keyword"},
      "campaignId":         {"type": "keyword"},
      "orderId":            {"type": "keyword"},
      "createdAt":          {"type": "date"},
      "updatedAt":          {"type": "date"}
    }
  }
}`

// Mirror indexes delivery-log rows. Failures are logged and never returned to the caller, since
// the PostgreSQL row is the record of truth.
type Mirror struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewMirror(client *elasticsearch.Client, index string, log logger.Logger) *Mirror {
	return &Mirror{client: client, index: index, logger: log}
}

type document struct {
	models.DeliveryLog
	Timestamp string `json:"@timestamp"`
}

// Mirror indexes row under its own id so a replayed row overwrites rather than duplicates.
func (m *Mirror) Mirror(ctx context.Context, row models.DeliveryLog) {
	if err := m.indexRow(ctx, row); err != nil {
		m.logger.Warn("audit mirror failed", map[string]interface{}{
			"logId": row.ID,
			"index": m.index,
			"error": err.Error(),
		})
	}
}

func (m *Mirror) indexRow(ctx context.Context, row models.DeliveryLog) error {
	body, err := json.Marshal(document{
		DeliveryLog: row,
		Timestamp:   row.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	res, err := m.client.Index(m.index, bytes.NewReader(body),
		m.client.Index.WithContext(ctx),
		m.client.Index.WithDocumentID(row.ID),
	)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index error: %s", res.Status())
	}
	return nil
}
