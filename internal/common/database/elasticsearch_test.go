package database

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"laundry-workers/internal/common/config"
	"laundry-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type esCall struct {
	method string
	path   string
	body   string
}

// fakeES answers HEAD /{index} with existsStatus and PUT /{index} with createStatus.
func fakeES(t *testing.T, existsStatus, createStatus int, createBody string) (*ElasticsearchClient, *[]esCall) {
	t.Helper()
	var mu sync.Mutex
	var calls []esCall

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, esCall{method: r.Method, path: r.URL.Path, body: string(data)})
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(existsStatus)
		case http.MethodPut:
			w.WriteHeader(createStatus)
			_, _ = w.Write([]byte(createBody))
		default:
			_, _ = w.Write([]byte(`{"tagline":"You Know, for Search"}`))
		}
	}))
	t.Cleanup(srv.Close)

	es, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, &calls
}

func TestNewElasticsearch_RequiresAddresses(t *testing.T) {
	_, err := NewElasticsearch(config.ElasticsearchConfig{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidationFailed))
}

func TestEnsureIndex(t *testing.T) {
	const mapping = `{"mappings":{"properties":{"status":{"type":"keyword"}}}}`
	ctx := context.Background()

	t.Run("existing index is left alone", func(t *testing.T) {
		es, calls := fakeES(t, http.StatusOK, http.StatusOK, `{}`)
		require.NoError(t, es.EnsureIndex(ctx, "audit", mapping))
		require.Len(t, *calls, 1)
		assert.Equal(t, http.MethodHead, (*calls)[0].method)
	})

	t.Run("missing index is created with mapping", func(t *testing.T) {
		es, calls := fakeES(t, http.StatusNotFound, http.StatusOK, `{"acknowledged":true}`)
		require.NoError(t, es.EnsureIndex(ctx, "audit", mapping))
		require.Len(t, *calls, 2)
		assert.Equal(t, http.MethodPut, (*calls)[1].method)
		assert.Equal(t, "/audit", (*calls)[1].path)
		assert.JSONEq(t, mapping, (*calls)[1].body)
	})

	t.Run("lost create race is success", func(t *testing.T) {
		es, _ := fakeES(t, http.StatusNotFound, http.StatusBadRequest,
			`{"error":{"type":"resource_already_exists_exception"},"status":400}`)
		assert.NoError(t, es.EnsureIndex(ctx, "audit", mapping))
	})

	t.Run("create rejected", func(t *testing.T) {
		es, _ := fakeES(t, http.StatusNotFound, http.StatusBadRequest,
			`{"error":{"type":"mapper_parsing_exception"},"status":400}`)
		err := es.EnsureIndex(ctx, "audit", mapping)
		assert.True(t, errors.IsCode(err, errors.ErrCodeExternalService))
	})

	t.Run("cluster unhealthy", func(t *testing.T) {
		es, calls := fakeES(t, http.StatusInternalServerError, http.StatusOK, `{}`)
		err := es.EnsureIndex(ctx, "audit", mapping)
		assert.True(t, errors.IsCode(err, errors.ErrCodeExternalService))
		assert.Len(t, *calls, 1)
	})
}

func TestElasticsearchPing(t *testing.T) {
	es, _ := fakeES(t, http.StatusOK, http.StatusOK, `{}`)
	assert.NoError(t, es.Ping(context.Background()))
}
