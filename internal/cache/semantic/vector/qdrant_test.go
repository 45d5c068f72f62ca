package vector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQdrantTestStore(t *testing.T, handler http.HandlerFunc) *QdrantStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := NewQdrantStore(QdrantConfig{
		APIBase:    srv.URL,
		APIKey:     "test-key",
		Collection: "sqlcache",
		Dimension:  2,
	})
	require.NoError(t, err)
	return store
}

func TestNewQdrantStoreValidation(t *testing.T) {
	_, err := NewQdrantStore(QdrantConfig{Collection: "c"})
	assert.Error(t, err)

	_, err = NewQdrantStore(QdrantConfig{APIBase: "http://localhost:6333"})
	assert.Error(t, err)
}

func TestQdrantSearchConvertsScoreToDistance(t *testing.T) {
	store := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/collections/sqlcache/points/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("api-key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(3), body["limit"])

		resp := map[string]any{"result": []map[string]any{
			{"id": "a", "score": 1.0, "payload": map[string]any{"prompt": "show users", "response": "SELECT * FROM users;"}},
			{"id": "b", "score": 0.9, "payload": map[string]any{"prompt": "show orders", "response": "SELECT * FROM orders;"}},
			{"id": "c", "score": 0.5, "payload": map[string]any{"prompt": "far", "response": "SELECT 1;"}},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	})

	results, err := store.Search(context.Background(), []float64{1, 0}, SearchOptions{TopK: 3, MaxDistance: 0.2})
	require.NoError(t, err)

	// score 0.5 is distance 0.5, beyond the bound.
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.InDelta(t, 0.0, results[0].Distance, 1e-9)
	assert.Equal(t, "show users", results[0].Payload.Prompt)
	assert.Equal(t, "b", results[1].ID)
	assert.InDelta(t, 0.1, results[1].Distance, 1e-9)
}

func TestQdrantSearchInclusiveBound(t *testing.T) {
	store := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"result": []map[string]any{
			{"id": "edge", "score": 0.75, "payload": map[string]any{"response": "SELECT 1;"}},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	})

	// distance = 1 - 0.75 = 0.25, exactly at the bound: included.
	results, err := store.Search(context.Background(), []float64{1, 0}, SearchOptions{TopK: 1, MaxDistance: 0.25})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "edge", results[0].ID)
}

func TestQdrantSearchErrorStatus(t *testing.T) {
	store := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":{"error":"collection not found"}}`, http.StatusNotFound)
	})

	_, err := store.Search(context.Background(), []float64{1, 0}, SearchOptions{TopK: 1, MaxDistance: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=404")
}

func TestQdrantUpsert(t *testing.T) {
	var captured struct {
		Points []qdrantPoint `json:"points"`
	}
	store := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/collections/sqlcache/points", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	})

	err := store.Upsert(context.Background(), Entry{
		ID:     "p1",
		Vector: []float64{1, 0},
		Payload: Payload{
			Prompt:      "show users",
			Response:    "SELECT * FROM users;",
			GeneratedAt: 1700000000,
		},
	})
	require.NoError(t, err)

	require.Len(t, captured.Points, 1)
	assert.Equal(t, "p1", captured.Points[0].ID)
	assert.Equal(t, []float64{1, 0}, captured.Points[0].Vector)
	assert.Equal(t, "show users", captured.Points[0].Payload.Prompt)
	assert.Equal(t, int64(1700000000), captured.Points[0].Payload.GeneratedAt)
}

func TestQdrantUpsertAssignsID(t *testing.T) {
	var captured struct {
		Points []qdrantPoint `json:"points"`
	}
	store := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, store.Upsert(context.Background(), Entry{Vector: []float64{1, 0}}))
	require.Len(t, captured.Points, 1)
	assert.NotEmpty(t, captured.Points[0].ID)
}

func TestQdrantEnsureCollectionCreatesWhenMissing(t *testing.T) {
	var created bool
	store := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/sqlcache/exists":
			_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"exists": false}})
		case r.Method == http.MethodPut && r.URL.Path == "/collections/sqlcache":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			vectors := body["vectors"].(map[string]any)
			assert.Equal(t, float64(2), vectors["size"])
			assert.Equal(t, "Cosine", vectors["distance"])
			created = true
			w.WriteHeader(http.StatusOK)
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	require.NoError(t, store.EnsureCollection(context.Background()))
	assert.True(t, created)
}

func TestQdrantEnsureCollectionSkipsWhenPresent(t *testing.T) {
	store := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/collections/sqlcache/exists" {
			_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"exists": true}})
			return
		}
		t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
	})

	require.NoError(t, store.EnsureCollection(context.Background()))
}

func TestQdrantPing(t *testing.T) {
	healthy := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(t, healthy.Ping(context.Background()))

	down := newQdrantTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	assert.Error(t, down.Ping(context.Background()))
}
