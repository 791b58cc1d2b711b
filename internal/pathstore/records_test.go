package pathstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dgallion1/docforge/internal/compiler"
	"github.com/dgallion1/docforge/internal/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory pathstore KV endpoint.
type fakeStore struct {
	mu    sync.Mutex
	nodes map[string]json.RawMessage
	auth  []string
}

func newFakeStore(t *testing.T) (*fakeStore, *httptest.Server) {
	fs := &fakeStore{nodes: map[string]json.RawMessage{}}
	srv := httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(srv.Close)
	return fs, srv
}

func (f *fakeStore) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))

	key := strings.TrimPrefix(r.URL.Path, "/kv/")
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(key, "/*"):
		prefix := strings.TrimSuffix(key, "*")
		var nodes []ListChildrenResponse
		for k, v := range f.nodes {
			if strings.HasPrefix(k, prefix) {
				nodes = append(nodes, ListChildrenResponse{Key: strings.ReplaceAll(k, "/", "."), Value: v})
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"nodes": nodes})
	case r.Method == http.MethodGet:
		v, ok := f.nodes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(NodeResponse{Key: key, Value: v})
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.nodes[key] = req.Value
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodDelete:
		delete(f.nodes, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestRecords_PutThenRecord(t *testing.T) {
	fs, srv := newFakeStore(t)
	recs := NewRecords(NewClient(srv.URL+"/", "secret"), "")

	rec := &compiler.Record{
		ID:        "cr-7",
		Title:     "Change",
		Body:      json.RawMessage(`{"type":"doc","content":[{"type":"paragraph"}]}`),
		Approvers: []signature.Approver{{Name: "Ana", Category: "Legal"}},
	}
	require.NoError(t, recs.Put(context.Background(), rec))
	assert.Contains(t, fs.nodes, DefaultPrefix+"/cr-7")

	got, err := recs.Record(context.Background(), "cr-7")
	require.NoError(t, err)
	assert.Equal(t, "Change", got.Title)
	assert.JSONEq(t, string(rec.Body), string(got.Body))
	assert.Equal(t, rec.Approvers, got.Approvers)

	for _, h := range fs.auth {
		assert.Equal(t, "Bearer secret", h)
	}
}

func TestRecords_Missing(t *testing.T) {
	_, srv := newFakeStore(t)
	recs := NewRecords(NewClient(srv.URL, "k"), "")

	_, err := recs.Record(context.Background(), "nope")
	assert.ErrorIs(t, err, compiler.ErrRecordNotFound)

	_, err = recs.Record(context.Background(), "../etc")
	assert.ErrorIs(t, err, compiler.ErrRecordNotFound)
}

func TestRecords_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewRecords(NewClient(srv.URL, "k"), "").Record(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, compiler.ErrRecordNotFound)
	assert.Contains(t, err.Error(), "status 500")
}

func TestRecords_ListAndDelete(t *testing.T) {
	fs, srv := newFakeStore(t)
	recs := NewRecords(NewClient(srv.URL, "k"), "custom/prefix")
	ctx := context.Background()

	require.NoError(t, recs.Put(ctx, &compiler.Record{ID: "a", Title: "A", Organization: "Acme"}))
	require.NoError(t, recs.Put(ctx, &compiler.Record{ID: "b", Title: "B"}))
	fs.nodes["custom/prefix/legacy"] = json.RawMessage(`{"title":"Old"}`)

	list, err := recs.List(ctx, 10)
	require.NoError(t, err)
	byID := map[string]Summary{}
	for _, s := range list {
		byID[s.ID] = s
	}
	assert.Len(t, byID, 3)
	assert.Equal(t, "Acme", byID["a"].Organization)
	assert.Equal(t, "Old", byID["legacy"].Title, "id falls back to the key")

	require.NoError(t, recs.Delete(ctx, "a"))
	_, err = recs.Record(ctx, "a")
	assert.ErrorIs(t, err, compiler.ErrRecordNotFound)
}

func TestRecords_PutRejectsBadID(t *testing.T) {
	recs := NewRecords(NewClient("http://unused", "k"), "")
	err := recs.Put(context.Background(), &compiler.Record{ID: "a/b"})
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestValidID(t *testing.T) {
	for id, want := range map[string]bool{
		"cr-7":  true,
		"01HX":  true,
		"":      false,
		"..":    false,
		"a/b":   false,
		"a b":   false,
		"a?x=1": false,
	} {
		assert.Equal(t, want, ValidID(id), id)
	}
}
