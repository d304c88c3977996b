package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/zkforge/rollup-forger/tracker"
)

type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Put(key, value []byte) error {
	m.data[string(key)] = value
	return nil
}

func (m *memStore) Get(key []byte) ([]byte, error) {
	return m.data[string(key)], nil
}

func (m *memStore) Close() error { return nil }

func testRouter(t *testing.T) (*memStore, *tracker.Tracker, http.Handler) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := newMemStore()
	tr, err := tracker.New(store, log)
	require.NoError(t, err)
	return store, tr, Router(store, tr, log)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	_, _, h := testRouter(t)
	rec := get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusReportsPending(t *testing.T) {
	store, tr, h := testRouter(t)
	require.NoError(t, tr.Track(4))
	require.NoError(t, tr.Track(5))
	require.NoError(t, store.Put([]byte("last_block"), []byte{0x10}))

	rec := get(t, h, "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		LastBlock      uint64   `json:"last_block"`
		PendingBatches []uint64 `json:"pending_batches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, uint64(0x10), body.LastBlock)
	require.Equal(t, []uint64{4, 5}, body.PendingBatches)
}

func TestBatchLookup(t *testing.T) {
	store, _, h := testRouter(t)
	require.NoError(t, store.Put([]byte("forged_3"), []byte(`{"batch_num":3}`)))

	rec := get(t, h, "/batch/3")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"batch_num":3}`, rec.Body.String())

	require.Equal(t, http.StatusNotFound, get(t, h, "/batch/9").Code)
	require.Equal(t, http.StatusBadRequest, get(t, h, "/batch/abc").Code)
}
