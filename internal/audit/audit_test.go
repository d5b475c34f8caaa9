package audit

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogger_WriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(filepath.Join(dir, "audit.jsonl"), "", 0, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, logger.Log(Entry{RequestID: "req-1", TenantID: "finance", Status: StatusSuccess}))
	require.NoError(t, logger.Log(Entry{RequestID: "req-2", TenantID: "finance", Status: StatusSuccess}))

	entries, err := logger.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "req-2", entries[0].RequestID, "most recent entry first")
	assert.Equal(t, "req-1", entries[1].RequestID)
}

func TestLogger_RecentRespectsLimit(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(filepath.Join(dir, "audit.jsonl"), "", 0, zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, logger.Log(Entry{RequestID: "req", TenantID: "t"}))
	}

	entries, err := logger.Recent(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLogger_RecentOnMissingFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(filepath.Join(dir, "nested", "audit.jsonl"), "", 0, zap.NewNop())
	require.NoError(t, err)

	entries, err := logger.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLogger_ShipsToSIEMWithoutBlocking(t *testing.T) {
	received := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- struct{}{}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dir := t.TempDir()
	logger, err := NewLogger(filepath.Join(dir, "audit.jsonl"), server.URL, time.Second, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, logger.Log(Entry{RequestID: "req-1", TenantID: "finance"}))

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("siem webhook was never called")
	}
}

func TestLogger_SIEMFailureDoesNotFailLog(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(filepath.Join(dir, "audit.jsonl"), "http://127.0.0.1:0", 100*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	err = logger.Log(Entry{RequestID: "req-1", TenantID: "finance"})
	assert.NoError(t, err)
}
