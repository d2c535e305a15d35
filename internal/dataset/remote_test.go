package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"mood-predictor/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/mood_log.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(sampleLog))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not,a,mood,log\n1,2,3,4\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSource_FetchCSV(t *testing.T) {
	srv := newLogServer(t)
	src := NewSource(5 * time.Second)
	ctx := context.Background()

	table, err := src.FetchCSV(ctx, srv.URL+"/mood_log.csv")
	require.NoError(t, err)
	assert.Len(t, table, 3)

	_, err = src.FetchCSV(ctx, srv.URL+"/missing.csv")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = src.FetchCSV(ctx, srv.URL+"/broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	_, err = src.FetchCSV(ctx, srv.URL+"/garbage")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSource_LoadDispatch(t *testing.T) {
	srv := newLogServer(t)
	src := NewSource(0)
	ctx := context.Background()

	table, err := src.Load(ctx, srv.URL+"/mood_log.csv")
	require.NoError(t, err)
	assert.Len(t, table, 3)

	_, err = src.Load(ctx, filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("https://example.com/log.csv"))
	assert.True(t, isURL("HTTP://example.com/log.csv"))
	assert.False(t, isURL("data/mood_log.csv"))
	assert.False(t, isURL("ftp://example.com/log.csv"))
}
