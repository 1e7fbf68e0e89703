package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aadamk/OpenPedCan-analysis/internal/archive"
	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
)

func testServer(t *testing.T, store *archive.SQLiteStore) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress logs during testing

	config := &domain.Config{
		Report: domain.ReportConfig{
			OutputDir: t.TempDir(),
			HTMLFile:  "report.html",
		},
		Server: domain.ServerConfig{
			Host:      "127.0.0.1",
			Port:      0,
			RateLimit: 100,
		},
		Logging: domain.LoggingConfig{Level: "error"},
	}
	return NewServer(logger, config, store)
}

func testArchive(t *testing.T) (*archive.SQLiteStore, *domain.RunRecord) {
	t.Helper()
	store, err := archive.NewSQLiteStore(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	run, err := store.SaveRun(context.Background(), "medulloPackage",
		[]domain.ClassifierResult{{Classifier: "medulloPackage", AccuracyPct: "75%", Evaluated: 4, Matched: 3}},
		[]domain.FinalExportRecord{{ParticipantID: "PT_1", SampleID: "7316-1", RNABiospecimenID: "BS_RNA_1", MolecularSubtype: "MB, Group3"}},
	)
	require.NoError(t, err)
	return store, run
}

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	s.router.ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	store, _ := testArchive(t)
	s := testServer(t, store)

	w := doRequest(s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestHandleAccuracy(t *testing.T) {
	store, run := testArchive(t)
	s := testServer(t, store)

	w := doRequest(s, http.MethodGet, "/api/v1/accuracy")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		RunID      string            `json:"run_id"`
		Accuracies map[string]string `json:"accuracies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, run.ID, body.RunID)
	assert.Equal(t, "75%", body.Accuracies["medulloPackage"])
}

func TestHandleGetRun(t *testing.T) {
	store, run := testArchive(t)
	s := testServer(t, store)

	w := doRequest(s, http.MethodGet, "/api/v1/runs/"+run.ID)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(s, http.MethodGet, "/api/v1/runs/no-such-run")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGetFinal(t *testing.T) {
	store, run := testArchive(t)
	s := testServer(t, store)

	w := doRequest(s, http.MethodGet, "/api/v1/runs/"+run.ID+"/final")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BS_RNA_1")
	assert.Contains(t, w.Body.String(), "MB, Group3")
}

func TestArchiveDisabled(t *testing.T) {
	s := testServer(t, nil)

	w := doRequest(s, http.MethodGet, "/api/v1/runs")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
