package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun() ([]domain.ClassifierResult, []domain.FinalExportRecord) {
	results := []domain.ClassifierResult{
		{Classifier: "medulloPackage", AccuracyPct: "75%", Evaluated: 4, Matched: 3},
		{Classifier: "medullo-classifier", AccuracyPct: "", Evaluated: 0, Matched: 0},
	}
	export := []domain.FinalExportRecord{
		{ParticipantID: "PT_1", SampleID: "7316-1", DNABiospecimenID: "BS_DNA_1", RNABiospecimenID: "BS_RNA_1", MolecularSubtype: "MB, Group3"},
		{ParticipantID: "PT_2", SampleID: "7316-2", RNABiospecimenID: "BS_RNA_2", MolecularSubtype: "MB, To be classified"},
	}
	return results, export
}

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "archive.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "Database file should exist")
}

func TestSQLiteStore_SaveRun(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	results, export := sampleRun()
	run, err := store.SaveRun(ctx, "medulloPackage", results, export)
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())
	assert.Equal(t, "medulloPackage", run.Primary)
	assert.Equal(t, 2, run.Samples)
	assert.Equal(t, "75%", run.Accuracies["medulloPackage"])
	assert.Equal(t, "", run.Accuracies["medullo-classifier"])
}

func TestSQLiteStore_GetRun(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	results, export := sampleRun()
	saved, err := store.SaveRun(ctx, "medulloPackage", results, export)
	require.NoError(t, err)

	got, err := store.GetRun(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "75%", got.Accuracies["medulloPackage"])

	missing, err := store.GetRun(ctx, "no-such-run")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteStore_GetFinalRows(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	results, export := sampleRun()
	run, err := store.SaveRun(ctx, "medulloPackage", results, export)
	require.NoError(t, err)

	rows, err := store.GetFinalRows(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "BS_RNA_1", rows[0].RNABiospecimenID)
	assert.Equal(t, "MB, Group3", rows[0].MolecularSubtype)
	assert.Equal(t, "MB, To be classified", rows[1].MolecularSubtype)
}

func TestSQLiteStore_ListRunsAndLatest(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	results, export := sampleRun()
	_, err := store.SaveRun(ctx, "medulloPackage", results, export)
	require.NoError(t, err)
	second, err := store.SaveRun(ctx, "medulloPackage", results, export)
	require.NoError(t, err)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	latest, err := store.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
}

func TestSQLiteStore_LatestRunEmpty(t *testing.T) {
	store := createTestStore(t)

	latest, err := store.LatestRun(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}
