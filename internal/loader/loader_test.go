package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
)

func testLoader() *Loader {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress logs during testing
	return NewLoader(logger)
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadExpected(t *testing.T) {
	path := writeFixture(t, "expected.tsv",
		"Kids_First_Biospecimen_ID\tsample_id\tpathology_subtype\n"+
			"BS_1\t7316-1\tnon-WNT\n"+
			"BS_2\t7316-2\tGroup 3 or 4\n")

	rows, err := testLoader().LoadExpected(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "BS_1", rows[0].BiospecimenID)
	assert.Equal(t, "7316-1", rows[0].SampleID)
	assert.Equal(t, "non-WNT", rows[0].PathologyFreeText)
	assert.Equal(t, "Group 3 or 4", rows[1].PathologyFreeText)
}

func TestLoadObserved_IgnoresExtraColumns(t *testing.T) {
	path := writeFixture(t, "medulloPackage.tsv",
		"sample\tbest_fit\tp_value\tclassifier_version\n"+
			"BS_1\tGroup4\t0.001\tv2\n"+
			"BS_2\tSHH\t0.04\tv2\n")

	set, err := testLoader().LoadObserved("medulloPackage", path)
	require.NoError(t, err)
	assert.Equal(t, "medulloPackage", set.Classifier)
	require.Len(t, set.Records, 2)
	assert.Equal(t, domain.ObservedRecord{BiospecimenID: "BS_1", BestFit: "Group4"}, set.Records[0])
}

func TestLoadClinical(t *testing.T) {
	path := writeFixture(t, "clinical.tsv",
		"Kids_First_Participant_ID\tsample_id\texperimental_strategy\ttumor_descriptor\tKids_First_Biospecimen_ID\n"+
			"PT_1\t7316-1\tRNA-Seq\tInitial CNS Tumor\tBS_RNA_1\n"+
			"PT_1\t7316-1\tWGS\tInitial CNS Tumor\tBS_DNA_1\n")

	records, err := testLoader().LoadClinical(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "RNA-Seq", records[0].ExperimentalStrategy)
	assert.Equal(t, "BS_DNA_1", records[1].BiospecimenID)
}

func TestLoadExpected_MissingFileIsFatal(t *testing.T) {
	_, err := testLoader().LoadExpected(filepath.Join(t.TempDir(), "absent.tsv"))
	require.Error(t, err)

	var perr *domain.PipelineError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, domain.ErrInputLoad, perr.Code)
}

func TestLoadObserved_MissingColumn(t *testing.T) {
	path := writeFixture(t, "broken.tsv", "sample\tscore\nBS_1\t0.9\n")

	_, err := testLoader().LoadObserved("medulloPackage", path)
	require.Error(t, err)

	var serr *domain.SchemaError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "best_fit", serr.Column)
}

func TestLoadExpected_EmptyFile(t *testing.T) {
	path := writeFixture(t, "empty.tsv", "")

	_, err := testLoader().LoadExpected(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadExpected_ShortRowYieldsEmptyFields(t *testing.T) {
	path := writeFixture(t, "ragged.tsv",
		"Kids_First_Biospecimen_ID\tsample_id\tpathology_subtype\n"+
			"BS_1\t7316-1\n")

	rows, err := testLoader().LoadExpected(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].PathologyFreeText)
}
