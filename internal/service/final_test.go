package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
)

func boolPtr(v bool) *bool { return &v }

func TestFinalTableBuilder_DisplayInnerJoin(t *testing.T) {
	builder := NewFinalTableBuilder(testLogger())

	merged := []domain.MatchRecord{
		{BiospecimenID: "BS_RNA_2", SampleID: "7316-2", PathologySubtype: NormalizeLabel("SHH"), PredictedSubtype: "SHH", Match: boolPtr(true)},
		{BiospecimenID: "BS_RNA_1", SampleID: "7316-1", PathologySubtype: NormalizeLabel("WNT"), PredictedSubtype: "Group3", Match: boolPtr(false)},
		// No clinical counterpart: dropped from display.
		{BiospecimenID: "BS_RNA_9", SampleID: "7316-9", PredictedSubtype: "Group4"},
	}
	clinical := []domain.MergedClinicalRecord{
		{ParticipantID: "PT_1", SampleID: "7316-1", RNABiospecimenID: "BS_RNA_1", DNABiospecimenID: "BS_DNA_1"},
		{ParticipantID: "PT_2", SampleID: "7316-2", RNABiospecimenID: "BS_RNA_2"},
	}

	tables := builder.Build(merged, clinical)

	require.Len(t, tables.Display, 2)
	// Sorted ascending by biospecimen id.
	assert.Equal(t, "BS_RNA_1", tables.Display[0].BiospecimenID)
	assert.Equal(t, "BS_RNA_2", tables.Display[1].BiospecimenID)
	assert.Equal(t, "Group3", tables.Display[0].MolecularSubtype)
	require.NotNil(t, tables.Display[0].Match)
	assert.False(t, *tables.Display[0].Match)
}

func TestFinalTableBuilder_ExportCoversAllClinicalSamples(t *testing.T) {
	builder := NewFinalTableBuilder(testLogger())

	merged := []domain.MatchRecord{
		{BiospecimenID: "BS_RNA_1", SampleID: "7316-1", PredictedSubtype: "Group3", Match: boolPtr(true)},
	}
	clinical := []domain.MergedClinicalRecord{
		{ParticipantID: "PT_2", SampleID: "7316-2", RNABiospecimenID: "BS_RNA_2"},
		{ParticipantID: "PT_1", SampleID: "7316-1", RNABiospecimenID: "BS_RNA_1", DNABiospecimenID: "BS_DNA_1"},
	}

	tables := builder.Build(merged, clinical)

	require.Len(t, tables.Export, 2)
	// Sorted ascending by RNA biospecimen id.
	assert.Equal(t, "BS_RNA_1", tables.Export[0].RNABiospecimenID)
	assert.Equal(t, "MB, Group3", tables.Export[0].MolecularSubtype)
	assert.Equal(t, "BS_DNA_1", tables.Export[0].DNABiospecimenID)

	// Clinical sample without a prediction is exported as unclassified.
	assert.Equal(t, "BS_RNA_2", tables.Export[1].RNABiospecimenID)
	assert.Equal(t, "MB, To be classified", tables.Export[1].MolecularSubtype)
}

func TestFinalTableBuilder_EmptyPredictionExportsUnclassified(t *testing.T) {
	builder := NewFinalTableBuilder(testLogger())

	merged := []domain.MatchRecord{
		{BiospecimenID: "BS_RNA_1", PredictedSubtype: ""},
	}
	clinical := []domain.MergedClinicalRecord{
		{ParticipantID: "PT_1", SampleID: "7316-1", RNABiospecimenID: "BS_RNA_1"},
	}

	tables := builder.Build(merged, clinical)
	require.Len(t, tables.Export, 1)
	assert.Equal(t, "MB, To be classified", tables.Export[0].MolecularSubtype)
}

func TestFinalTableBuilder_SampleIDMismatchIsNotAJoin(t *testing.T) {
	builder := NewFinalTableBuilder(testLogger())

	merged := []domain.MatchRecord{
		{BiospecimenID: "BS_RNA_1", SampleID: "7316-OTHER", PredictedSubtype: "SHH", Match: boolPtr(true)},
	}
	clinical := []domain.MergedClinicalRecord{
		{ParticipantID: "PT_1", SampleID: "7316-1", RNABiospecimenID: "BS_RNA_1"},
	}

	tables := builder.Build(merged, clinical)
	assert.Empty(t, tables.Display)
	require.Len(t, tables.Export, 1)
	assert.Equal(t, "MB, To be classified", tables.Export[0].MolecularSubtype)
}

func TestFinalTableBuilder_NoPathologyRowStaysInDisplay(t *testing.T) {
	builder := NewFinalTableBuilder(testLogger())

	// Observed prediction without pathology data: the match record has no
	// sample id, so the join relies on the biospecimen id alone.
	merged := []domain.MatchRecord{
		{BiospecimenID: "BS_RNA_1", PredictedSubtype: "Group4"},
	}
	clinical := []domain.MergedClinicalRecord{
		{ParticipantID: "PT_1", SampleID: "7316-1", RNABiospecimenID: "BS_RNA_1"},
	}

	tables := builder.Build(merged, clinical)
	require.Len(t, tables.Display, 1)
	assert.Equal(t, "7316-1", tables.Display[0].SampleID)
	assert.Equal(t, "Group4", tables.Display[0].MolecularSubtype)
	assert.Nil(t, tables.Display[0].Match)
}
