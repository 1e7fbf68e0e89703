package service

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
)

// Assay types recognized by the clinical split.
const (
	strategyRNASeq = "RNA-Seq"
	strategyWGS    = "WGS"
)

// clinicalKey joins the RNA and DNA views of the same tumor sample.
type clinicalKey struct {
	SampleID        string
	ParticipantID   string
	TumorDescriptor string
}

// ClinicalMerger pairs each RNA-Seq clinical row with its WGS counterpart.
type ClinicalMerger struct {
	logger *logrus.Logger
}

// NewClinicalMerger creates a new clinical splitter/merger.
func NewClinicalMerger(logger *logrus.Logger) *ClinicalMerger {
	return &ClinicalMerger{logger: logger}
}

// Merge splits the clinical table by assay type and joins the WGS view onto
// the RNA-Seq view on (sample, participant, tumor descriptor). Every RNA row
// survives; the DNA biospecimen id stays empty when no WGS row matched.
// Rows with other experimental strategies are ignored.
func (m *ClinicalMerger) Merge(clinical []domain.ClinicalRecord) []domain.MergedClinicalRecord {
	dnaByKey := make(map[clinicalKey]string)
	var rnaRows []domain.ClinicalRecord
	for _, r := range clinical {
		switch r.ExperimentalStrategy {
		case strategyRNASeq:
			rnaRows = append(rnaRows, r)
		case strategyWGS:
			dnaByKey[clinicalKey{r.SampleID, r.ParticipantID, r.TumorDescriptor}] = r.BiospecimenID
		}
	}

	merged := make([]domain.MergedClinicalRecord, 0, len(rnaRows))
	paired := 0
	for _, r := range rnaRows {
		dnaID := dnaByKey[clinicalKey{r.SampleID, r.ParticipantID, r.TumorDescriptor}]
		if dnaID != "" {
			paired++
		}
		merged = append(merged, domain.MergedClinicalRecord{
			ParticipantID:    r.ParticipantID,
			SampleID:         r.SampleID,
			TumorDescriptor:  r.TumorDescriptor,
			DNABiospecimenID: dnaID,
			RNABiospecimenID: r.BiospecimenID,
		})
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].RNABiospecimenID < merged[j].RNABiospecimenID
	})

	m.logger.WithFields(logrus.Fields{
		"clinical_rows": len(clinical),
		"rna_samples":   len(merged),
		"dna_paired":    paired,
	}).Info("Merged clinical assay views")
	return merged
}
