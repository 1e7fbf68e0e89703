package service

import (
	"github.com/sirupsen/logrus"

	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
)

// Molecular subtype prefix used in the export table. Samples without a
// prediction export as "MB, To be classified".
const (
	subtypePrefix  = "MB, "
	toBeClassified = "To be classified"
)

// FinalTableBuilder merges the primary classifier's reconciled predictions
// with the clinical identifiers and emits the two presentation shapes.
type FinalTableBuilder struct {
	logger *logrus.Logger
}

// NewFinalTableBuilder creates a new final table builder.
func NewFinalTableBuilder(logger *logrus.Logger) *FinalTableBuilder {
	return &FinalTableBuilder{logger: logger}
}

// Build joins match records with merged clinical rows on the RNA biospecimen
// id (and sample id, where the match record carries one).
//
// The display table is the inner join, sorted by biospecimen id: predictions
// for samples present in the clinical subset. The export table covers every
// clinical RNA sample, sorted by RNA biospecimen id, with the molecular
// subtype prefixed "MB, " or "MB, To be classified" when no prediction
// exists.
func (b *FinalTableBuilder) Build(merged []domain.MatchRecord, clinical []domain.MergedClinicalRecord) domain.FinalTables {
	matchByRNA := make(map[string]domain.MatchRecord, len(merged))
	for _, m := range merged {
		matchByRNA[m.BiospecimenID] = m
	}

	var display []domain.FinalRecord
	export := make([]domain.FinalExportRecord, 0, len(clinical))
	for _, c := range clinical {
		m, ok := matchByRNA[c.RNABiospecimenID]
		if ok && m.SampleID != "" && m.SampleID != c.SampleID {
			// Same aliquot id under a different sample id is a join
			// mismatch, not a prediction.
			ok = false
		}
		if ok {
			display = append(display, domain.FinalRecord{
				BiospecimenID:    c.RNABiospecimenID,
				SampleID:         c.SampleID,
				PathologySubtype: m.PathologySubtype,
				MolecularSubtype: m.PredictedSubtype,
				Match:            m.Match,
			})
		}

		export = append(export, domain.FinalExportRecord{
			ParticipantID:    c.ParticipantID,
			SampleID:         c.SampleID,
			DNABiospecimenID: c.DNABiospecimenID,
			RNABiospecimenID: c.RNABiospecimenID,
			MolecularSubtype: exportSubtype(m, ok),
		})
	}

	domain.SortFinalDisplay(display)
	domain.SortFinalExport(export)

	b.logger.WithFields(logrus.Fields{
		"display_rows": len(display),
		"export_rows":  len(export),
	}).Info("Built final output tables")
	return domain.FinalTables{Display: display, Export: export}
}

// exportSubtype renders the prefixed molecular subtype of one export row.
func exportSubtype(m domain.MatchRecord, ok bool) string {
	if !ok || m.PredictedSubtype == "" {
		return subtypePrefix + toBeClassified
	}
	return subtypePrefix + m.PredictedSubtype
}
