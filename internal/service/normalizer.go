package service

import (
	"strings"

	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
	"github.com/aadamk/OpenPedCan-analysis/internal/loader"
)

// Ambiguous pathology calls rewritten into their candidate subtype lists.
// Anything not in this table passes through verbatim.
var ambiguousLabels = map[string][]string{
	"non-WNT":      {"SHH", "Group3", "Group4"},
	"Group 3 or 4": {"Group3", "Group4"},
}

// NormalizeLabel rewrites one pathology free-text label into its candidate
// subtype set. Spaces never survive normalization, so single-token labels
// like "Group 4" become "Group4".
func NormalizeLabel(label string) domain.SubtypeSet {
	label = strings.TrimSpace(label)
	if label == "" {
		return domain.NewSubtypeSet()
	}
	if tokens, ok := ambiguousLabels[label]; ok {
		return domain.NewSubtypeSet(tokens...)
	}
	return domain.NewSubtypeSet(strings.ReplaceAll(label, " ", ""))
}

// NormalizeExpected converts loaded expected-subtype rows into records with
// normalized candidate sets. Rows without pathology text keep an empty set.
func NormalizeExpected(rows []loader.ExpectedRow) []domain.ExpectedRecord {
	records := make([]domain.ExpectedRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, domain.ExpectedRecord{
			BiospecimenID:    r.BiospecimenID,
			SampleID:         r.SampleID,
			PathologySubtype: NormalizeLabel(r.PathologyFreeText),
		})
	}
	return records
}
