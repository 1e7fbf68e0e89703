package domain

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// MB molecular subtype labels produced by the classifiers.
type Subtype string

const (
	SubtypeWNT    Subtype = "WNT"
	SubtypeSHH    Subtype = "SHH"
	SubtypeGroup3 Subtype = "Group3"
	SubtypeGroup4 Subtype = "Group4"
)

// SubtypeSet is the normalized form of a pathology subtype label: the set of
// candidate subtypes an ambiguous histological call is compatible with. A
// prediction agrees with the pathology call when it is a member of the set.
type SubtypeSet struct {
	tokens []string
}

// NewSubtypeSet builds a set from candidate tokens, dropping empties and
// duplicates while preserving first-seen order.
func NewSubtypeSet(tokens ...string) SubtypeSet {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return SubtypeSet{tokens: out}
}

// Contains reports whether the predicted label is one of the candidates.
// An empty prediction never matches, even against a non-empty set.
func (s SubtypeSet) Contains(predicted string) bool {
	if predicted == "" {
		return false
	}
	for _, t := range s.tokens {
		if t == predicted {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the set holds no candidates.
func (s SubtypeSet) IsEmpty() bool { return len(s.tokens) == 0 }

// Tokens returns a copy of the candidate labels.
func (s SubtypeSet) Tokens() []string {
	out := make([]string, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// String renders the canonical display form: candidates joined with commas
// and no spaces, e.g. "SHH,Group3,Group4".
func (s SubtypeSet) String() string { return strings.Join(s.tokens, ",") }

// MarshalJSON encodes the set in its display form so API responses carry
// "SHH,Group3,Group4" rather than an opaque object.
func (s SubtypeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the display form back into a set.
func (s *SubtypeSet) UnmarshalJSON(data []byte) error {
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	if joined == "" {
		*s = SubtypeSet{}
		return nil
	}
	*s = NewSubtypeSet(strings.Split(joined, ",")...)
	return nil
}

// ExpectedRecord is one pathology-reviewed sample: the ground-truth subtype
// call, possibly ambiguous. Only a subset of samples carries pathology data.
type ExpectedRecord struct {
	BiospecimenID    string     `json:"Kids_First_Biospecimen_ID"`
	SampleID         string     `json:"sample_id"`
	PathologySubtype SubtypeSet `json:"pathology_subtype"`
}

// ObservedRecord is one classifier prediction for one RNA biospecimen.
// Classifier-specific score columns are dropped at load time.
type ObservedRecord struct {
	BiospecimenID string `json:"sample"`
	BestFit       string `json:"best_fit"`
}

// ObservedSet is the named prediction table of a single classifier.
type ObservedSet struct {
	Classifier string           `json:"classifier"`
	Records    []ObservedRecord `json:"records"`
}

// ClinicalRecord is one row of the clinical subset table before the
// assay-type split.
type ClinicalRecord struct {
	ParticipantID        string `json:"Kids_First_Participant_ID"`
	SampleID             string `json:"sample_id"`
	ExperimentalStrategy string `json:"experimental_strategy"`
	TumorDescriptor      string `json:"tumor_descriptor"`
	BiospecimenID        string `json:"Kids_First_Biospecimen_ID"`
}

// MergedClinicalRecord is one RNA sample with its WGS counterpart joined on,
// when one exists. DNABiospecimenID is empty when no WGS row matched.
type MergedClinicalRecord struct {
	ParticipantID    string `json:"Kids_First_Participant_ID"`
	SampleID         string `json:"sample_id"`
	TumorDescriptor  string `json:"tumor_descriptor"`
	DNABiospecimenID string `json:"Kids_First_Biospecimen_ID_DNA,omitempty"`
	RNABiospecimenID string `json:"Kids_First_Biospecimen_ID_RNA"`
}

// MatchRecord is one observed prediction joined with its expected subtype.
// Match is nil when the sample has no pathology data; such rows never enter
// the accuracy denominator.
type MatchRecord struct {
	BiospecimenID    string     `json:"Kids_First_Biospecimen_ID"`
	SampleID         string     `json:"sample_id,omitempty"`
	PathologySubtype SubtypeSet `json:"pathology_subtype"`
	PredictedSubtype string     `json:"predicted_subtype"`
	Match            *bool      `json:"match,omitempty"`
}

// ClassifierResult is the outcome of reconciling one classifier against the
// pathology calls. AccuracyPct is empty when no joined row carried pathology
// data.
type ClassifierResult struct {
	Classifier  string        `json:"classifier"`
	Merged      []MatchRecord `json:"merged"`
	AccuracyPct string        `json:"accuracy_pct"`
	Evaluated   int           `json:"evaluated"`
	Matched     int           `json:"matched"`
}

// FinalRecord is the display projection of the consolidated table: the
// primary classifier's predictions annotated with pathology agreement.
type FinalRecord struct {
	BiospecimenID    string     `json:"Kids_First_Biospecimen_ID"`
	SampleID         string     `json:"sample_id"`
	PathologySubtype SubtypeSet `json:"pathology_subtype"`
	MolecularSubtype string     `json:"molecular_subtype"`
	Match            *bool      `json:"match,omitempty"`
}

// FinalExportRecord is the flat projection written to the results TSV.
// MolecularSubtype here already carries the "MB, " prefix.
type FinalExportRecord struct {
	ParticipantID    string `json:"Kids_First_Participant_ID"`
	SampleID         string `json:"sample_id"`
	DNABiospecimenID string `json:"Kids_First_Biospecimen_ID_DNA"`
	RNABiospecimenID string `json:"Kids_First_Biospecimen_ID_RNA"`
	MolecularSubtype string `json:"molecular_subtype"`
}

// FinalTables bundles the two presentation shapes of the consolidated output.
type FinalTables struct {
	Display []FinalRecord       `json:"display"`
	Export  []FinalExportRecord `json:"export"`
}

// RunRecord is one archived report run.
type RunRecord struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	Primary    string            `json:"primary_classifier"`
	Accuracies map[string]string `json:"accuracies"`
	Samples    int               `json:"samples"`
}

// SortFinalDisplay orders display rows ascending by biospecimen id.
func SortFinalDisplay(rows []FinalRecord) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].BiospecimenID < rows[j].BiospecimenID
	})
}

// SortFinalExport orders export rows ascending by RNA biospecimen id.
func SortFinalExport(rows []FinalExportRecord) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].RNABiospecimenID < rows[j].RNABiospecimenID
	})
}
