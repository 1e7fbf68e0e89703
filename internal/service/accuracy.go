package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
)

// AccuracyEngine reconciles one classifier's predictions against the
// pathology expected subtypes.
type AccuracyEngine struct {
	logger *logrus.Logger
}

// NewAccuracyEngine creates a new accuracy engine.
func NewAccuracyEngine(logger *logrus.Logger) *AccuracyEngine {
	return &AccuracyEngine{logger: logger}
}

// ComputeAccuracy left-joins the expected subtypes onto the observed
// predictions by biospecimen id. Every observed record appears in the merged
// output; rows without pathology data carry a nil match flag and are
// excluded from the accuracy denominator. A prediction matches when it is a
// member of the (possibly ambiguous) expected candidate set; an empty
// prediction never matches.
func (e *AccuracyEngine) ComputeAccuracy(expected []domain.ExpectedRecord, observed domain.ObservedSet) domain.ClassifierResult {
	expectedByID := make(map[string]domain.ExpectedRecord, len(expected))
	for _, exp := range expected {
		expectedByID[exp.BiospecimenID] = exp
	}

	merged := make([]domain.MatchRecord, 0, len(observed.Records))
	matched, evaluated := 0, 0
	for _, obs := range observed.Records {
		rec := domain.MatchRecord{
			BiospecimenID:    obs.BiospecimenID,
			PredictedSubtype: obs.BestFit,
		}
		if exp, ok := expectedByID[obs.BiospecimenID]; ok {
			rec.SampleID = exp.SampleID
			if !exp.PathologySubtype.IsEmpty() {
				rec.PathologySubtype = exp.PathologySubtype
				match := exp.PathologySubtype.Contains(obs.BestFit)
				rec.Match = &match
				evaluated++
				if match {
					matched++
				}
			}
		}
		merged = append(merged, rec)
	}

	result := domain.ClassifierResult{
		Classifier:  observed.Classifier,
		Merged:      merged,
		AccuracyPct: formatAccuracy(matched, evaluated),
		Evaluated:   evaluated,
		Matched:     matched,
	}

	entry := e.logger.WithFields(logrus.Fields{
		"classifier": observed.Classifier,
		"observed":   len(observed.Records),
		"evaluated":  evaluated,
		"matched":    matched,
	})
	if result.AccuracyPct == "" {
		entry.Warn("No samples with pathology data; accuracy is undefined")
	} else {
		entry.WithField("accuracy", result.AccuracyPct).Info("Computed classifier accuracy")
	}
	return result
}

// formatAccuracy renders matched/evaluated as a percentage string rounded to
// two decimals with trailing zeros trimmed ("75%", "72.5%", "66.67%").
// Zero evaluated rows yield an empty string rather than a division failure.
func formatAccuracy(matched, evaluated int) string {
	if evaluated == 0 {
		return ""
	}
	pct := strconv.FormatFloat(float64(matched)/float64(evaluated)*100, 'f', 2, 64)
	pct = strings.TrimRight(pct, "0")
	pct = strings.TrimSuffix(pct, ".")
	return fmt.Sprintf("%s%%", pct)
}
