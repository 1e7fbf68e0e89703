// Package loader reads the three delimited-text inputs of the concordance
// report: pathology-reviewed expected subtypes, per-classifier prediction
// tables, and the clinical subset table. Columns are resolved by header name
// so upstream tables may carry extra classifier-specific columns.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
)

// Column names expected in the input tables.
const (
	colBiospecimenID        = "Kids_First_Biospecimen_ID"
	colParticipantID        = "Kids_First_Participant_ID"
	colSampleID             = "sample_id"
	colPathologySubtype     = "pathology_subtype"
	colExperimentalStrategy = "experimental_strategy"
	colTumorDescriptor      = "tumor_descriptor"
	colSample               = "sample"
	colBestFit              = "best_fit"
)

// ExpectedRow is one expected-subtype row as read from disk, before label
// normalization.
type ExpectedRow struct {
	BiospecimenID     string
	SampleID          string
	PathologyFreeText string
}

// Loader reads tab-delimited input tables.
type Loader struct {
	logger *logrus.Logger
}

// NewLoader creates a new input loader.
func NewLoader(logger *logrus.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadExpected reads the pathology expected-subtype table.
func (l *Loader) LoadExpected(path string) ([]ExpectedRow, error) {
	table, err := readTable(path, "expected", []string{colBiospecimenID, colSampleID, colPathologySubtype})
	if err != nil {
		return nil, err
	}

	rows := make([]ExpectedRow, 0, len(table.rows))
	for _, r := range table.rows {
		rows = append(rows, ExpectedRow{
			BiospecimenID:     table.field(r, colBiospecimenID),
			SampleID:          table.field(r, colSampleID),
			PathologyFreeText: table.field(r, colPathologySubtype),
		})
	}

	l.logger.WithFields(logrus.Fields{
		"path": path,
		"rows": len(rows),
	}).Info("Loaded expected pathology subtypes")
	return rows, nil
}

// LoadObserved reads one classifier's prediction table. Score and metadata
// columns beyond sample and best_fit are ignored.
func (l *Loader) LoadObserved(name, path string) (domain.ObservedSet, error) {
	table, err := readTable(path, name, []string{colSample, colBestFit})
	if err != nil {
		return domain.ObservedSet{}, err
	}

	records := make([]domain.ObservedRecord, 0, len(table.rows))
	for _, r := range table.rows {
		records = append(records, domain.ObservedRecord{
			BiospecimenID: table.field(r, colSample),
			BestFit:       table.field(r, colBestFit),
		})
	}

	l.logger.WithFields(logrus.Fields{
		"classifier": name,
		"path":       path,
		"rows":       len(records),
	}).Info("Loaded classifier predictions")
	return domain.ObservedSet{Classifier: name, Records: records}, nil
}

// LoadClinical reads the clinical subset table.
func (l *Loader) LoadClinical(path string) ([]domain.ClinicalRecord, error) {
	required := []string{colParticipantID, colSampleID, colExperimentalStrategy, colTumorDescriptor, colBiospecimenID}
	table, err := readTable(path, "clinical", required)
	if err != nil {
		return nil, err
	}

	records := make([]domain.ClinicalRecord, 0, len(table.rows))
	for _, r := range table.rows {
		records = append(records, domain.ClinicalRecord{
			ParticipantID:        table.field(r, colParticipantID),
			SampleID:             table.field(r, colSampleID),
			ExperimentalStrategy: table.field(r, colExperimentalStrategy),
			TumorDescriptor:      table.field(r, colTumorDescriptor),
			BiospecimenID:        table.field(r, colBiospecimenID),
		})
	}

	l.logger.WithFields(logrus.Fields{
		"path": path,
		"rows": len(records),
	}).Info("Loaded clinical subset")
	return records, nil
}

// table holds a parsed delimited file with a header-resolved column index.
type table struct {
	index map[string]int
	rows  [][]string
}

// field returns the named column of a row, empty when the row is short.
func (t *table) field(row []string, name string) string {
	i, ok := t.index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// readTable parses a tab-delimited file and verifies the required columns.
// Any read or parse failure is fatal to the run.
func readTable(path, name string, required []string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewPipelineError(domain.ErrInputLoad, fmt.Sprintf("cannot open %s table: %v", name, err), path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, domain.NewPipelineError(domain.ErrInputLoad, fmt.Sprintf("%s table is empty", name), path)
		}
		return nil, domain.NewPipelineError(domain.ErrInputLoad, fmt.Sprintf("cannot read %s header: %v", name, err), path)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, domain.NewSchemaError(name, col)
		}
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, domain.NewPipelineError(domain.ErrInputLoad, fmt.Sprintf("cannot parse %s table: %v", name, err), path)
		}
		rows = append(rows, record)
	}

	return &table{index: index, rows: rows}, nil
}
