// Package report writes the presentation outputs of a concordance run: the
// flat TSV export, the per-classifier accuracy chart, and the searchable
// HTML report.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
)

// exportHeader is the fixed column order of the results TSV.
var exportHeader = []string{
	"Kids_First_Participant_ID",
	"sample_id",
	"Kids_First_Biospecimen_ID_DNA",
	"Kids_First_Biospecimen_ID_RNA",
	"molecular_subtype",
}

// Writer emits report artifacts into one output directory.
type Writer struct {
	logger    *logrus.Logger
	outputDir string
}

// NewWriter creates a report writer rooted at outputDir, creating the
// directory if needed.
func NewWriter(logger *logrus.Logger, outputDir string) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{logger: logger, outputDir: outputDir}, nil
}

// WriteExport writes the final export table as tab-separated text with a
// header row, no quoting and no row index.
func (w *Writer) WriteExport(filename string, rows []domain.FinalExportRecord) (string, error) {
	path := filepath.Join(w.outputDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", domain.NewPipelineError(domain.ErrReportWrite, fmt.Sprintf("cannot create export file: %v", err), path)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.Comma = '\t'

	if err := cw.Write(exportHeader); err != nil {
		return "", domain.NewPipelineError(domain.ErrReportWrite, fmt.Sprintf("cannot write export header: %v", err), path)
	}
	for _, r := range rows {
		record := []string{r.ParticipantID, r.SampleID, r.DNABiospecimenID, r.RNABiospecimenID, r.MolecularSubtype}
		if err := cw.Write(record); err != nil {
			return "", domain.NewPipelineError(domain.ErrReportWrite, fmt.Sprintf("cannot write export row: %v", err), path)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", domain.NewPipelineError(domain.ErrReportWrite, fmt.Sprintf("cannot flush export file: %v", err), path)
	}

	w.logger.WithFields(logrus.Fields{
		"path": path,
		"rows": len(rows),
	}).Info("Wrote molecular subtype export")
	return path, nil
}
