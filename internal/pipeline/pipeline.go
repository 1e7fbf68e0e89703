// Package pipeline runs one complete concordance report: load inputs,
// normalize pathology labels, merge clinical assay views, score every
// classifier, build the final tables and write the report artifacts.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aadamk/OpenPedCan-analysis/internal/archive"
	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
	"github.com/aadamk/OpenPedCan-analysis/internal/loader"
	"github.com/aadamk/OpenPedCan-analysis/internal/report"
	"github.com/aadamk/OpenPedCan-analysis/internal/service"
)

// Pipeline wires the pipeline stages together.
type Pipeline struct {
	logger   *logrus.Logger
	config   *domain.Config
	loader   *loader.Loader
	merger   *service.ClinicalMerger
	accuracy *service.AccuracyEngine
	final    *service.FinalTableBuilder
}

// Result is the outcome of one pipeline run.
type Result struct {
	Classifiers []domain.ClassifierResult
	Final       domain.FinalTables
	Run         *domain.RunRecord
	ExportPath  string
	ReportPath  string
	Elapsed     time.Duration
}

// New creates a pipeline for the given configuration.
func New(logger *logrus.Logger, config *domain.Config) *Pipeline {
	return &Pipeline{
		logger:   logger,
		config:   config,
		loader:   loader.NewLoader(logger),
		merger:   service.NewClinicalMerger(logger),
		accuracy: service.NewAccuracyEngine(logger),
		final:    service.NewFinalTableBuilder(logger),
	}
}

// Run executes the full report generation once. Input loading failures are
// fatal; everything downstream degrades to absent fields instead of failing.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	p.logger.WithFields(logrus.Fields{
		"expected":    p.config.Inputs.ExpectedPath,
		"clinical":    p.config.Inputs.ClinicalPath,
		"classifiers": len(p.config.Inputs.Classifiers),
	}).Info("Starting subtype concordance run")

	// Step 1: load and normalize the expected pathology subtypes
	expectedRows, err := p.loader.LoadExpected(p.config.Inputs.ExpectedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load expected subtypes: %w", err)
	}
	expected := service.NormalizeExpected(expectedRows)

	// Step 2: load and merge the clinical assay views
	clinicalRows, err := p.loader.LoadClinical(p.config.Inputs.ClinicalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load clinical subset: %w", err)
	}
	clinical := p.merger.Merge(clinicalRows)

	// Step 3: score every configured classifier
	result := &Result{}
	var primary *domain.ClassifierResult
	for _, c := range p.config.Inputs.Classifiers {
		observed, err := p.loader.LoadObserved(c.Name, c.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s predictions: %w", c.Name, err)
		}
		cr := p.accuracy.ComputeAccuracy(expected, observed)
		result.Classifiers = append(result.Classifiers, cr)
		if c.Name == p.config.Report.PrimaryClassifier {
			primary = &result.Classifiers[len(result.Classifiers)-1]
		}
	}
	if primary == nil {
		return nil, fmt.Errorf("primary classifier %q was not scored", p.config.Report.PrimaryClassifier)
	}

	// Step 4: consolidate the primary classifier with clinical identifiers
	result.Final = p.final.Build(primary.Merged, clinical)

	// Step 5: write the report artifacts
	writer, err := report.NewWriter(p.logger, p.config.Report.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare output directory: %w", err)
	}
	if result.ExportPath, err = writer.WriteExport(p.config.Report.ExportFile, result.Final.Export); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}
	if _, err = writer.WriteAccuracyChart(result.Classifiers); err != nil {
		return nil, fmt.Errorf("failed to write accuracy chart: %w", err)
	}
	if result.ReportPath, err = writer.WriteHTML(p.config.Report.HTMLFile, result.Classifiers, result.Final, primary.Classifier, p.config.Report.PageSize); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	// Step 6: archive the run
	if p.config.Archive.Enabled {
		store, err := archive.NewSQLiteStore(p.config.Archive.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open run archive: %w", err)
		}
		defer store.Close()
		if result.Run, err = store.SaveRun(ctx, primary.Classifier, result.Classifiers, result.Final.Export); err != nil {
			return nil, fmt.Errorf("failed to archive run: %w", err)
		}
	}

	result.Elapsed = time.Since(startTime)
	p.logger.WithFields(logrus.Fields{
		"classifiers": len(result.Classifiers),
		"final_rows":  len(result.Final.Display),
		"export_rows": len(result.Final.Export),
		"elapsed":     result.Elapsed,
	}).Info("Subtype concordance run completed")
	return result, nil
}
