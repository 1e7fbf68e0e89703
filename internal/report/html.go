package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
)

// tableColumns is the column order shared by the classifier and final tables.
var tableColumns = []string{
	"Kids_First_Biospecimen_ID",
	"sample_id",
	"pathology_subtype",
	"molecular_subtype",
	"match",
}

// htmlTable is one rendered table section of the report.
type htmlTable struct {
	ID       string
	Title    string
	Subtitle string
	Columns  []string
	Rows     [][]string
}

// reportData feeds the report template.
type reportData struct {
	Title       string
	GeneratedAt string
	PageSize    int
	ChartFile   string
	Tables      []htmlTable
}

// WriteHTML renders the concordance report: one searchable table per
// classifier, the final consolidated table, and the accuracy chart.
func (w *Writer) WriteHTML(filename string, results []domain.ClassifierResult, final domain.FinalTables, primary string, pageSize int) (string, error) {
	data := reportData{
		Title:       "Medulloblastoma molecular subtype concordance",
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		PageSize:    pageSize,
		ChartFile:   chartFile,
	}

	for i, r := range results {
		subtitle := "Accuracy: undefined (no samples with pathology data)"
		if r.AccuracyPct != "" {
			subtitle = fmt.Sprintf("Accuracy: %s (%d/%d samples with pathology data)", r.AccuracyPct, r.Matched, r.Evaluated)
		}
		data.Tables = append(data.Tables, htmlTable{
			ID:       fmt.Sprintf("classifier-%d", i),
			Title:    r.Classifier,
			Subtitle: subtitle,
			Columns:  tableColumns,
			Rows:     matchRows(r.Merged),
		})
	}
	data.Tables = append(data.Tables, htmlTable{
		ID:       "final",
		Title:    fmt.Sprintf("Final (%s with clinical)", primary),
		Subtitle: fmt.Sprintf("%d samples in both the prediction and clinical tables", len(final.Display)),
		Columns:  tableColumns,
		Rows:     finalRows(final.Display),
	})

	path := filepath.Join(w.outputDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", domain.NewPipelineError(domain.ErrReportWrite, fmt.Sprintf("cannot create report file: %v", err), path)
	}
	defer f.Close()

	if err := reportTemplate.Execute(f, data); err != nil {
		return "", domain.NewPipelineError(domain.ErrReportWrite, fmt.Sprintf("failed to render report: %v", err), path)
	}

	w.logger.WithFields(logrus.Fields{
		"path":   path,
		"tables": len(data.Tables),
	}).Info("Wrote HTML report")
	return path, nil
}

// matchRows flattens the merged match records for display.
func matchRows(records []domain.MatchRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, m := range records {
		rows = append(rows, []string{
			m.BiospecimenID,
			m.SampleID,
			m.PathologySubtype.String(),
			m.PredictedSubtype,
			matchCell(m.Match),
		})
	}
	return rows
}

// finalRows flattens the final display records.
func finalRows(records []domain.FinalRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.BiospecimenID,
			r.SampleID,
			r.PathologySubtype.String(),
			r.MolecularSubtype,
			matchCell(r.Match),
		})
	}
	return rows
}

// matchCell renders the three-valued match flag. Samples without pathology
// data show an empty cell, not "false".
func matchCell(match *bool) string {
	if match == nil {
		return ""
	}
	if *match {
		return "TRUE"
	}
	return "FALSE"
}

// reportTemplate is a self-contained page: per-column filter inputs, click
// sorting and fixed-size pagination run client-side, no server round trips.
var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 1.5em; }
h2 { margin-bottom: 0.1em; }
p.subtitle { margin-top: 0; color: #444; }
table { border-collapse: collapse; margin-bottom: 0.5em; display: block; overflow-x: auto; white-space: nowrap; }
th { background: #2c5f8a; color: #fff; padding: 6px 10px; cursor: pointer; }
td { border: 1px solid #ccc; padding: 4px 10px; }
tr:nth-child(even) { background: #f4f7fa; }
input.filter { width: 95%; box-sizing: border-box; }
.pager button { margin-right: 4px; }
iframe { border: none; width: 720px; height: 420px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Generated {{.GeneratedAt}}</p>
<iframe src="{{.ChartFile}}" title="classifier accuracy"></iframe>
{{range .Tables}}
<h2>{{.Title}}</h2>
<p class="subtitle">{{.Subtitle}}</p>
<table id="{{.ID}}" data-page-size="{{$.PageSize}}">
<thead>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
<tr>{{range .Columns}}<th><input class="filter" placeholder="filter"></th>{{end}}</tr>
</thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
<div class="pager" data-table="{{.ID}}"></div>
{{end}}
<script>
document.querySelectorAll("table").forEach(function (table) {
  var pageSize = parseInt(table.dataset.pageSize, 10) || 5;
  var rows = Array.prototype.slice.call(table.tBodies[0].rows);
  var page = 0;
  var sortCol = -1, sortAsc = true;
  var pager = document.querySelector('.pager[data-table="' + table.id + '"]');
  var filters = table.tHead.rows[1].querySelectorAll("input.filter");

  function visibleRows() {
    return rows.filter(function (row) {
      for (var i = 0; i < filters.length; i++) {
        var needle = filters[i].value.toLowerCase();
        if (needle && row.cells[i].textContent.toLowerCase().indexOf(needle) < 0) return false;
      }
      return true;
    });
  }

  function render() {
    var visible = visibleRows();
    if (sortCol >= 0) {
      visible.sort(function (a, b) {
        var x = a.cells[sortCol].textContent, y = b.cells[sortCol].textContent;
        return (x < y ? -1 : x > y ? 1 : 0) * (sortAsc ? 1 : -1);
      });
    }
    var pages = Math.max(1, Math.ceil(visible.length / pageSize));
    if (page >= pages) page = pages - 1;
    var body = table.tBodies[0];
    body.innerHTML = "";
    visible.slice(page * pageSize, (page + 1) * pageSize).forEach(function (row) { body.appendChild(row); });
    pager.innerHTML = "";
    for (var p = 0; p < pages; p++) {
      var btn = document.createElement("button");
      btn.textContent = p + 1;
      btn.disabled = p === page;
      btn.addEventListener("click", (function (n) { return function () { page = n; render(); }; })(p));
      pager.appendChild(btn);
    }
  }

  table.tHead.rows[0].querySelectorAll("th").forEach(function (th, i) {
    th.addEventListener("click", function () {
      sortAsc = sortCol === i ? !sortAsc : true;
      sortCol = i;
      render();
    });
  });
  filters.forEach(function (input) {
    input.addEventListener("input", function () { page = 0; render(); });
  });
  render();
});
</script>
</body>
</html>
`))
