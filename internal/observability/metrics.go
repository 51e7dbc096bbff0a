// Package observability exposes prometheus collectors for the record
// lifecycle and batch operations.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	recordsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "qrgen",
		Subsystem: "records",
		Name:      "created_total",
		Help:      "Number of QR records inserted into the store.",
	})
	recordsCleared = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "qrgen",
		Subsystem: "records",
		Name:      "cleared_total",
		Help:      "Number of delete-all operations performed.",
	})
	batchOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qrgen",
		Subsystem: "batch",
		Name:      "operations_total",
		Help:      "Batch operations started, by kind.",
	}, []string{"kind"})
	importRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qrgen",
		Subsystem: "batch",
		Name:      "import_rows_total",
		Help:      "Imported rows by outcome (success, skipped, error).",
	}, []string{"outcome"})
	exportPages = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "qrgen",
		Subsystem: "batch",
		Name:      "export_pages_total",
		Help:      "Pages written across all PDF exports.",
	})
)

func init() {
	prometheus.MustRegister(recordsCreated, recordsCleared, batchOps, importRows, exportPages)
}

// RecordCreated counts one inserted record.
func RecordCreated() {
	recordsCreated.Inc()
}

// RecordsCleared counts one delete-all operation.
func RecordsCleared() {
	recordsCleared.Inc()
}

// BatchStarted counts a started batch operation of the given kind.
func BatchStarted(kind string) {
	batchOps.WithLabelValues(kind).Inc()
}

// ImportRows adds the aggregate counts of a finished import run.
func ImportRows(success, skipped, errs int) {
	importRows.WithLabelValues("success").Add(float64(success))
	importRows.WithLabelValues("skipped").Add(float64(skipped))
	importRows.WithLabelValues("error").Add(float64(errs))
}

// ExportPages adds the page count of a finished export.
func ExportPages(pages int) {
	exportPages.Add(float64(pages))
}
