// Package metrics exposes the engine's operational counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TracksIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seiri_tracks_ingested_total",
		Help: "Tracks successfully committed to the catalog.",
	})

	IngestRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seiri_ingest_rejections_total",
		Help: "Files rejected during ingestion, by reason.",
	}, []string{"reason"})

	DuplicatesFlagged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seiri_duplicates_flagged_total",
		Help: "Ingested tracks flagged as probable duplicates.",
	})

	QueriesExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seiri_queries_total",
		Help: "Bang queries compiled and executed.",
	})

	QueryParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seiri_query_parse_errors_total",
		Help: "Bang expressions rejected by the parser.",
	})

	TracksOrphaned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seiri_tracks_orphaned_total",
		Help: "Catalog rows flagged orphaned by reconciliation.",
	})

	LibraryTracks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seiri_library_tracks",
		Help: "Current number of cataloged tracks.",
	})
)
