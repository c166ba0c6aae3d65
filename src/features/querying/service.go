package querying

import (
	"context"
	"log/slog"

	"github.com/sunclx/seiri/src/features/metrics"
	"github.com/sunclx/seiri/src/music"
)

// Service compiles bang expressions and executes them against the catalog.
// It is stateless besides the catalog handle; queries are read-only and may
// run with unbounded concurrency.
type Service struct {
	catalog music.Catalog
}

// NewService creates a new querying service.
func NewService(catalog music.Catalog) *Service {
	return &Service{catalog: catalog}
}

// Query compiles and executes a bang expression, returning the matching
// tracks. A malformed expression returns a *ParseError.
func (s *Service) Query(ctx context.Context, expr string) ([]*music.Track, error) {
	compiled, err := Compile(expr)
	if err != nil {
		metrics.QueryParseErrors.Inc()
		slog.Debug("Query rejected", "expr", expr, "error", err)
		return nil, err
	}
	tracks, err := s.catalog.SelectTracks(ctx, compiled.Selection())
	if err != nil {
		return nil, err
	}
	metrics.QueriesExecuted.Inc()
	slog.Debug("Query executed", "expr", expr, "results", len(tracks))
	return tracks, nil
}

// GetTrack returns a single track by id.
func (s *Service) GetTrack(ctx context.Context, id int64) (*music.Track, error) {
	return s.catalog.GetTrack(ctx, id)
}
