// Package telemetry provides the observability sink for search
// diagnostics, backed by the process logger.
package telemetry

import (
	"context"

	"github.com/custodia-labs/ptsearch/internal/core/domain"
	"github.com/custodia-labs/ptsearch/internal/core/ports/driven"
	"github.com/custodia-labs/ptsearch/internal/logger"
)

// Ensure LogSink implements the interface.
var _ driven.QueryLog = (*LogSink)(nil)

// LogSink writes structured search records to the process logger.
type LogSink struct{}

// NewLogSink creates a logger-backed query log.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// RecordSearch emits one timing record. Recording never fails the
// search.
func (s *LogSink) RecordSearch(_ context.Context, stats domain.SearchStats) {
	logger.Info("search query_id=%s query=%q filter=%q results=%d code_query=%t embed=%s index=%s total=%s",
		stats.QueryID, stats.Query, string(stats.Filter), stats.ResultCount,
		stats.CodeQuery, stats.EmbedLatency, stats.SearchLatency, stats.TotalLatency)
}
