package hn

import (
	"context"
	"time"

	"github.com/matheuskafuri/hnstories/internal/story"
	"go.uber.org/zap"
)

var _ Searcher = (*LoggingSearcher)(nil)

// LoggingSearcher wraps a Searcher with a log line per search.
type LoggingSearcher struct {
	next   Searcher
	logger *zap.Logger
}

func NewLoggingSearcher(next Searcher, logger *zap.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, logger: logger}
}

func (s *LoggingSearcher) Search(ctx context.Context, term string) ([]story.Story, error) {
	begin := time.Now()
	hits, err := s.next.Search(ctx, term)
	if err != nil {
		s.logger.Warn("search failed",
			zap.String("term", term),
			zap.Duration("duration", time.Since(begin)),
			zap.Error(err),
		)
		return nil, err
	}
	s.logger.Info("search",
		zap.String("term", term),
		zap.Int("hits", len(hits)),
		zap.Duration("duration", time.Since(begin)),
	)
	return hits, nil
}
