package recommend

import (
	"context"
	"fmt"

	"graphite/backend/internal/graph"
	"graphite/backend/internal/metrics"
	"graphite/backend/pkg/logger"

	"go.uber.org/zap"
)

// Engine ranks the attendees of stored events
type Engine struct {
	store  graph.Store
	logger *zap.Logger
}

// NewEngine creates a recommendation engine over a store
func NewEngine(store graph.Store) *Engine {
	return &Engine{
		store:  store,
		logger: logger.Named("recommend"),
	}
}

// GetRecommendations returns who viewerID should meet at eventID. A viewer
// without a portfolio gets an empty list. Store failures are returned, never
// reported as an empty list.
func (e *Engine) GetRecommendations(ctx context.Context, eventID, viewerID string) ([]Recommendation, error) {
	names, err := e.store.ListPortfolio(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}
	portfolio := graph.NewPortfolio(viewerID, names)
	if portfolio.Empty() {
		return []Recommendation{}, nil
	}

	view, err := graph.LoadEventView(ctx, e.store, eventID)
	if err != nil {
		return nil, err
	}

	recs := Rank(view, portfolio)
	for _, r := range recs {
		metrics.Recommendations.WithLabelValues(string(r.ReasonType)).Inc()
	}

	e.logger.Debug("Recommendations ranked",
		zap.String("event_id", eventID),
		zap.String("viewer_id", viewerID),
		zap.Int("attendees", len(view.Attendees)),
		zap.Int("recommendations", len(recs)),
	)
	return recs, nil
}
