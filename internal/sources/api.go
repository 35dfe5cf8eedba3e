package sources

import (
	"context"

	"github.com/newshub/newshub/internal/models"
)

// APICollector is a placeholder for sources that need authenticated API
// integrations (Twitter trends, Reddit, ...). Until a concrete integration
// lands it reports zero items and never errors.
type APICollector struct {
	source models.Source
}

func NewAPICollector(source models.Source) *APICollector {
	return &APICollector{source: source}
}

func (c *APICollector) Kind() string {
	return models.SourceKindAPI
}

func (c *APICollector) Collect(ctx context.Context) ([]models.RawItem, error) {
	return []models.RawItem{}, nil
}
