package duckdb

import "github.com/mobilityiq/mobilityiq/internal/model"

// CatalogQuerier re-exports the model interface the store satisfies.
type CatalogQuerier = model.CatalogQuerier

var _ CatalogQuerier = (*Store)(nil)
