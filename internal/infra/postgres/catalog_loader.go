// Package postgres holds the pgx-backed catalog loader and the solo
// results repository.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizpin-service/internal/questionbank"
)

// CatalogLoader reads tiered question catalogs stored as JSONB, one row
// per language.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context, language string) (questionbank.Catalog, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_catalogs WHERE language=$1`, language).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, questionbank.ErrCatalogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", language, err)
	}
	var catalog questionbank.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("unmarshal catalog %s: %w", language, err)
	}
	return catalog, nil
}
