package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

const createQuestionCatalogsSQL = `
CREATE TABLE IF NOT EXISTS question_catalogs (
	language TEXT PRIMARY KEY,
	data JSONB NOT NULL
)`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createQuestionCatalogsSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS question_catalogs`)
			return err
		},
	)
}
