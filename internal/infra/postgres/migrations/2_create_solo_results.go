package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

const createSoloResultsSQL = `
CREATE TABLE IF NOT EXISTS solo_results (
	id BIGSERIAL PRIMARY KEY,
	player_name TEXT NOT NULL,
	score INT NOT NULL,
	total_questions INT NOT NULL,
	percentage DOUBLE PRECISION NOT NULL,
	total_points INT NOT NULL,
	difficulty TEXT NOT NULL,
	language TEXT NOT NULL,
	played_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createSoloResultsSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS solo_results`)
			return err
		},
	)
}
