// Package postgres reads the regulation corpus from a Postgres table, for
// deployments where the corpus is curated in a database instead of a file.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/roadsign-assistant/internal/core/domain"
)

type CorpusRepository struct {
	db *sql.DB
}

func NewCorpusRepository(db *sql.DB) *CorpusRepository {
	return &CorpusRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// Load returns all corpus rows ordered by id. The id order is the stable
// insertion order the rest of the pipeline keys entry identity on.
func (r *CorpusRepository) Load(ctx context.Context) ([]domain.RawRecord, error) {
	const query = `
SELECT problem, category, sign_type, code, clause, description
FROM road_issues
ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query corpus rows: %w", err)
	}
	defer rows.Close()

	var out []domain.RawRecord
	for rows.Next() {
		var (
			problem     string
			category    sql.NullString
			signType    sql.NullString
			code        sql.NullString
			clause      sql.NullString
			description sql.NullString
		)
		if err := rows.Scan(&problem, &category, &signType, &code, &clause, &description); err != nil {
			return nil, fmt.Errorf("scan corpus row: %w", err)
		}
		out = append(out, domain.RawRecord{
			Problem:  problem,
			Category: category.String,
			SignType: signType.String,
			Code:     code.String,
			Clause:   clause.String,
			Text:     description.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corpus rows: %w", err)
	}
	return out, nil
}
