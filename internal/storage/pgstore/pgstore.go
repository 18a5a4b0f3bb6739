// Package pgstore keeps the vocabulary snapshot in a PostgreSQL table, one
// row per record with an explicit position column preserving order.
package pgstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/postgres"
)

const tableName = "tag_records"

const schema = `CREATE TABLE IF NOT EXISTS tag_records (
	position    INTEGER PRIMARY KEY,
	tag         TEXT NOT NULL,
	category    TEXT NOT NULL DEFAULT '',
	subcategory TEXT NOT NULL DEFAULT '',
	translation TEXT NOT NULL DEFAULT ''
)`

type Store struct {
	client *postgres.Client
}

func New(client *postgres.Client) *Store {
	return &Store{client: client}
}

// EnsureSchema creates the table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.client.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating %s: %w", tableName, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) ([]vocabulary.Record, error) {
	rows, err := s.client.DB.QueryContext(ctx,
		`SELECT tag, category, subcategory, translation FROM tag_records ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", tableName, err)
	}
	defer rows.Close()

	var records []vocabulary.Record
	for rows.Next() {
		var r vocabulary.Record
		if err := rows.Scan(&r.Tag, &r.Category, &r.Subcategory, &r.Translation); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", tableName, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Save replaces the table content with records inside one transaction,
// bulk-loading rows with COPY.
func (s *Store) Save(ctx context.Context, records []vocabulary.Record) error {
	return s.client.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tag_records`); err != nil {
			return fmt.Errorf("clearing %s: %w", tableName, err)
		}
		stmt, err := tx.PrepareContext(ctx,
			pq.CopyIn(tableName, "position", "tag", "category", "subcategory", "translation"))
		if err != nil {
			return fmt.Errorf("preparing copy: %w", err)
		}
		defer stmt.Close()
		for i, r := range records {
			if _, err := stmt.ExecContext(ctx, int64(i), r.Tag, r.Category, r.Subcategory, r.Translation); err != nil {
				return fmt.Errorf("copying record %d: %w", i, err)
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			return fmt.Errorf("flushing copy: %w", err)
		}
		return nil
	})
}
