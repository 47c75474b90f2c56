package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"review_radar/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertDataset(ctx context.Context, d domain.RawDataset) error {
	_, err := r.db.ExecContext(ctx, upsertDatasetSQL, d.ID, d.Name, d.CSV)
	return err
}

// ReplaceCSV applies fn to the dataset's stored CSV under a row lock and
// persists the result. fn must be pure; it may run again if the transaction
// retries at the driver level.
func (r *Repo) ReplaceCSV(ctx context.Context, id string, fn func(current string) string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	if err := tx.QueryRowContext(ctx, selectCSVForUpdateSQL, id).Scan(&current); err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		return err
	}
	next := fn(current)
	if next != current {
		if _, err := tx.ExecContext(ctx, updateCSVSQL, next, id); err != nil {
			return fmt.Errorf("update dataset %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (r *Repo) LogImport(ctx context.Context, id string, st domain.ImportStats) error {
	_, err := r.db.ExecContext(ctx, insertImportLogSQL, id, st.RowsIn, st.Added, st.Updated)
	return err
}

func (r *Repo) GetDataset(ctx context.Context, id string) (domain.RawDataset, error) {
	return scanDataset(r.db.QueryRowContext(ctx, getDatasetSQL, id))
}

func (r *Repo) FindByName(ctx context.Context, name string) (domain.RawDataset, error) {
	return scanDataset(r.db.QueryRowContext(ctx, findByNameSQL, name))
}

func scanDataset(row *sql.Row) (domain.RawDataset, error) {
	var d domain.RawDataset
	if err := row.Scan(&d.ID, &d.Name, &d.CSV); err != nil {
		if err == sql.ErrNoRows {
			return domain.RawDataset{}, domain.ErrNotFound
		}
		return domain.RawDataset{}, err
	}
	return d, nil
}

func (r *Repo) ListDatasets(ctx context.Context) ([]domain.RawDataset, error) {
	rows, err := r.db.QueryContext(ctx, listDatasetsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RawDataset
	for rows.Next() {
		var d domain.RawDataset
		if err := rows.Scan(&d.ID, &d.Name, &d.CSV); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
