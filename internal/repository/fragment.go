package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/meridaworks/talentd/internal/domain"
)

// FragmentRepository persists the document fragment similarity index.
type FragmentRepository struct {
	pool *pgxpool.Pool
}

func NewFragmentRepository(pool *pgxpool.Pool) *FragmentRepository {
	return &FragmentRepository{pool: pool}
}

func (r *FragmentRepository) SearchNearest(ctx context.Context, embedding []float32, limit int) ([]domain.FragmentHit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT employee_id, filename, page, text, embedding <=> $1 AS distance
		 FROM cv_fragments
		 ORDER BY distance
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []domain.FragmentHit
	for rows.Next() {
		var hit domain.FragmentHit
		if err := rows.Scan(&hit.EmployeeID, &hit.Filename, &hit.Page, &hit.Text, &hit.Distance); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// ListByFilename returns a document's fragments in sequence order.
func (r *FragmentRepository) ListByFilename(ctx context.Context, filename string) ([]domain.Fragment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT employee_id, filename, seq, page, text
		 FROM cv_fragments WHERE filename = $1 ORDER BY seq`,
		filename,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fragments []domain.Fragment
	for rows.Next() {
		var fragment domain.Fragment
		if err := rows.Scan(&fragment.EmployeeID, &fragment.Filename, &fragment.Seq, &fragment.Page, &fragment.Text); err != nil {
			return nil, err
		}
		fragments = append(fragments, fragment)
	}
	return fragments, rows.Err()
}

func (r *FragmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cv_fragments`).Scan(&count)
	return count, err
}

// CountDocuments returns the number of distinct source documents indexed.
func (r *FragmentRepository) CountDocuments(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(DISTINCT filename) FROM cv_fragments`).Scan(&count)
	return count, err
}

// ReplaceAll swaps the fragment index atomically.
func (r *FragmentRepository) ReplaceAll(ctx context.Context, fragments []domain.Fragment) error {
	return swapTable(ctx, r.pool, "cv_fragments", func(db dbtx) error {
		for _, fragment := range fragments {
			_, err := db.Exec(ctx,
				`INSERT INTO cv_fragments (employee_id, filename, seq, page, text, embedding)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				fragment.EmployeeID,
				fragment.Filename,
				fragment.Seq,
				fragment.Page,
				fragment.Text,
				pgvector.NewVector(fragment.Embedding),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
