package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/meridaworks/talentd/internal/domain"
)

// CredentialRepository persists the credential similarity index.
type CredentialRepository struct {
	pool *pgxpool.Pool
}

func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

// SearchNearest returns the raw cosine distances of the closest credential
// rows. A non-empty country restricts the scan before ranking.
func (r *CredentialRepository) SearchNearest(ctx context.Context, embedding []float32, country string, limit int) ([]domain.IndexHit, error) {
	if limit <= 0 {
		limit = 20
	}
	vec := pgvector.NewVector(embedding)

	query := `
		SELECT employee_id, name, embedding <=> $1 AS distance
		FROM credential_index
		ORDER BY distance
		LIMIT $2`
	args := []any{vec, limit}
	if country != "" {
		query = `
		SELECT employee_id, name, embedding <=> $1 AS distance
		FROM credential_index
		WHERE country = $2
		ORDER BY distance
		LIMIT $3`
		args = []any{vec, country, limit}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []domain.IndexHit
	for rows.Next() {
		var hit domain.IndexHit
		if err := rows.Scan(&hit.EmployeeID, &hit.Label, &hit.Distance); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func (r *CredentialRepository) ListByEmployee(ctx context.Context, employeeID string) ([]domain.Credential, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT employee_id, name, issuer, issued_at, expires_at
		 FROM credential_index WHERE employee_id = $1 ORDER BY name`,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creds []domain.Credential
	for rows.Next() {
		var cred domain.Credential
		var issuer, issuedAt, expiresAt *string
		if err := rows.Scan(&cred.EmployeeID, &cred.Name, &issuer, &issuedAt, &expiresAt); err != nil {
			return nil, err
		}
		if issuer != nil {
			cred.Issuer = *issuer
		}
		if issuedAt != nil {
			cred.IssuedAt = *issuedAt
		}
		if expiresAt != nil {
			cred.ExpiresAt = *expiresAt
		}
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

// DistinctCountries lists the countries present in the index, for the
// filter picker.
func (r *CredentialRepository) DistinctCountries(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT country FROM credential_index WHERE country IS NOT NULL ORDER BY country`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var countries []string
	for rows.Next() {
		var country string
		if err := rows.Scan(&country); err != nil {
			return nil, err
		}
		countries = append(countries, country)
	}
	return countries, rows.Err()
}

func (r *CredentialRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM credential_index`).Scan(&count)
	return count, err
}

// ReplaceAll swaps the credential index atomically.
func (r *CredentialRepository) ReplaceAll(ctx context.Context, records []domain.CredentialRecord) error {
	return swapTable(ctx, r.pool, "credential_index", func(db dbtx) error {
		for _, rec := range records {
			_, err := db.Exec(ctx,
				`INSERT INTO credential_index (employee_id, name, issuer, issued_at, expires_at, country, context, embedding)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				rec.EmployeeID,
				rec.Name,
				nullableString(rec.Issuer),
				nullableString(rec.IssuedAt),
				nullableString(rec.ExpiresAt),
				nullableString(rec.Country),
				rec.Context,
				pgvector.NewVector(rec.Embedding),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
