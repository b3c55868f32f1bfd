package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridaworks/talentd/internal/domain"
)

// IdentityRepository persists the employee roster.
type IdentityRepository struct {
	pool *pgxpool.Pool
}

func NewIdentityRepository(pool *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

func (r *IdentityRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.RosterEntry, error) {
	var entry domain.RosterEntry
	var email, role, country, leaderName, leaderEmail *string
	err := r.pool.QueryRow(ctx,
		`SELECT employee_id, name, email, role, country, leader_name, leader_email
		 FROM identities WHERE employee_id = $1`,
		employeeID,
	).Scan(&entry.EmployeeID, &entry.Name, &email, &role, &country, &leaderName, &leaderEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, err
	}
	applyOptional(&entry, email, role, country, leaderName, leaderEmail)
	return &entry, nil
}

func (r *IdentityRepository) ListAll(ctx context.Context) ([]domain.RosterEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT employee_id, name, email, role, country, leader_name, leader_email
		 FROM identities ORDER BY employee_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.RosterEntry
	for rows.Next() {
		var entry domain.RosterEntry
		var email, role, country, leaderName, leaderEmail *string
		if err := rows.Scan(&entry.EmployeeID, &entry.Name, &email, &role, &country, &leaderName, &leaderEmail); err != nil {
			return nil, err
		}
		applyOptional(&entry, email, role, country, leaderName, leaderEmail)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *IdentityRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM identities`).Scan(&count)
	return count, err
}

// ReplaceAll swaps the roster atomically.
func (r *IdentityRepository) ReplaceAll(ctx context.Context, entries []domain.RosterEntry) error {
	return swapTable(ctx, r.pool, "identities", func(db dbtx) error {
		for _, entry := range entries {
			var leaderName, leaderEmail *string
			if entry.Leader != nil {
				leaderName = nullableString(entry.Leader.Name)
				leaderEmail = nullableString(entry.Leader.Email)
			}
			_, err := db.Exec(ctx,
				`INSERT INTO identities (employee_id, name, email, role, country, leader_name, leader_email)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				entry.EmployeeID,
				entry.Name,
				nullableString(entry.Email),
				nullableString(entry.Role),
				nullableString(entry.Country),
				leaderName,
				leaderEmail,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func applyOptional(entry *domain.RosterEntry, email, role, country, leaderName, leaderEmail *string) {
	if email != nil {
		entry.Email = *email
	}
	if role != nil {
		entry.Role = *role
	}
	if country != nil {
		entry.Country = *country
	}
	if leaderName != nil {
		entry.Leader = &domain.Leader{Name: *leaderName}
		if leaderEmail != nil {
			entry.Leader.Email = *leaderEmail
		}
	}
}
