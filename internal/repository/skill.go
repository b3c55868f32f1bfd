package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/meridaworks/talentd/internal/domain"
)

// SkillRepository persists the skill similarity index.
type SkillRepository struct {
	pool *pgxpool.Pool
}

func NewSkillRepository(pool *pgxpool.Pool) *SkillRepository {
	return &SkillRepository{pool: pool}
}

func (r *SkillRepository) SearchNearest(ctx context.Context, embedding []float32, limit int) ([]domain.IndexHit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT employee_id, name, embedding <=> $1 AS distance
		 FROM skill_index
		 ORDER BY distance
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
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

func (r *SkillRepository) ListByEmployee(ctx context.Context, employeeID string) ([]domain.Skill, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT employee_id, name, category, proficiency
		 FROM skill_index WHERE employee_id = $1 ORDER BY name`,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skills []domain.Skill
	for rows.Next() {
		var skill domain.Skill
		var category *string
		var proficiency *int
		if err := rows.Scan(&skill.EmployeeID, &skill.Name, &category, &proficiency); err != nil {
			return nil, err
		}
		if category != nil {
			skill.Category = *category
		}
		if proficiency != nil {
			skill.Proficiency = *proficiency
		}
		skills = append(skills, skill)
	}
	return skills, rows.Err()
}

func (r *SkillRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM skill_index`).Scan(&count)
	return count, err
}

// ReplaceAll swaps the skill index atomically.
func (r *SkillRepository) ReplaceAll(ctx context.Context, records []domain.SkillRecord) error {
	return swapTable(ctx, r.pool, "skill_index", func(db dbtx) error {
		for _, rec := range records {
			var proficiency *int
			if rec.Proficiency > 0 {
				proficiency = &rec.Proficiency
			}
			_, err := db.Exec(ctx,
				`INSERT INTO skill_index (employee_id, name, category, proficiency, context, embedding)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				rec.EmployeeID,
				rec.Name,
				nullableString(rec.Category),
				proficiency,
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
