package service

import (
	"context"
	"log"
	"sort"

	"github.com/meridaworks/talentd/internal/domain"
)

// SearchForRoles runs an independent search per role requirement. One
// failing role does not abort the batch; its result carries an empty
// candidate list and the failure is logged.
func (s *SearchService) SearchForRoles(ctx context.Context, roles []domain.RoleSpec) ([]domain.RoleResult, error) {
	results := make([]domain.RoleResult, 0, len(roles))
	for _, role := range roles {
		result := domain.RoleResult{
			RoleID: role.RoleID,
			Query:  role.Query,
		}
		candidates, err := s.Search(ctx, role.Query, role.Country, role.Limit)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("batch: role %s failed: %v", role.RoleID, err)
		} else {
			result.Candidates = candidates
		}
		results = append(results, result)
	}
	return results, nil
}

// FlattenTeam merges per-role candidate lists into one deduplicated
// ranking. An identity surfaced by several roles keeps its single best
// score; scores are never summed across roles.
func FlattenTeam(results []domain.RoleResult) []*domain.RankedProfile {
	best := make(map[string]*domain.RankedProfile)
	order := make([]string, 0)

	for _, result := range results {
		for _, candidate := range result.Candidates {
			existing, ok := best[candidate.EmployeeID]
			if !ok {
				order = append(order, candidate.EmployeeID)
				best[candidate.EmployeeID] = candidate
				continue
			}
			if candidate.Score > existing.Score {
				best[candidate.EmployeeID] = candidate
			}
		}
	}

	flattened := make([]*domain.RankedProfile, 0, len(best))
	for _, employeeID := range order {
		flattened = append(flattened, best[employeeID])
	}
	sort.SliceStable(flattened, func(i, j int) bool {
		return flattened[i].Score > flattened[j].Score
	})
	return flattened
}
