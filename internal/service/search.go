package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/meridaworks/talentd/internal/domain"
)

const (
	defaultSearchLimit = 10
	minFetchLimit      = 20
	maxFetchLimit      = 200
	maxFragmentsShown  = 3
)

// EmbeddingClient turns text into a vector in the same space the indexes
// were built in.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// CredentialIndex is the certification similarity index. SearchNearest
// returns raw distances; country, when non-empty, filters rows before
// ranking.
type CredentialIndex interface {
	SearchNearest(ctx context.Context, embedding []float32, country string, limit int) ([]domain.IndexHit, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]domain.Credential, error)
}

// SkillIndex is the skill similarity index.
type SkillIndex interface {
	SearchNearest(ctx context.Context, embedding []float32, limit int) ([]domain.IndexHit, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]domain.Skill, error)
}

// FragmentIndex is the document fragment similarity index.
type FragmentIndex interface {
	SearchNearest(ctx context.Context, embedding []float32, limit int) ([]domain.FragmentHit, error)
}

// SearchService fuses nearest-neighbor hits from the credential, skill,
// and document indexes into ranked, enriched profiles. Any index may be
// nil; a missing index contributes nothing.
type SearchService struct {
	embedding   EmbeddingClient
	credentials CredentialIndex
	skills      SkillIndex
	fragments   FragmentIndex
	roster      *RosterCache
	decay       float64
	overfetch   int
}

func NewSearchService(embedding EmbeddingClient, credentials CredentialIndex, skills SkillIndex, fragments FragmentIndex, roster *RosterCache, decay float64, overfetch int) *SearchService {
	if decay <= 0 {
		decay = 15
	}
	if overfetch <= 0 {
		overfetch = 5
	}
	return &SearchService{
		embedding:   embedding,
		credentials: credentials,
		skills:      skills,
		fragments:   fragments,
		roster:      roster,
		decay:       decay,
		overfetch:   overfetch,
	}
}

// distanceToScore maps a raw vector distance onto a 0-100 scale with
// exponential decay. A distance of zero is a perfect 100. Non-finite
// distances are treated as zero so a degenerate index row cannot poison
// the ranking.
func distanceToScore(distance, decay float64) float64 {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance < 0 {
		distance = 0
	}
	return 100 * math.Exp(-distance/decay)
}

type searchCandidate struct {
	employeeID string
	score      float64
	highlight  string
	source     domain.MatchSource
	fragments  []domain.FragmentMatch
}

// Search embeds the query, gathers over-fetched hits from every configured
// index, keeps the best score per identity, and enriches the surviving
// identities from the roster. Country filtering applies to the credential
// index only.
func (s *SearchService) Search(ctx context.Context, query, country string, limit int) ([]*domain.RankedProfile, error) {
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if s.credentials == nil && s.skills == nil && s.fragments == nil {
		return nil, domain.ErrNoIndexesConfigured
	}
	if s.embedding == nil {
		return nil, domain.ErrEmbedderUnavailable
	}

	embedding, err := s.embedding.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	fetchLimit := limit * s.overfetch
	if fetchLimit < minFetchLimit {
		fetchLimit = minFetchLimit
	}
	if fetchLimit > maxFetchLimit {
		fetchLimit = maxFetchLimit
	}

	candidates := make(map[string]*searchCandidate)

	if s.credentials != nil {
		hits, err := s.credentials.SearchNearest(ctx, embedding, country, fetchLimit)
		if err != nil {
			log.Printf("search: credential index unavailable: %v", err)
		} else {
			s.accumulate(candidates, hits, domain.SourceCredential)
		}
	}

	if s.skills != nil {
		hits, err := s.skills.SearchNearest(ctx, embedding, fetchLimit)
		if err != nil {
			log.Printf("search: skill index unavailable: %v", err)
		} else {
			s.accumulate(candidates, hits, domain.SourceSkill)
		}
	}

	if s.fragments != nil {
		hits, err := s.fragments.SearchNearest(ctx, embedding, fetchLimit)
		if err != nil {
			log.Printf("search: fragment index unavailable: %v", err)
		} else {
			s.accumulateFragments(candidates, hits)
		}
	}

	ranked := make([]*searchCandidate, 0, len(candidates))
	for _, cand := range candidates {
		ranked = append(ranked, cand)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].employeeID < ranked[j].employeeID
	})

	profiles := make([]*domain.RankedProfile, 0, limit)
	for _, cand := range ranked {
		if len(profiles) >= limit {
			break
		}
		profile, err := s.enrich(ctx, cand)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			continue
		}
		profiles = append(profiles, profile)
	}

	return profiles, nil
}

// accumulate folds index hits into the per-identity accumulator, keeping
// the maximum score across all hits for the same identity.
func (s *SearchService) accumulate(candidates map[string]*searchCandidate, hits []domain.IndexHit, source domain.MatchSource) {
	for _, hit := range hits {
		if hit.EmployeeID == "" {
			continue
		}
		score := distanceToScore(hit.Distance, s.decay)
		cand, ok := candidates[hit.EmployeeID]
		if !ok {
			candidates[hit.EmployeeID] = &searchCandidate{
				employeeID: hit.EmployeeID,
				score:      score,
				highlight:  hit.Label,
				source:     source,
			}
			continue
		}
		if score > cand.score {
			cand.score = score
			cand.highlight = hit.Label
			cand.source = source
		}
	}
}

func (s *SearchService) accumulateFragments(candidates map[string]*searchCandidate, hits []domain.FragmentHit) {
	for _, hit := range hits {
		if hit.EmployeeID == "" {
			continue
		}
		score := distanceToScore(hit.Distance, s.decay)
		match := domain.FragmentMatch{
			Filename: hit.Filename,
			Page:     hit.Page,
			Text:     hit.Text,
			Score:    score,
		}
		cand, ok := candidates[hit.EmployeeID]
		if !ok {
			cand = &searchCandidate{
				employeeID: hit.EmployeeID,
				score:      score,
				highlight:  hit.Filename,
				source:     domain.SourceDocument,
			}
			candidates[hit.EmployeeID] = cand
		} else if score > cand.score {
			cand.score = score
			cand.highlight = hit.Filename
			cand.source = domain.SourceDocument
		}
		cand.fragments = append(cand.fragments, match)
	}
}

// enrich resolves a candidate against the roster and attaches its full
// credential and skill sets. Identities absent from the roster are
// dropped; the indexes may lag a roster rebuild.
func (s *SearchService) enrich(ctx context.Context, cand *searchCandidate) (*domain.RankedProfile, error) {
	entry, ok, err := s.roster.Get(ctx, cand.employeeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Printf("search: dropping hit for unknown identity %s", cand.employeeID)
		return nil, nil
	}

	profile := &domain.RankedProfile{
		EmployeeID:     entry.EmployeeID,
		Name:           entry.Name,
		Email:          entry.Email,
		Role:           entry.Role,
		Country:        entry.Country,
		Leader:         entry.Leader,
		MatchHighlight: cand.highlight,
		MatchSource:    cand.source,
		Score:          cand.score,
		Fragments:      topFragments(cand.fragments, maxFragmentsShown),
	}

	// Enrichment reads degrade like the index scans above: a failing
	// source costs its attribute set, not the whole request.
	if s.credentials != nil {
		creds, err := s.credentials.ListByEmployee(ctx, cand.employeeID)
		if err != nil {
			log.Printf("search: listing credentials for %s failed: %v", cand.employeeID, err)
		} else {
			profile.Credentials = creds
		}
	}
	if s.skills != nil {
		skills, err := s.skills.ListByEmployee(ctx, cand.employeeID)
		if err != nil {
			log.Printf("search: listing skills for %s failed: %v", cand.employeeID, err)
		} else {
			profile.Skills = skills
		}
	}

	return profile, nil
}

func topFragments(fragments []domain.FragmentMatch, n int) []domain.FragmentMatch {
	if len(fragments) == 0 {
		return nil
	}
	sorted := make([]domain.FragmentMatch, len(fragments))
	copy(sorted, fragments)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
