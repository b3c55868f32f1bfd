package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/meridaworks/talentd/internal/api"
	"github.com/meridaworks/talentd/internal/domain"
	"github.com/meridaworks/talentd/internal/service"
	"github.com/meridaworks/talentd/internal/telemetry"
)

type Searcher interface {
	Search(ctx context.Context, query, country string, limit int) ([]*domain.RankedProfile, error)
	SearchForRoles(ctx context.Context, roles []domain.RoleSpec) ([]domain.RoleResult, error)
}

type SearchHandler struct {
	svc     Searcher
	timeout time.Duration
}

func NewSearchHandler(svc Searcher, timeout time.Duration) *SearchHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SearchHandler{svc: svc, timeout: timeout}
}

type SearchRequest struct {
	Query   string `json:"query"`
	Country string `json:"country,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

type RoleRequest struct {
	RoleID  string `json:"role_id"`
	Query   string `json:"query"`
	Country string `json:"country,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

type BatchSearchRequest struct {
	Roles []RoleRequest `json:"roles"`
}

type CredentialResponse struct {
	Name      string `json:"name"`
	Issuer    string `json:"issuer,omitempty"`
	IssuedAt  string `json:"issued_at,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

type SkillResponse struct {
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Proficiency int    `json:"proficiency,omitempty"`
}

type LeaderResponse struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type FragmentResponse struct {
	Filename string  `json:"filename"`
	Page     int     `json:"page,omitempty"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

type ProfileResponse struct {
	EmployeeID     string               `json:"employee_id"`
	Name           string               `json:"name"`
	Email          string               `json:"email,omitempty"`
	Role           string               `json:"role,omitempty"`
	Country        string               `json:"country,omitempty"`
	Credentials    []CredentialResponse `json:"credentials"`
	Skills         []SkillResponse      `json:"skills"`
	Leader         *LeaderResponse      `json:"leader,omitempty"`
	MatchHighlight string               `json:"match_highlight,omitempty"`
	MatchSource    string               `json:"match_source,omitempty"`
	Score          float64              `json:"score"`
	Fragments      []FragmentResponse   `json:"fragments,omitempty"`
}

type SearchResponse struct {
	Candidates []*ProfileResponse `json:"candidates"`
}

type RoleResultResponse struct {
	RoleID     string             `json:"role_id"`
	Query      string             `json:"query"`
	Candidates []*ProfileResponse `json:"candidates"`
}

type BatchSearchResponse struct {
	Roles []RoleResultResponse `json:"roles"`
}

type TeamResponse struct {
	Team []*ProfileResponse `json:"team"`
}

// Search handles POST /search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ctx, span := telemetry.StartSpan(ctx, "search", telemetry.SpanAttributes{
		Country:   req.Country,
		Operation: "search",
	})
	defer span.End()

	profiles, err := h.svc.Search(ctx, req.Query, req.Country, req.Limit)
	if err != nil {
		span.SetError(err)
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SearchResponse{Candidates: toProfileResponses(profiles)})
}

// BatchSearch handles POST /batch-search.
func (h *SearchHandler) BatchSearch(w http.ResponseWriter, r *http.Request) {
	roles, ok := h.decodeRoles(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results, err := h.svc.SearchForRoles(ctx, roles)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := BatchSearchResponse{Roles: make([]RoleResultResponse, len(results))}
	for i, result := range results {
		resp.Roles[i] = RoleResultResponse{
			RoleID:     result.RoleID,
			Query:      result.Query,
			Candidates: toProfileResponses(result.Candidates),
		}
	}
	api.Success(w, http.StatusOK, resp)
}

// Team handles POST /team: a batch search whose per-role results are
// flattened into one deduplicated ranking.
func (h *SearchHandler) Team(w http.ResponseWriter, r *http.Request) {
	roles, ok := h.decodeRoles(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results, err := h.svc.SearchForRoles(ctx, roles)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	team := service.FlattenTeam(results)
	api.Success(w, http.StatusOK, TeamResponse{Team: toProfileResponses(team)})
}

func (h *SearchHandler) decodeRoles(w http.ResponseWriter, r *http.Request) ([]domain.RoleSpec, bool) {
	var req BatchSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if len(req.Roles) == 0 {
		api.Error(w, http.StatusBadRequest, "at least one role is required")
		return nil, false
	}

	roles := make([]domain.RoleSpec, len(req.Roles))
	for i, role := range req.Roles {
		if strings.TrimSpace(role.Query) == "" {
			api.Error(w, http.StatusBadRequest, "every role needs a query")
			return nil, false
		}
		roles[i] = domain.RoleSpec{
			RoleID:  role.RoleID,
			Query:   strings.TrimSpace(role.Query),
			Country: role.Country,
			Limit:   role.Limit,
		}
	}
	return roles, true
}

func toProfileResponses(profiles []*domain.RankedProfile) []*ProfileResponse {
	responses := make([]*ProfileResponse, len(profiles))
	for i, profile := range profiles {
		responses[i] = toProfileResponse(profile)
	}
	return responses
}

func toProfileResponse(profile *domain.RankedProfile) *ProfileResponse {
	resp := &ProfileResponse{
		EmployeeID:     profile.EmployeeID,
		Name:           profile.Name,
		Email:          profile.Email,
		Role:           profile.Role,
		Country:        profile.Country,
		Credentials:    make([]CredentialResponse, len(profile.Credentials)),
		Skills:         make([]SkillResponse, len(profile.Skills)),
		MatchHighlight: profile.MatchHighlight,
		MatchSource:    string(profile.MatchSource),
		Score:          profile.Score,
	}
	for i, cred := range profile.Credentials {
		resp.Credentials[i] = CredentialResponse{
			Name:      cred.Name,
			Issuer:    cred.Issuer,
			IssuedAt:  cred.IssuedAt,
			ExpiresAt: cred.ExpiresAt,
		}
	}
	for i, skill := range profile.Skills {
		resp.Skills[i] = SkillResponse{
			Name:        skill.Name,
			Category:    skill.Category,
			Proficiency: skill.Proficiency,
		}
	}
	if profile.Leader != nil {
		resp.Leader = &LeaderResponse{Name: profile.Leader.Name, Email: profile.Leader.Email}
	}
	for _, fragment := range profile.Fragments {
		resp.Fragments = append(resp.Fragments, FragmentResponse{
			Filename: fragment.Filename,
			Page:     fragment.Page,
			Text:     fragment.Text,
			Score:    fragment.Score,
		})
	}
	return resp
}
