package handlers

import (
	"context"
	"net/http"

	"github.com/meridaworks/talentd/internal/api"
)

type Counter interface {
	Count(ctx context.Context) (int, error)
}

type DocumentCounter interface {
	Counter
	CountDocuments(ctx context.Context) (int, error)
}

type CountryLister interface {
	DistinctCountries(ctx context.Context) ([]string, error)
}

// SystemHandler serves the operational read endpoints. Any dependency
// may be nil when the deployment runs without that index.
type SystemHandler struct {
	identities  Counter
	credentials Counter
	skills      Counter
	fragments   DocumentCounter
	countries   CountryLister
}

func NewSystemHandler(identities, credentials, skills Counter, fragments DocumentCounter, countries CountryLister) *SystemHandler {
	return &SystemHandler{
		identities:  identities,
		credentials: credentials,
		skills:      skills,
		fragments:   fragments,
		countries:   countries,
	}
}

type StatsResponse struct {
	Identities  int `json:"identities"`
	Credentials int `json:"credentials"`
	Skills      int `json:"skills"`
	Documents   int `json:"documents"`
	Fragments   int `json:"fragments"`
}

type CountriesResponse struct {
	Countries []string `json:"countries"`
}

// Stats handles GET /stats.
func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var resp StatsResponse
	var err error

	count := func(c Counter) int {
		if err != nil || c == nil {
			return 0
		}
		var n int
		n, err = c.Count(r.Context())
		return n
	}

	resp.Identities = count(h.identities)
	resp.Credentials = count(h.credentials)
	resp.Skills = count(h.skills)
	resp.Fragments = count(h.fragments)
	if err == nil && h.fragments != nil {
		resp.Documents, err = h.fragments.CountDocuments(r.Context())
	}
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, resp)
}

// Countries handles GET /countries.
func (h *SystemHandler) Countries(w http.ResponseWriter, r *http.Request) {
	if h.countries == nil {
		api.Success(w, http.StatusOK, CountriesResponse{Countries: []string{}})
		return
	}
	countries, err := h.countries.DistinctCountries(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if countries == nil {
		countries = []string{}
	}
	api.Success(w, http.StatusOK, CountriesResponse{Countries: countries})
}
