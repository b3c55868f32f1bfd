package handlers

import (
	"context"
	"net/http"

	"github.com/meridaworks/talentd/internal/api"
	"github.com/meridaworks/talentd/internal/domain"
	"github.com/meridaworks/talentd/internal/service"
)

type Reindexer interface {
	Rebuild(ctx context.Context) (*service.ReindexReport, error)
	LastReport() *service.ReindexReport
}

type LinkageHandler struct {
	svc Reindexer
}

func NewLinkageHandler(svc Reindexer) *LinkageHandler {
	return &LinkageHandler{svc: svc}
}

type LinkResponse struct {
	Filename      string  `json:"filename"`
	ExtractedName string  `json:"extracted_name"`
	EmployeeID    string  `json:"employee_id,omitempty"`
	RosterName    string  `json:"roster_name,omitempty"`
	Confidence    float64 `json:"confidence"`
	Status        string  `json:"status"`
}

type LinkageResponse struct {
	Links      []LinkResponse `json:"links"`
	Auto       int            `json:"auto"`
	Review     int            `json:"review"`
	Unresolved int            `json:"unresolved"`
	Manual     int            `json:"manual"`
}

type ReindexResponse struct {
	Identities  int      `json:"identities"`
	Credentials int      `json:"credentials"`
	Skills      int      `json:"skills"`
	Documents   int      `json:"documents"`
	Fragments   int      `json:"fragments"`
	Skipped     []string `json:"skipped,omitempty"`
}

// Linkage handles GET /linkage: the document-to-identity report from the
// most recent rebuild.
func (h *LinkageHandler) Linkage(w http.ResponseWriter, r *http.Request) {
	report := h.svc.LastReport()
	if report == nil {
		api.Error(w, http.StatusNotFound, "no reindex has run yet")
		return
	}
	api.Success(w, http.StatusOK, toLinkageResponse(report.Linkage))
}

// Reindex handles POST /reindex: a synchronous full rebuild.
func (h *LinkageHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Rebuild(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, ReindexResponse{
		Identities:  report.Identities,
		Credentials: report.Credentials,
		Skills:      report.Skills,
		Documents:   report.Documents,
		Fragments:   report.Fragments,
		Skipped:     report.Skipped,
	})
}

func toLinkageResponse(report domain.LinkageReport) LinkageResponse {
	resp := LinkageResponse{
		Links:      make([]LinkResponse, len(report.Links)),
		Auto:       report.Auto,
		Review:     report.Review,
		Unresolved: report.Unresolved,
		Manual:     report.Manual,
	}
	for i, link := range report.Links {
		resp.Links[i] = LinkResponse{
			Filename:      link.Filename,
			ExtractedName: link.ExtractedName,
			EmployeeID:    link.EmployeeID,
			RosterName:    link.RosterName,
			Confidence:    link.Confidence,
			Status:        string(link.Status),
		}
	}
	return resp
}
