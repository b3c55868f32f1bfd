package service

import (
	"log"
	"path"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/meridaworks/talentd/internal/domain"
)

// Weights for the three name-similarity measures. Token-sort carries the
// most weight because name order varies between documents and the roster
// ("Last First" vs "First Last").
const (
	weightRatio     = 0.25
	weightPartial   = 0.25
	weightTokenSort = 0.50
)

// IdentityMatcher links document filenames to roster identities using
// approximate name matching. An externally supplied override map, keyed by
// exact filename, always wins over the computed link.
type IdentityMatcher struct {
	autoThreshold   float64
	reviewThreshold float64
	overrides       map[string]string
}

func NewIdentityMatcher(autoThreshold, reviewThreshold float64) *IdentityMatcher {
	return &IdentityMatcher{
		autoThreshold:   autoThreshold,
		reviewThreshold: reviewThreshold,
		overrides:       map[string]string{},
	}
}

// SetOverrides installs the manual filename -> employee id mapping.
// Entries with an empty employee id are ignored.
func (m *IdentityMatcher) SetOverrides(overrides map[string]string) {
	m.overrides = make(map[string]string, len(overrides))
	for filename, employeeID := range overrides {
		if strings.TrimSpace(employeeID) == "" {
			continue
		}
		m.overrides[filename] = strings.TrimSpace(employeeID)
	}
}

// nameSimilarity scores two normalized names on a 0-100 scale combining a
// direct edit-distance ratio, the best partial-substring ratio, and a
// token-order-insensitive ratio.
func nameSimilarity(a, b string) float64 {
	ratio := float64(fuzzy.Ratio(a, b))
	partial := float64(fuzzy.PartialRatio(a, b))
	tokenSort := float64(fuzzy.TokenSortRatio(a, b))

	return ratio*weightRatio + partial*weightPartial + tokenSort*weightTokenSort
}

// Match computes the DocumentLink for a single document filename against
// the roster. Deterministic: ties are broken by roster order.
func (m *IdentityMatcher) Match(filename string, roster []domain.Identity) domain.DocumentLink {
	stem := strings.TrimSuffix(path.Base(filename), path.Ext(filename))

	if employeeID, ok := m.overrides[filename]; ok {
		link := domain.DocumentLink{
			Filename:      filename,
			ExtractedName: stem,
			EmployeeID:    employeeID,
			Confidence:    100,
			Status:        domain.LinkManual,
		}
		for _, id := range roster {
			if id.EmployeeID == employeeID {
				link.RosterName = id.Name
				break
			}
		}
		return link
	}

	normalized := NormalizeName(stem)
	if normalized == "" {
		// Nothing to compare against; scoring an empty query would be
		// degenerate.
		return domain.DocumentLink{
			Filename:      filename,
			ExtractedName: stem,
			Status:        domain.LinkUnresolved,
		}
	}

	var (
		bestScore float64
		bestID    string
		bestName  string
	)
	for _, id := range roster {
		rosterNorm := NormalizeName(id.Name)
		if rosterNorm == "" {
			continue
		}
		score := nameSimilarity(normalized, rosterNorm)
		if score > bestScore {
			bestScore = score
			bestID = id.EmployeeID
			bestName = id.Name
		}
	}

	link := domain.DocumentLink{
		Filename:      filename,
		ExtractedName: stem,
		EmployeeID:    bestID,
		RosterName:    bestName,
		Confidence:    bestScore,
	}

	switch {
	case bestScore >= m.autoThreshold:
		link.Status = domain.LinkAuto
	case bestScore >= m.reviewThreshold:
		link.Status = domain.LinkReview
	default:
		link.Status = domain.LinkUnresolved
		link.EmployeeID = ""
		link.RosterName = ""
	}

	return link
}

// MatchAll links every document in the set, even against an empty roster,
// and reports aggregate counts per classification band.
func (m *IdentityMatcher) MatchAll(filenames []string, roster []domain.Identity) domain.LinkageReport {
	report := domain.LinkageReport{Links: make([]domain.DocumentLink, 0, len(filenames))}

	for _, filename := range filenames {
		link := m.Match(filename, roster)
		report.Links = append(report.Links, link)

		switch link.Status {
		case domain.LinkAuto:
			report.Auto++
		case domain.LinkReview:
			report.Review++
		case domain.LinkManual:
			report.Manual++
		default:
			report.Unresolved++
		}
	}

	log.Printf("linkage: %d documents (%d auto, %d review, %d manual, %d unresolved)",
		len(report.Links), report.Auto, report.Review, report.Manual, report.Unresolved)

	return report
}

// Resolved returns the filename -> employee id mapping for links that are
// trustworthy without review (auto and manual bands).
func (r LinkageFilter) Resolved(report domain.LinkageReport) map[string]string {
	resolved := make(map[string]string)
	for _, link := range report.Links {
		if link.EmployeeID == "" {
			continue
		}
		switch link.Status {
		case domain.LinkAuto, domain.LinkManual:
			resolved[link.Filename] = link.EmployeeID
		case domain.LinkReview:
			if r.IncludeReview {
				resolved[link.Filename] = link.EmployeeID
			}
		}
	}
	return resolved
}

// LinkageFilter controls which bands count as resolved when building the
// mapping consumed by the document pipeline.
type LinkageFilter struct {
	IncludeReview bool
}
