package domain

// MatchSource names the index that produced a profile's best hit.
type MatchSource string

const (
	SourceCredential MatchSource = "credential"
	SourceSkill      MatchSource = "skill"
	SourceDocument   MatchSource = "document"
)

// FragmentMatch is a supporting document fragment attached to a profile.
type FragmentMatch struct {
	Filename string
	Page     int
	Text     string
	Score    float64
}

// RankedProfile is the enriched output unit of a search: an identity with
// its complete credential and skill sets, the text that produced the best
// score, and the fused score itself. Constructed fresh per query, never
// persisted.
type RankedProfile struct {
	EmployeeID     string
	Name           string
	Email          string
	Role           string
	Country        string
	Credentials    []Credential
	Skills         []Skill
	Leader         *Leader
	MatchHighlight string
	MatchSource    MatchSource
	Score          float64
	Fragments      []FragmentMatch
}

// RoleSpec is one role requirement in a batch search.
type RoleSpec struct {
	RoleID  string
	Query   string
	Country string
	Limit   int
}

// RoleResult holds the ranked candidates found for one role.
type RoleResult struct {
	RoleID     string
	Query      string
	Candidates []*RankedProfile
}
