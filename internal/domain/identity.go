package domain

// Identity is a known person in the employee roster, addressable by a
// stable employee number. Roster data is owned by the upstream feed; the
// engine treats it as read-only reference data.
type Identity struct {
	EmployeeID string
	Name       string
	Email      string
	Role       string
	Country    string
}

// Leader is the reporting reference attached to an enriched profile.
type Leader struct {
	Name  string
	Email string
}

// RosterEntry is one roster row with its optional reporting reference,
// the unit the roster cache holds in memory.
type RosterEntry struct {
	Identity
	Leader *Leader
}

// Credential is a verified, non-expired certification belonging to one
// Identity. The upstream feed filters out unverified and expired records
// before they reach the engine.
type Credential struct {
	EmployeeID string
	Name       string
	Issuer     string
	IssuedAt   string
	ExpiresAt  string
}

// Skill is a technical skill record belonging to one Identity.
type Skill struct {
	EmployeeID  string
	Name        string
	Category    string
	Proficiency int // 1-5, 0 when unknown
}

// ValidateIdentity checks the fields required for an identity to be
// addressable and presentable.
func ValidateIdentity(id *Identity) error {
	if id.EmployeeID == "" {
		return ErrMissingEmployeeID
	}
	if id.Name == "" {
		return ErrMissingRequiredField
	}
	return nil
}
