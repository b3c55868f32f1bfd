package domain

// CredentialRecord is one credential index row ready for persistence.
// Context is the text the embedding was generated from; Country is
// denormalized from the roster so the index can filter before ranking.
type CredentialRecord struct {
	Credential
	Country   string
	Context   string
	Embedding []float32
}

// SkillRecord is one skill index row ready for persistence.
type SkillRecord struct {
	Skill
	Context   string
	Embedding []float32
}
