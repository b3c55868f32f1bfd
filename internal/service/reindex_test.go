package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridaworks/talentd/internal/domain"
)

type stubFeeds struct {
	roster      []domain.RosterEntry
	credentials []domain.Credential
	skills      []domain.Skill
	overrides   map[string]string
}

func (f *stubFeeds) Roster(ctx context.Context) ([]domain.RosterEntry, error) {
	return f.roster, nil
}

func (f *stubFeeds) Credentials(ctx context.Context) ([]domain.Credential, error) {
	return f.credentials, nil
}

func (f *stubFeeds) Skills(ctx context.Context) ([]domain.Skill, error) {
	return f.skills, nil
}

func (f *stubFeeds) Overrides(ctx context.Context) (map[string]string, error) {
	if f.overrides == nil {
		return map[string]string{}, nil
	}
	return f.overrides, nil
}

type stubDocs struct {
	files map[string][]byte
	order []string
}

func (d *stubDocs) List(ctx context.Context) ([]string, error) {
	return d.order, nil
}

func (d *stubDocs) Fetch(ctx context.Context, filename string) ([]byte, error) {
	raw, ok := d.files[filename]
	if !ok {
		return nil, errors.New("not found")
	}
	return raw, nil
}

// stubEmbedder returns a fixed small vector per input and counts calls.
type stubEmbedder struct {
	batches int
}

func (e *stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.5}, nil
}

func (e *stubEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	e.batches++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i]))}
	}
	return out, nil
}

type capturedWrites struct {
	entries     []domain.RosterEntry
	credentials []domain.CredentialRecord
	skills      []domain.SkillRecord
	fragments   []domain.Fragment
}

type rosterSink struct{ w *capturedWrites }

func (s rosterSink) ReplaceAll(ctx context.Context, entries []domain.RosterEntry) error {
	s.w.entries = entries
	return nil
}

type credentialSink struct{ w *capturedWrites }

func (s credentialSink) ReplaceAll(ctx context.Context, records []domain.CredentialRecord) error {
	s.w.credentials = records
	return nil
}

type skillSink struct{ w *capturedWrites }

func (s skillSink) ReplaceAll(ctx context.Context, records []domain.SkillRecord) error {
	s.w.skills = records
	return nil
}

type fragmentSink struct{ w *capturedWrites }

func (s fragmentSink) ReplaceAll(ctx context.Context, fragments []domain.Fragment) error {
	s.w.fragments = fragments
	return nil
}

type mapRosterSource struct{ w *capturedWrites }

func (s mapRosterSource) ListAll(ctx context.Context) ([]domain.RosterEntry, error) {
	return s.w.entries, nil
}

func newTestReindex(feeds *stubFeeds, docs *stubDocs, embedder *stubEmbedder, writes *capturedWrites) (*ReindexService, *RosterCache) {
	roster := NewRosterCache(mapRosterSource{writes})
	var store DocumentStore
	if docs != nil {
		store = docs
	}
	svc := NewReindexService(
		feeds,
		store,
		embedder,
		NewIdentityMatcher(80, 60),
		roster,
		rosterSink{writes},
		credentialSink{writes},
		skillSink{writes},
		fragmentSink{writes},
		ChunkConfig{Size: 500, Overlap: 100, MinChars: 20},
	)
	return svc, roster
}

func TestRebuild_CountsAndSwaps(t *testing.T) {
	feeds := &stubFeeds{
		roster: []domain.RosterEntry{
			{Identity: domain.Identity{EmployeeID: "E001", Name: "Maria Garcia Lopez", Role: "Backend Developer", Country: "MX"}},
			{Identity: domain.Identity{EmployeeID: "E002", Name: "Juan Carlos Perez", Role: "DevOps Engineer", Country: "AR"}},
			{Identity: domain.Identity{EmployeeID: "", Name: "No Id"}},
		},
		credentials: []domain.Credential{
			{EmployeeID: "E001", Name: "CKA", Issuer: "CNCF"},
			{EmployeeID: "GHOST", Name: "Orphan Cert"},
		},
		skills: []domain.Skill{
			{EmployeeID: "E001", Name: "Kubernetes", Category: "Infrastructure", Proficiency: 4},
			{EmployeeID: "E002", Name: "Terraform", Category: "Infrastructure", Proficiency: 5},
		},
	}
	embedder := &stubEmbedder{}
	writes := &capturedWrites{}
	svc, roster := newTestReindex(feeds, nil, embedder, writes)

	report, err := svc.Rebuild(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Identities, "invalid roster rows are skipped")
	assert.Equal(t, 1, report.Credentials, "credentials for unknown identities are dropped")
	assert.Equal(t, 2, report.Skills)
	assert.Equal(t, 0, report.Documents, "no document store configured")

	require.Len(t, writes.credentials, 1)
	record := writes.credentials[0]
	assert.Equal(t, "MX", record.Country, "country is denormalized from the roster")
	assert.Contains(t, record.Context, "Backend Developer")
	assert.Contains(t, record.Context, "CKA")
	assert.Contains(t, record.Context, "CNCF")
	assert.NotEmpty(t, record.Embedding)

	require.Len(t, writes.skills, 2)
	assert.Contains(t, writes.skills[0].Context, "level 4")

	assert.Equal(t, 2, roster.Size(), "roster cache reloads after the swap")

	assert.Same(t, report, svc.LastReport())
}

func TestRebuild_FragmentsFromLinkedDocuments(t *testing.T) {
	cv := "Maria has led Kubernetes platform migrations for five years. " +
		"She designed the CI pipelines and the observability stack for a large retail group."
	feeds := &stubFeeds{
		roster: []domain.RosterEntry{
			{Identity: domain.Identity{EmployeeID: "E001", Name: "Maria Garcia Lopez"}},
		},
	}
	docs := &stubDocs{
		order: []string{"MARIA GARCIA LOPEZ - SR DEV.txt", "unrelated scan.txt"},
		files: map[string][]byte{
			"MARIA GARCIA LOPEZ - SR DEV.txt": []byte(cv),
			"unrelated scan.txt":              []byte("nothing useful"),
		},
	}
	embedder := &stubEmbedder{}
	writes := &capturedWrites{}
	svc, _ := newTestReindex(feeds, docs, embedder, writes)

	report, err := svc.Rebuild(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, len(writes.fragments), report.Fragments)
	require.NotEmpty(t, writes.fragments)
	assert.Contains(t, report.Skipped, "unrelated scan.txt")

	assert.Equal(t, 1, report.Linkage.Auto)
	assert.Equal(t, 1, report.Linkage.Unresolved)

	for i, fragment := range writes.fragments {
		assert.Equal(t, "E001", fragment.EmployeeID)
		assert.Equal(t, "MARIA GARCIA LOPEZ - SR DEV.txt", fragment.Filename)
		assert.Equal(t, i, fragment.Seq)
		assert.NotEmpty(t, fragment.Embedding)
	}
}

func TestRebuild_OverrideLinksDocument(t *testing.T) {
	feeds := &stubFeeds{
		roster: []domain.RosterEntry{
			{Identity: domain.Identity{EmployeeID: "E002", Name: "Juan Carlos Perez"}},
		},
		overrides: map[string]string{"scan_0042.txt": "E002"},
	}
	docs := &stubDocs{
		order: []string{"scan_0042.txt"},
		files: map[string][]byte{
			"scan_0042.txt": []byte("Juan built event driven payment services in Go and operated them on AWS."),
		},
	}
	writes := &capturedWrites{}
	svc, _ := newTestReindex(feeds, docs, &stubEmbedder{}, writes)

	report, err := svc.Rebuild(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Linkage.Manual)
	assert.Equal(t, 1, report.Documents)
	require.NotEmpty(t, writes.fragments)
	assert.Equal(t, "E002", writes.fragments[0].EmployeeID)
}

func TestRebuild_BatchesEmbeddingCalls(t *testing.T) {
	creds := make([]domain.Credential, 150)
	roster := []domain.RosterEntry{
		{Identity: domain.Identity{EmployeeID: "E001", Name: "Ana"}},
	}
	for i := range creds {
		creds[i] = domain.Credential{EmployeeID: "E001", Name: "Cert"}
	}
	feeds := &stubFeeds{roster: roster, credentials: creds}
	embedder := &stubEmbedder{}
	writes := &capturedWrites{}
	svc, _ := newTestReindex(feeds, nil, embedder, writes)

	_, err := svc.Rebuild(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, embedder.batches, "150 credential contexts embed in two batches of 100")
	assert.Len(t, writes.credentials, 150)
}
