package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/meridaworks/talentd/internal/domain"
)

const embedBatchSize = 100

// FeedSource supplies the typed feed contents consumed by a rebuild.
type FeedSource interface {
	Roster(ctx context.Context) ([]domain.RosterEntry, error)
	Credentials(ctx context.Context) ([]domain.Credential, error)
	Skills(ctx context.Context) ([]domain.Skill, error)
	Overrides(ctx context.Context) (map[string]string, error)
}

// DocumentStore lists and fetches raw source documents.
type DocumentStore interface {
	List(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, filename string) ([]byte, error)
}

// BatchEmbedder extends the query embedder with a batched call used
// during index builds.
type BatchEmbedder interface {
	EmbeddingClient
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// RosterWriter atomically replaces the identities table.
type RosterWriter interface {
	ReplaceAll(ctx context.Context, entries []domain.RosterEntry) error
}

// CredentialWriter atomically replaces the credential index.
type CredentialWriter interface {
	ReplaceAll(ctx context.Context, records []domain.CredentialRecord) error
}

// SkillWriter atomically replaces the skill index.
type SkillWriter interface {
	ReplaceAll(ctx context.Context, records []domain.SkillRecord) error
}

// FragmentWriter atomically replaces the document fragment index.
type FragmentWriter interface {
	ReplaceAll(ctx context.Context, fragments []domain.Fragment) error
}

// ReindexReport summarizes one rebuild for operators.
type ReindexReport struct {
	Identities  int
	Credentials int
	Skills      int
	Documents   int
	Fragments   int
	Skipped     []string
	Linkage     domain.LinkageReport
}

// ReindexService rebuilds every index from the upstream feeds and the
// document store. Each table is swapped atomically; searches running
// during a rebuild see either the old or the new contents, never a mix.
type ReindexService struct {
	feeds    FeedSource
	docs     DocumentStore
	embedder BatchEmbedder
	matcher  *IdentityMatcher
	roster   *RosterCache

	identities  RosterWriter
	credentials CredentialWriter
	skills      SkillWriter
	fragments   FragmentWriter

	chunkCfg ChunkConfig

	rebuildMu sync.Mutex
	mu        sync.Mutex
	last      *ReindexReport
}

func NewReindexService(
	feeds FeedSource,
	docs DocumentStore,
	embedder BatchEmbedder,
	matcher *IdentityMatcher,
	roster *RosterCache,
	identities RosterWriter,
	credentials CredentialWriter,
	skills SkillWriter,
	fragments FragmentWriter,
	chunkCfg ChunkConfig,
) *ReindexService {
	if chunkCfg.Size <= 0 {
		chunkCfg = DefaultChunkConfig()
	}
	return &ReindexService{
		feeds:       feeds,
		docs:        docs,
		embedder:    embedder,
		matcher:     matcher,
		roster:      roster,
		identities:  identities,
		credentials: credentials,
		skills:      skills,
		fragments:   fragments,
		chunkCfg:    chunkCfg,
	}
}

// LastReport returns the report of the most recent completed rebuild,
// nil when none has run yet.
func (s *ReindexService) LastReport() *ReindexReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Rebuild regenerates the roster, credential, skill, and fragment indexes
// in that order, then reloads the in-memory roster cache. Rebuilds are
// serialized; a second caller blocks until the first finishes.
func (s *ReindexService) Rebuild(ctx context.Context) (*ReindexReport, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	report := &ReindexReport{}

	entries, err := s.feeds.Roster(ctx)
	if err != nil {
		return nil, fmt.Errorf("roster feed: %w", err)
	}
	valid := make([]domain.RosterEntry, 0, len(entries))
	byID := make(map[string]domain.RosterEntry, len(entries))
	for _, entry := range entries {
		if err := domain.ValidateIdentity(&entry.Identity); err != nil {
			log.Printf("reindex: skipping roster row %q: %v", entry.EmployeeID, err)
			continue
		}
		valid = append(valid, entry)
		byID[entry.EmployeeID] = entry
	}
	if err := s.identities.ReplaceAll(ctx, valid); err != nil {
		return nil, fmt.Errorf("replace roster: %w", err)
	}
	report.Identities = len(valid)

	if err := s.rebuildCredentials(ctx, byID, report); err != nil {
		return nil, err
	}
	if err := s.rebuildSkills(ctx, byID, report); err != nil {
		return nil, err
	}
	if err := s.rebuildFragments(ctx, valid, report); err != nil {
		return nil, err
	}

	if err := s.roster.Reload(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	log.Printf("reindex: %d identities, %d credentials, %d skills, %d documents, %d fragments, %d skipped",
		report.Identities, report.Credentials, report.Skills, report.Documents, report.Fragments, len(report.Skipped))
	return report, nil
}

func (s *ReindexService) rebuildCredentials(ctx context.Context, roster map[string]domain.RosterEntry, report *ReindexReport) error {
	creds, err := s.feeds.Credentials(ctx)
	if err != nil {
		return fmt.Errorf("credential feed: %w", err)
	}

	records := make([]domain.CredentialRecord, 0, len(creds))
	contexts := make([]string, 0, len(creds))
	for _, cred := range creds {
		entry, ok := roster[cred.EmployeeID]
		if !ok {
			log.Printf("reindex: credential %q for unknown identity %s", cred.Name, cred.EmployeeID)
			continue
		}
		context := joinContext(entry.Role, cred.Name, cred.Issuer, entry.Country)
		records = append(records, domain.CredentialRecord{
			Credential: cred,
			Country:    entry.Country,
			Context:    context,
		})
		contexts = append(contexts, context)
	}

	embeddings, err := s.embedAll(ctx, contexts)
	if err != nil {
		return fmt.Errorf("embed credentials: %w", err)
	}
	for i := range records {
		records[i].Embedding = embeddings[i]
	}

	if err := s.credentials.ReplaceAll(ctx, records); err != nil {
		return fmt.Errorf("replace credential index: %w", err)
	}
	report.Credentials = len(records)
	return nil
}

func (s *ReindexService) rebuildSkills(ctx context.Context, roster map[string]domain.RosterEntry, report *ReindexReport) error {
	skills, err := s.feeds.Skills(ctx)
	if err != nil {
		return fmt.Errorf("skill feed: %w", err)
	}

	records := make([]domain.SkillRecord, 0, len(skills))
	contexts := make([]string, 0, len(skills))
	for _, skill := range skills {
		entry, ok := roster[skill.EmployeeID]
		if !ok {
			log.Printf("reindex: skill %q for unknown identity %s", skill.Name, skill.EmployeeID)
			continue
		}
		proficiency := ""
		if skill.Proficiency > 0 {
			proficiency = "level " + strconv.Itoa(skill.Proficiency)
		}
		context := joinContext(entry.Role, skill.Name, skill.Category, proficiency)
		records = append(records, domain.SkillRecord{
			Skill:   skill,
			Context: context,
		})
		contexts = append(contexts, context)
	}

	embeddings, err := s.embedAll(ctx, contexts)
	if err != nil {
		return fmt.Errorf("embed skills: %w", err)
	}
	for i := range records {
		records[i].Embedding = embeddings[i]
	}

	if err := s.skills.ReplaceAll(ctx, records); err != nil {
		return fmt.Errorf("replace skill index: %w", err)
	}
	report.Skills = len(records)
	return nil
}

// rebuildFragments links every stored document to the fresh roster,
// extracts and chunks the linked ones, and swaps the fragment index. A
// nil document store leaves the fragment index untouched.
func (s *ReindexService) rebuildFragments(ctx context.Context, roster []domain.RosterEntry, report *ReindexReport) error {
	if s.docs == nil || s.fragments == nil {
		return nil
	}

	filenames, err := s.docs.List(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	overrides, err := s.feeds.Overrides(ctx)
	if err != nil {
		return fmt.Errorf("override feed: %w", err)
	}
	s.matcher.SetOverrides(overrides)

	identities := make([]domain.Identity, 0, len(roster))
	for _, entry := range roster {
		identities = append(identities, entry.Identity)
	}
	report.Linkage = s.matcher.MatchAll(filenames, identities)
	resolved := LinkageFilter{IncludeReview: true}.Resolved(report.Linkage)

	var fragments []domain.Fragment
	for _, filename := range filenames {
		employeeID, ok := resolved[filename]
		if !ok {
			report.Skipped = append(report.Skipped, filename)
			continue
		}

		raw, err := s.docs.Fetch(ctx, filename)
		if err != nil {
			log.Printf("reindex: fetch %s: %v", filename, err)
			report.Skipped = append(report.Skipped, filename)
			continue
		}

		extracted := ExtractPages(filename, raw)
		if !extracted.OK() {
			report.Skipped = append(report.Skipped, filename)
			continue
		}

		seq := 0
		for _, page := range extracted.Pages {
			for _, chunk := range ChunkText(CleanText(page.Text), s.chunkCfg) {
				fragments = append(fragments, domain.Fragment{
					EmployeeID: employeeID,
					Filename:   filename,
					Seq:        seq,
					Page:       page.Page,
					Text:       chunk,
				})
				seq++
			}
		}
		if seq > 0 {
			report.Documents++
		}
	}

	texts := make([]string, len(fragments))
	for i, fragment := range fragments {
		texts[i] = fragment.Text
	}
	embeddings, err := s.embedAll(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed fragments: %w", err)
	}
	for i := range fragments {
		fragments[i].Embedding = embeddings[i]
	}

	if err := s.fragments.ReplaceAll(ctx, fragments); err != nil {
		return fmt.Errorf("replace fragment index: %w", err)
	}
	report.Fragments = len(fragments)
	return nil
}

func (s *ReindexService) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbedderUnavailable
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := s.embedder.GenerateEmbeddings(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func joinContext(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}
