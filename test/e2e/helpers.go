//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridaworks/talentd/internal/api/handlers"
	"github.com/meridaworks/talentd/internal/domain"
	"github.com/meridaworks/talentd/internal/repository"
	"github.com/meridaworks/talentd/internal/server"
	"github.com/meridaworks/talentd/internal/service"
	"github.com/meridaworks/talentd/internal/testutil"
)

// E2ETestEnv holds all resources needed for end to end tests.
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	Pool       *pgxpool.Pool
	Server     *httptest.Server
	HTTPClient *http.Client

	Feeds *memoryFeeds
	Docs  *memoryDocs
}

// memoryFeeds is an in-memory FeedSource the tests populate directly.
type memoryFeeds struct {
	roster      []domain.RosterEntry
	credentials []domain.Credential
	skills      []domain.Skill
	overrides   map[string]string
}

func (f *memoryFeeds) Roster(ctx context.Context) ([]domain.RosterEntry, error) {
	return f.roster, nil
}

func (f *memoryFeeds) Credentials(ctx context.Context) ([]domain.Credential, error) {
	return f.credentials, nil
}

func (f *memoryFeeds) Skills(ctx context.Context) ([]domain.Skill, error) {
	return f.skills, nil
}

func (f *memoryFeeds) Overrides(ctx context.Context) (map[string]string, error) {
	if f.overrides == nil {
		return map[string]string{}, nil
	}
	return f.overrides, nil
}

// memoryDocs is an in-memory DocumentStore.
type memoryDocs struct {
	order []string
	files map[string][]byte
}

func (d *memoryDocs) List(ctx context.Context) ([]string, error) {
	return d.order, nil
}

func (d *memoryDocs) Fetch(ctx context.Context, filename string) ([]byte, error) {
	raw, ok := d.files[filename]
	if !ok {
		return nil, fmt.Errorf("document %s not found", filename)
	}
	return raw, nil
}

// keywordEmbedder embeds text deterministically: each known keyword maps
// to one vector dimension, so texts sharing keywords land close together.
// Gives the search pipeline realistic geometry without a network call.
type keywordEmbedder struct {
	dims map[string]int
}

func newKeywordEmbedder(keywords ...string) *keywordEmbedder {
	dims := make(map[string]int, len(keywords))
	for i, kw := range keywords {
		dims[kw] = i
	}
	return &keywordEmbedder{dims: dims}
}

func (e *keywordEmbedder) embed(text string) []float32 {
	vec := make([]float32, 1536)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if idx, ok := e.dims[strings.Trim(word, ".,")]; ok {
			vec[idx] += 1
		}
	}
	// Last dimension keeps zero-keyword texts from producing a zero
	// vector, which has no defined cosine distance.
	vec[1535] = 0.1
	return vec
}

func (e *keywordEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

func (e *keywordEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.embed(text)
	}
	return out, nil
}

// SetupE2EEnv starts a pgvector container, wires the full service stack
// against it, and serves the real router over httptest.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	identityRepo := repository.NewIdentityRepository(pool)
	credentialRepo := repository.NewCredentialRepository(pool)
	skillRepo := repository.NewSkillRepository(pool)
	fragmentRepo := repository.NewFragmentRepository(pool)

	embedder := newKeywordEmbedder(
		"kubernetes", "terraform", "aws", "go", "python", "payments", "observability",
	)

	feeds := &memoryFeeds{}
	docs := &memoryDocs{files: map[string][]byte{}}

	roster := service.NewRosterCache(identityRepo)
	matcher := service.NewIdentityMatcher(80, 60)

	reindexSvc := service.NewReindexService(
		feeds,
		docs,
		embedder,
		matcher,
		roster,
		identityRepo,
		credentialRepo,
		skillRepo,
		fragmentRepo,
		service.DefaultChunkConfig(),
	)
	searchSvc := service.NewSearchService(embedder, credentialRepo, skillRepo, fragmentRepo, roster, 15, 5)

	router := server.NewRouter(server.RouterConfig{
		SearchHandler:  handlers.NewSearchHandler(searchSvc, 30*time.Second),
		LinkageHandler: handlers.NewLinkageHandler(reindexSvc),
		SystemHandler:  handlers.NewSystemHandler(identityRepo, credentialRepo, skillRepo, fragmentRepo, credentialRepo),
	})
	srv := httptest.NewServer(router)

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		Pool:       pool,
		Server:     srv,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Feeds:      feeds,
		Docs:       docs,
	}
}

// Cleanup releases all resources.
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// APIResponse is the standard success envelope with raw data.
type APIResponse struct {
	Data json.RawMessage `json:"data"`
}

// Post sends a JSON POST and decodes the success envelope.
func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(raw)
	}

	resp, err := e.HTTPClient.Post(e.Server.URL+path, "application/json", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp)
}

// Get sends a GET and decodes the success envelope.
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	resp, err := e.HTTPClient.Get(e.Server.URL + path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp)
}

func decodeEnvelope(resp *http.Response) (*APIResponse, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}

	var envelope APIResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &envelope, nil
}
