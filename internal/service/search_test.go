package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/meridaworks/talentd/internal/domain"
)

// MockEmbeddingClient mocks the embedding provider
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockCredentialIndex mocks the credential similarity index
type MockCredentialIndex struct {
	mock.Mock
}

func (m *MockCredentialIndex) SearchNearest(ctx context.Context, embedding []float32, country string, limit int) ([]domain.IndexHit, error) {
	args := m.Called(ctx, embedding, country, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IndexHit), args.Error(1)
}

func (m *MockCredentialIndex) ListByEmployee(ctx context.Context, employeeID string) ([]domain.Credential, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Credential), args.Error(1)
}

// MockSkillIndex mocks the skill similarity index
type MockSkillIndex struct {
	mock.Mock
}

func (m *MockSkillIndex) SearchNearest(ctx context.Context, embedding []float32, limit int) ([]domain.IndexHit, error) {
	args := m.Called(ctx, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IndexHit), args.Error(1)
}

func (m *MockSkillIndex) ListByEmployee(ctx context.Context, employeeID string) ([]domain.Skill, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Skill), args.Error(1)
}

// MockFragmentIndex mocks the document fragment index
type MockFragmentIndex struct {
	mock.Mock
}

func (m *MockFragmentIndex) SearchNearest(ctx context.Context, embedding []float32, limit int) ([]domain.FragmentHit, error) {
	args := m.Called(ctx, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FragmentHit), args.Error(1)
}

// MockRosterSource mocks the roster table
type MockRosterSource struct {
	mock.Mock
}

func (m *MockRosterSource) ListAll(ctx context.Context) ([]domain.RosterEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RosterEntry), args.Error(1)
}

func rosterWith(entries ...domain.RosterEntry) *RosterCache {
	source := new(MockRosterSource)
	source.On("ListAll", mock.Anything).Return(entries, nil)
	return NewRosterCache(source)
}

func testEmbedding() []float32 {
	return []float32{0.1, 0.2, 0.3}
}

func TestDistanceToScore(t *testing.T) {
	assert.InDelta(t, 100, distanceToScore(0, 15), 0.0001)
	assert.InDelta(t, 87.52, distanceToScore(2.0, 15), 0.01)
	assert.InDelta(t, 51.34, distanceToScore(10, 15), 0.01)
	assert.Greater(t, distanceToScore(2.0, 15), distanceToScore(10, 15))
	assert.Greater(t, distanceToScore(10, 15), distanceToScore(50, 15))
}

func TestDistanceToScore_DegenerateDistances(t *testing.T) {
	assert.InDelta(t, 100, distanceToScore(math.NaN(), 15), 0.0001)
	assert.InDelta(t, 100, distanceToScore(math.Inf(1), 15), 0.0001)
	assert.InDelta(t, 100, distanceToScore(math.Inf(-1), 15), 0.0001)
	assert.InDelta(t, 100, distanceToScore(-3, 15), 0.0001)
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := NewSearchService(new(MockEmbeddingClient), new(MockCredentialIndex), nil, nil, rosterWith(), 15, 5)

	_, err := svc.Search(context.Background(), "", "", 10)

	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestSearch_NoIndexes(t *testing.T) {
	svc := NewSearchService(new(MockEmbeddingClient), nil, nil, nil, rosterWith(), 15, 5)

	_, err := svc.Search(context.Background(), "kubernetes", "", 10)

	assert.ErrorIs(t, err, domain.ErrNoIndexesConfigured)
}

func TestSearch_NoEmbedder(t *testing.T) {
	svc := NewSearchService(nil, new(MockCredentialIndex), nil, nil, rosterWith(), 15, 5)

	_, err := svc.Search(context.Background(), "kubernetes", "", 10)

	assert.ErrorIs(t, err, domain.ErrEmbedderUnavailable)
}

func TestSearch_DedupKeepsMaxScoreNotSum(t *testing.T) {
	embedder := new(MockEmbeddingClient)
	embedder.On("GenerateEmbedding", mock.Anything, "kubernetes").Return(testEmbedding(), nil)

	creds := new(MockCredentialIndex)
	creds.On("SearchNearest", mock.Anything, testEmbedding(), "", mock.Anything).Return([]domain.IndexHit{
		{EmployeeID: "E001", Label: "CKA", Distance: 2.0},
		{EmployeeID: "E001", Label: "CKAD", Distance: 4.0},
	}, nil)
	creds.On("ListByEmployee", mock.Anything, "E001").Return([]domain.Credential{
		{EmployeeID: "E001", Name: "CKA"},
		{EmployeeID: "E001", Name: "CKAD"},
	}, nil)

	skills := new(MockSkillIndex)
	skills.On("SearchNearest", mock.Anything, testEmbedding(), mock.Anything).Return([]domain.IndexHit{
		{EmployeeID: "E001", Label: "Kubernetes", Distance: 3.0},
	}, nil)
	skills.On("ListByEmployee", mock.Anything, "E001").Return([]domain.Skill{
		{EmployeeID: "E001", Name: "Kubernetes", Proficiency: 5},
	}, nil)

	roster := rosterWith(domain.RosterEntry{
		Identity: domain.Identity{EmployeeID: "E001", Name: "Maria Garcia Lopez", Country: "MX"},
		Leader:   &domain.Leader{Name: "Carlos Ruiz"},
	})

	svc := NewSearchService(embedder, creds, skills, nil, roster, 15, 5)

	profiles, err := svc.Search(context.Background(), "kubernetes", "", 10)
	require.NoError(t, err)
	require.Len(t, profiles, 1, "three hits for the same identity collapse to one profile")

	profile := profiles[0]
	assert.Equal(t, "E001", profile.EmployeeID)
	assert.InDelta(t, distanceToScore(2.0, 15), profile.Score, 0.0001, "best hit wins, scores are never summed")
	assert.Equal(t, "CKA", profile.MatchHighlight)
	assert.Equal(t, domain.SourceCredential, profile.MatchSource)
	assert.Len(t, profile.Credentials, 2)
	assert.Len(t, profile.Skills, 1)
	require.NotNil(t, profile.Leader)
	assert.Equal(t, "Carlos Ruiz", profile.Leader.Name)
}

func TestSearch_RankingPrefersSmallerDistance(t *testing.T) {
	embedder := new(MockEmbeddingClient)
	embedder.On("GenerateEmbedding", mock.Anything, "terraform").Return(testEmbedding(), nil)

	creds := new(MockCredentialIndex)
	creds.On("SearchNearest", mock.Anything, testEmbedding(), "", mock.Anything).Return([]domain.IndexHit{
		{EmployeeID: "E002", Label: "Terraform Associate", Distance: 10},
		{EmployeeID: "E001", Label: "Terraform Pro", Distance: 2.0},
	}, nil)
	creds.On("ListByEmployee", mock.Anything, mock.Anything).Return([]domain.Credential{}, nil)

	roster := rosterWith(
		domain.RosterEntry{Identity: domain.Identity{EmployeeID: "E001", Name: "Ana"}},
		domain.RosterEntry{Identity: domain.Identity{EmployeeID: "E002", Name: "Juan"}},
	)

	svc := NewSearchService(embedder, creds, nil, nil, roster, 15, 5)

	profiles, err := svc.Search(context.Background(), "terraform", "", 10)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "E001", profiles[0].EmployeeID)
	assert.Equal(t, "E002", profiles[1].EmployeeID)
	assert.Greater(t, profiles[0].Score, profiles[1].Score)
}

func TestSearch_CountryFilterOnlyReachesCredentialIndex(t *testing.T) {
	embedder := new(MockEmbeddingClient)
	embedder.On("GenerateEmbedding", mock.Anything, "aws").Return(testEmbedding(), nil)

	creds := new(MockCredentialIndex)
	creds.On("SearchNearest", mock.Anything, testEmbedding(), "MX", mock.Anything).Return([]domain.IndexHit{}, nil)

	skills := new(MockSkillIndex)
	skills.On("SearchNearest", mock.Anything, testEmbedding(), mock.Anything).Return([]domain.IndexHit{}, nil)

	svc := NewSearchService(embedder, creds, skills, nil, rosterWith(), 15, 5)

	_, err := svc.Search(context.Background(), "aws", "MX", 10)
	require.NoError(t, err)

	creds.AssertCalled(t, "SearchNearest", mock.Anything, testEmbedding(), "MX", mock.Anything)
	skills.AssertExpectations(t)
}

func TestSearch_FragmentHitsCarryTopFragments(t *testing.T) {
	embedder := new(MockEmbeddingClient)
	embedder.On("GenerateEmbedding", mock.Anything, "golang").Return(testEmbedding(), nil)

	fragments := new(MockFragmentIndex)
	fragments.On("SearchNearest", mock.Anything, testEmbedding(), mock.Anything).Return([]domain.FragmentHit{
		{EmployeeID: "E001", Filename: "cv.pdf", Page: 2, Text: "go services", Distance: 1.0},
		{EmployeeID: "E001", Filename: "cv.pdf", Page: 3, Text: "grpc transport", Distance: 3.0},
		{EmployeeID: "E001", Filename: "cv.pdf", Page: 1, Text: "intro", Distance: 9.0},
		{EmployeeID: "E001", Filename: "cv.pdf", Page: 4, Text: "appendix", Distance: 12.0},
	}, nil)

	roster := rosterWith(domain.RosterEntry{Identity: domain.Identity{EmployeeID: "E001", Name: "Ana"}})

	svc := NewSearchService(embedder, nil, nil, fragments, roster, 15, 5)

	profiles, err := svc.Search(context.Background(), "golang", "", 10)
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	profile := profiles[0]
	assert.Equal(t, domain.SourceDocument, profile.MatchSource)
	assert.Equal(t, "cv.pdf", profile.MatchHighlight)
	require.Len(t, profile.Fragments, 3, "only the top three fragments are attached")
	assert.Equal(t, "go services", profile.Fragments[0].Text)
	assert.Equal(t, "grpc transport", profile.Fragments[1].Text)
	assert.Equal(t, "intro", profile.Fragments[2].Text)
}

func TestSearch_UnknownIdentityDropped(t *testing.T) {
	embedder := new(MockEmbeddingClient)
	embedder.On("GenerateEmbedding", mock.Anything, "python").Return(testEmbedding(), nil)

	fragments := new(MockFragmentIndex)
	fragments.On("SearchNearest", mock.Anything, testEmbedding(), mock.Anything).Return([]domain.FragmentHit{
		{EmployeeID: "GHOST", Filename: "old.pdf", Text: "stale fragment", Distance: 1.0},
	}, nil)

	svc := NewSearchService(embedder, nil, nil, fragments, rosterWith(), 15, 5)

	profiles, err := svc.Search(context.Background(), "python", "", 10)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestSearch_FailingIndexContributesNothing(t *testing.T) {
	embedder := new(MockEmbeddingClient)
	embedder.On("GenerateEmbedding", mock.Anything, "rust").Return(testEmbedding(), nil)

	creds := new(MockCredentialIndex)
	creds.On("SearchNearest", mock.Anything, testEmbedding(), "", mock.Anything).Return(nil, errors.New("index offline"))
	creds.On("ListByEmployee", mock.Anything, "E001").Return(nil, errors.New("index offline"))

	skills := new(MockSkillIndex)
	skills.On("SearchNearest", mock.Anything, testEmbedding(), mock.Anything).Return([]domain.IndexHit{
		{EmployeeID: "E001", Label: "Rust", Distance: 5.0},
	}, nil)
	skills.On("ListByEmployee", mock.Anything, "E001").Return([]domain.Skill{
		{EmployeeID: "E001", Name: "Rust", Proficiency: 4},
	}, nil)

	roster := rosterWith(domain.RosterEntry{Identity: domain.Identity{EmployeeID: "E001", Name: "Ana"}})

	svc := NewSearchService(embedder, creds, skills, nil, roster, 15, 5)

	profiles, err := svc.Search(context.Background(), "rust", "", 10)
	require.NoError(t, err, "a failing index degrades, it does not abort the search")
	require.Len(t, profiles, 1)
	assert.Equal(t, domain.SourceSkill, profiles[0].MatchSource)
	assert.Empty(t, profiles[0].Credentials, "the failed source contributes no attributes")
	assert.Len(t, profiles[0].Skills, 1, "healthy sources still enrich")
}

func TestSearch_LimitTruncates(t *testing.T) {
	embedder := new(MockEmbeddingClient)
	embedder.On("GenerateEmbedding", mock.Anything, "java").Return(testEmbedding(), nil)

	hits := []domain.IndexHit{
		{EmployeeID: "E001", Label: "a", Distance: 1},
		{EmployeeID: "E002", Label: "b", Distance: 2},
		{EmployeeID: "E003", Label: "c", Distance: 3},
	}
	creds := new(MockCredentialIndex)
	creds.On("SearchNearest", mock.Anything, testEmbedding(), "", mock.Anything).Return(hits, nil)
	creds.On("ListByEmployee", mock.Anything, mock.Anything).Return([]domain.Credential{}, nil)

	roster := rosterWith(
		domain.RosterEntry{Identity: domain.Identity{EmployeeID: "E001", Name: "A"}},
		domain.RosterEntry{Identity: domain.Identity{EmployeeID: "E002", Name: "B"}},
		domain.RosterEntry{Identity: domain.Identity{EmployeeID: "E003", Name: "C"}},
	)

	svc := NewSearchService(embedder, creds, nil, nil, roster, 15, 5)

	profiles, err := svc.Search(context.Background(), "java", "", 2)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "E001", profiles[0].EmployeeID)
	assert.Equal(t, "E002", profiles[1].EmployeeID)
}

func TestSearch_EmbeddingFailure(t *testing.T) {
	embedder := new(MockEmbeddingClient)
	embedder.On("GenerateEmbedding", mock.Anything, "scala").Return(nil, errors.New("rate limited"))

	svc := NewSearchService(embedder, new(MockCredentialIndex), nil, nil, rosterWith(), 15, 5)

	_, err := svc.Search(context.Background(), "scala", "", 10)
	assert.Error(t, err)
}
