package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridaworks/talentd/internal/config"
	"github.com/meridaworks/talentd/internal/database"
	"github.com/meridaworks/talentd/internal/ingest"
	"github.com/meridaworks/talentd/internal/openai"
	"github.com/meridaworks/talentd/internal/repository"
	"github.com/meridaworks/talentd/internal/service"
	"github.com/meridaworks/talentd/internal/storage"
)

// app wires the repositories and services every command needs.
type app struct {
	cfg  *config.Config
	pool *pgxpool.Pool

	identityRepo   *repository.IdentityRepository
	credentialRepo *repository.CredentialRepository
	skillRepo      *repository.SkillRepository
	fragmentRepo   *repository.FragmentRepository

	roster  *service.RosterCache
	matcher *service.IdentityMatcher
	feeds   *ingest.FileFeeds
	docs    service.DocumentStore
	search  *service.SearchService
	reindex *service.ReindexService
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Println("connected to database")

	a := &app{
		cfg:            cfg,
		pool:           pool,
		identityRepo:   repository.NewIdentityRepository(pool),
		credentialRepo: repository.NewCredentialRepository(pool),
		skillRepo:      repository.NewSkillRepository(pool),
		fragmentRepo:   repository.NewFragmentRepository(pool),
	}

	a.roster = service.NewRosterCache(a.identityRepo)
	a.matcher = service.NewIdentityMatcher(cfg.MatchAutoThreshold, cfg.MatchReviewThreshold)
	a.feeds = &ingest.FileFeeds{
		RosterPath:     cfg.RosterFeed,
		CredentialPath: cfg.CredentialFeed,
		SkillPath:      cfg.SkillFeed,
		OverridePath:   cfg.OverrideFeed,
	}

	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			UsePathStyle:    true,
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		a.docs = s3Client
	}

	var embedder *openai.Client
	if cfg.HasOpenAI() {
		embedder = openai.NewClient(cfg.OpenAIAPIKey)
	}

	chunkCfg := service.ChunkConfig{
		Size:     cfg.ChunkSize,
		Overlap:  cfg.ChunkOverlap,
		MinChars: service.DefaultChunkConfig().MinChars,
	}

	a.search = service.NewSearchService(
		embedderOrNil(embedder),
		a.credentialRepo,
		a.skillRepo,
		a.fragmentRepo,
		a.roster,
		cfg.ScoreDecay,
		cfg.SearchOverfetch,
	)
	a.reindex = service.NewReindexService(
		a.feeds,
		a.docs,
		batchEmbedderOrNil(embedder),
		a.matcher,
		a.roster,
		a.identityRepo,
		a.credentialRepo,
		a.skillRepo,
		a.fragmentRepo,
		chunkCfg,
	)

	return a, nil
}

func (a *app) Close() {
	a.pool.Close()
}

// embedderOrNil keeps a typed nil *openai.Client from masquerading as a
// non-nil interface value.
func embedderOrNil(client *openai.Client) service.EmbeddingClient {
	if client == nil {
		return nil
	}
	return client
}

func batchEmbedderOrNil(client *openai.Client) service.BatchEmbedder {
	if client == nil {
		return nil
	}
	return client
}
