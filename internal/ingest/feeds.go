package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/meridaworks/talentd/internal/domain"
)

// FileFeeds reads the upstream feeds from local CSV files. Paths left
// empty yield empty feeds so a deployment can run with only the feeds it
// has.
type FileFeeds struct {
	RosterPath     string
	CredentialPath string
	SkillPath      string
	OverridePath   string
}

func (f *FileFeeds) Roster(ctx context.Context) ([]domain.RosterEntry, error) {
	if f.RosterPath == "" {
		return nil, nil
	}
	file, err := os.Open(f.RosterPath)
	if err != nil {
		return nil, fmt.Errorf("open roster feed: %w", err)
	}
	defer file.Close()
	return ReadRoster(file)
}

func (f *FileFeeds) Credentials(ctx context.Context) ([]domain.Credential, error) {
	if f.CredentialPath == "" {
		return nil, nil
	}
	file, err := os.Open(f.CredentialPath)
	if err != nil {
		return nil, fmt.Errorf("open credential feed: %w", err)
	}
	defer file.Close()
	return ReadCredentials(file)
}

func (f *FileFeeds) Skills(ctx context.Context) ([]domain.Skill, error) {
	if f.SkillPath == "" {
		return nil, nil
	}
	file, err := os.Open(f.SkillPath)
	if err != nil {
		return nil, fmt.Errorf("open skill feed: %w", err)
	}
	defer file.Close()
	return ReadSkills(file)
}

func (f *FileFeeds) Overrides(ctx context.Context) (map[string]string, error) {
	if f.OverridePath == "" {
		return map[string]string{}, nil
	}
	file, err := os.Open(f.OverridePath)
	if err != nil {
		return nil, fmt.Errorf("open override feed: %w", err)
	}
	defer file.Close()
	return ReadOverrides(file)
}
