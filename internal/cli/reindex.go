package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridaworks/talentd/internal/config"
)

// ReindexCmd returns the reindex command
func ReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild all similarity indexes from the feeds",
		Long:  "Rebuild the roster, credential, skill, and document fragment indexes from the configured feeds and document store",
		RunE:  runReindex,
	}
}

func runReindex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.reindex.Rebuild(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("identities:  %d\n", report.Identities)
	fmt.Printf("credentials: %d\n", report.Credentials)
	fmt.Printf("skills:      %d\n", report.Skills)
	fmt.Printf("documents:   %d\n", report.Documents)
	fmt.Printf("fragments:   %d\n", report.Fragments)
	if len(report.Linkage.Links) > 0 {
		fmt.Printf("linkage:     %d auto, %d review, %d manual, %d unresolved\n",
			report.Linkage.Auto, report.Linkage.Review, report.Linkage.Manual, report.Linkage.Unresolved)
	}
	for _, skipped := range report.Skipped {
		fmt.Printf("skipped:     %s\n", skipped)
	}
	return nil
}
