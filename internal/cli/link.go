package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridaworks/talentd/internal/config"
)

// LinkCmd returns the link command
func LinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link",
		Short: "Preview document-to-identity linkage",
		Long:  "Match every stored document filename against the roster and print the linkage report without touching the indexes",
		RunE:  runLink,
	}
}

func runLink(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.docs == nil {
		return fmt.Errorf("no document store configured: S3 settings required")
	}

	filenames, err := a.docs.List(ctx)
	if err != nil {
		return err
	}

	overrides, err := a.feeds.Overrides(ctx)
	if err != nil {
		return err
	}
	a.matcher.SetOverrides(overrides)

	roster, err := a.roster.All(ctx)
	if err != nil {
		return err
	}

	report := a.matcher.MatchAll(filenames, roster)
	for _, link := range report.Links {
		target := "-"
		if link.EmployeeID != "" {
			target = fmt.Sprintf("%s (%s)", link.EmployeeID, link.RosterName)
		}
		fmt.Printf("%-10s %6.1f  %-40s -> %s\n", link.Status, link.Confidence, link.Filename, target)
	}
	fmt.Printf("\n%d documents: %d auto, %d review, %d manual, %d unresolved\n",
		len(report.Links), report.Auto, report.Review, report.Manual, report.Unresolved)
	return nil
}
