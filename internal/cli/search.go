package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meridaworks/talentd/internal/config"
)

// SearchCmd returns the search command
func SearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexes for matching candidates",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().String("country", "", "Restrict credential matches to a country")
	cmd.Flags().Int("limit", 10, "Maximum number of candidates")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	country, _ := cmd.Flags().GetString("country")
	limit, _ := cmd.Flags().GetInt("limit")

	query := strings.Join(args, " ")
	profiles, err := a.search.Search(ctx, query, country, limit)
	if err != nil {
		return err
	}

	if len(profiles) == 0 {
		fmt.Println("no candidates found")
		return nil
	}

	for i, profile := range profiles {
		fmt.Printf("%2d. %6.1f  %s  %s", i+1, profile.Score, profile.EmployeeID, profile.Name)
		if profile.Role != "" {
			fmt.Printf("  (%s)", profile.Role)
		}
		fmt.Println()
		if profile.MatchHighlight != "" {
			fmt.Printf("    %s: %s\n", profile.MatchSource, profile.MatchHighlight)
		}
	}
	return nil
}
