package handlers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search for fragrances across the database and external sources",
		Long: `Search the local collection first, then fall back through the external
source chain (FragranceFinder API, keyword endpoint, web scrape, built-in
catalogue). Newly discovered fragrances are classified and cached.

Examples:
  scentlab search sauvage
  scentlab search "parfums de marly"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "))
		},
	}
	return cmd
}

func runSearch(cmd *cobra.Command, query string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	result, err := buildOrchestrator(st).Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(result.Fragrances) == 0 {
		fmt.Println("No fragrances found.")
		return nil
	}

	fmt.Printf("Found %d fragrance(s) (%d from database, %d external):\n\n",
		len(result.Fragrances), result.Source.Database, result.Source.External)

	for i, c := range result.Fragrances {
		fmt.Printf("%2d. %s by %s (%s)", i+1, c.Name, c.Brand, c.Concentration)
		if c.Year != nil {
			fmt.Printf(" [%d]", *c.Year)
		}
		fmt.Printf("\n    source: %s", c.SourceTag)
		if notes := c.AllNotes(); len(notes) > 0 {
			fmt.Printf(", notes: %s", strings.Join(notes, ", "))
		}
		fmt.Println()
	}

	return nil
}
