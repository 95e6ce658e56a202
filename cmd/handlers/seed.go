package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"scentlab/internal/discovery"
	"scentlab/internal/lookup"
)

// NewSeedCmd creates the seed command
func NewSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database from the built-in catalogue",
		Long: `Load the embedded fragrance catalogue into the local database. Each
entry is classified and scored on the way in. Fragrances already in the
collection are left untouched, so seeding is safe to run repeatedly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer st.Close()

			ctx := cmd.Context()
			before, err := st.GetStats(ctx)
			if err != nil {
				return fmt.Errorf("failed to read database stats: %w", err)
			}

			catalogue := lookup.NewStaticSource().Catalogue()
			discovery.NewCachingWriter(st).CacheCandidates(ctx, catalogue)

			after, err := st.GetStats(ctx)
			if err != nil {
				return fmt.Errorf("failed to read database stats: %w", err)
			}

			added := after.FragranceCount - before.FragranceCount
			fmt.Printf("Seeded %d new fragrance(s) from a catalogue of %d (%d total in collection)\n",
				added, len(catalogue), after.FragranceCount)
			return nil
		},
	}
	return cmd
}
