package handlers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scentlab/internal/classify"
	"scentlab/internal/core"
)

// NewAddCmd creates the add command
func NewAddCmd() *cobra.Command {
	var (
		brand         string
		concentration string
		topNotes      []string
		middleNotes   []string
		baseNotes     []string
		description   string
		year          int
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a fragrance to the collection by hand",
		Long: `Add a fragrance directly to the local database. Categories and the
versatility score are derived from the notes, so only the raw facts are
needed.

Example:
  scentlab add "Layton" --brand "Parfums de Marly" --concentration EDP \
    --top apple,bergamot,lavender --middle geranium,jasmine \
    --base vanilla,cardamom,sandalwood`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" || strings.TrimSpace(brand) == "" {
				return fmt.Errorf("both a name and --brand are required")
			}

			f := &core.Fragrance{
				Name:          name,
				Brand:         strings.TrimSpace(brand),
				Concentration: core.ParseConcentration(concentration),
				TopNotes:      topNotes,
				MiddleNotes:   middleNotes,
				BaseNotes:     baseNotes,
				Description:   description,
			}
			if year > 0 {
				f.Year = &year
			}

			f.Categories = classify.Classify(classify.Input{
				Name:          f.Name,
				Brand:         f.Brand,
				TopNotes:      f.TopNotes,
				MiddleNotes:   f.MiddleNotes,
				BaseNotes:     f.BaseNotes,
				Description:   f.Description,
				Concentration: f.Concentration,
			})
			f.Versatility = classify.ScoreVersatility(f.TopNotes, f.MiddleNotes, f.BaseNotes, f.Categories)

			st, err := openStore()
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer st.Close()

			ctx := cmd.Context()
			if existing, err := st.FindByNameAndBrand(ctx, f.Name, f.Brand); err != nil {
				return fmt.Errorf("failed to check for duplicates: %w", err)
			} else if existing != nil {
				return fmt.Errorf("%s by %s is already in the collection", existing.Name, existing.Brand)
			}

			if err := st.CreateFragrance(ctx, f); err != nil {
				return fmt.Errorf("failed to save fragrance: %w", err)
			}

			cats := make([]string, len(f.Categories))
			for i, c := range f.Categories {
				cats[i] = string(c)
			}
			fmt.Printf("Added %s by %s (%s)\n", f.Name, f.Brand, f.Concentration)
			fmt.Printf("  categories: %s\n", strings.Join(cats, ", "))
			fmt.Printf("  versatility: %d/5\n", f.Versatility)
			return nil
		},
	}

	cmd.Flags().StringVar(&brand, "brand", "", "brand name (required)")
	cmd.Flags().StringVar(&concentration, "concentration", "EDT", "concentration (EDT, EDP, Parfum, Cologne)")
	cmd.Flags().StringSliceVar(&topNotes, "top", nil, "top notes (comma separated)")
	cmd.Flags().StringSliceVar(&middleNotes, "middle", nil, "middle notes (comma separated)")
	cmd.Flags().StringSliceVar(&baseNotes, "base", nil, "base notes (comma separated)")
	cmd.Flags().StringVar(&description, "description", "", "free-text description")
	cmd.Flags().IntVar(&year, "year", 0, "release year")
	cmd.MarkFlagRequired("brand")

	return cmd
}
