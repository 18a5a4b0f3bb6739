package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/categorize"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/settings"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/storage/filestore"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
)

var (
	vocabPath       string
	settingsPath    string
	tagsArg         string
	dedup           bool
	defaultCategory string
)

var categorizeCmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize a comma-separated tag string against a local snapshot",
	Args:  cobra.NoArgs,
	RunE:  runCategorize,
}

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Print the category tree of a local snapshot",
	Args:  cobra.NoArgs,
	RunE:  runStructure,
}

func init() {
	categorizeCmd.Flags().StringVar(&vocabPath, "vocab", "data/vocabulary.json", "vocabulary snapshot")
	categorizeCmd.Flags().StringVar(&settingsPath, "settings", "", "mapping rules and bucket order (optional)")
	categorizeCmd.Flags().StringVar(&tagsArg, "tags", "", "comma-separated tags")
	categorizeCmd.Flags().BoolVar(&dedup, "dedup", false, "drop repeated tags")
	categorizeCmd.Flags().StringVar(&defaultCategory, "default-category", "misc", "bucket for unknown tags")
	categorizeCmd.MarkFlagRequired("tags")

	structureCmd.Flags().StringVar(&vocabPath, "vocab", "data/vocabulary.json", "vocabulary snapshot")
}

func loadVocabulary(ctx context.Context, path string) (*vocabulary.Store, error) {
	store := vocabulary.NewStore(filestore.New(path))
	if err := store.Restore(ctx); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return store, nil
}

func runCategorize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := loadVocabulary(ctx, vocabPath)
	if err != nil {
		return err
	}

	var doc settings.Document
	if settingsPath != "" {
		st := settings.New(settingsPath)
		if err := st.Load(); err != nil {
			return err
		}
		doc = st.Current()
	}

	res, stats := categorize.NewEngine(store, defaultCategory).Categorize(categorize.Request{
		Tags:            tagsArg,
		Deduplicate:     dedup,
		Mapping:         doc.Mapping,
		Order:           doc.Order,
		DefaultCategory: defaultCategory,
	})
	if err := printJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d tags, %d known, %d unknown\n", stats.Tokens, stats.Hits, stats.Misses)
	return nil
}

func runStructure(cmd *cobra.Command, args []string) error {
	store, err := loadVocabulary(cmd.Context(), vocabPath)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), store.Structure())
}
