package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/importer"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/storage/filestore"
)

var (
	convertIn  string
	convertOut string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert an xlsx tag sheet into a vocabulary snapshot",
	Long: "Reads the first sheet (columns english, category, subcategory, translation, chinese)\n" +
		"and writes the compact JSON snapshot the server loads.",
	Args: cobra.NoArgs,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertIn, "in", "tags.xlsx", "input workbook")
	convertCmd.Flags().StringVar(&convertOut, "out", "data/vocabulary.json", "output snapshot")
}

func runConvert(cmd *cobra.Command, args []string) error {
	f, err := os.Open(convertIn)
	if err != nil {
		return err
	}
	defer f.Close()

	records, sum, err := importer.ReadXLSX(f)
	if err != nil {
		return fmt.Errorf("converting %s: %w", convertIn, err)
	}
	if err := filestore.New(convertOut).Save(context.Background(), records); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "converted %d of %d rows (%d skipped) into %s\n",
		sum.Kept, sum.Rows, sum.Skipped, convertOut)
	return nil
}
