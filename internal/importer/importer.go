// Package importer turns a spreadsheet of tags into vocabulary records.
package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
)

// Recognized header names, matched case-insensitively after trimming.
const (
	ColumnEnglish     = "english"
	ColumnCategory    = "category"
	ColumnSubcategory = "subcategory"
	ColumnTranslation = "translation"
	ColumnChinese     = "chinese"
)

// Summary counts what a conversion kept and dropped.
type Summary struct {
	Rows    int
	Kept    int
	Skipped int
}

// ReadXLSX reads the first sheet of an xlsx workbook.
func ReadXLSX(r io.Reader) ([]vocabulary.Record, Summary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, Summary{}, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("reading rows of %q: %w", sheet, err)
	}
	return Convert(rows)
}

// Convert maps a header row plus data rows to records. The tag is the
// trimmed, lowercased english cell; rows without one are skipped. The
// translation falls back to the chinese column. A missing category or
// subcategory column yields the browsing sentinels; an empty cell in a
// present column stays empty.
func Convert(rows [][]string) ([]vocabulary.Record, Summary, error) {
	if len(rows) == 0 {
		return nil, Summary{}, fmt.Errorf("sheet is empty")
	}
	cols := headerIndex(rows[0])
	if _, ok := cols[ColumnEnglish]; !ok {
		return nil, Summary{}, fmt.Errorf("missing %q column", ColumnEnglish)
	}

	var sum Summary
	records := make([]vocabulary.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		sum.Rows++
		cell := func(name string) (string, bool) {
			i, ok := cols[name]
			if !ok {
				return "", false
			}
			if i >= len(row) {
				return "", true
			}
			return strings.TrimSpace(row[i]), true
		}

		english, _ := cell(ColumnEnglish)
		tag := strings.ToLower(english)
		if tag == "" {
			sum.Skipped++
			continue
		}
		category, ok := cell(ColumnCategory)
		if !ok {
			category = vocabulary.UncategorizedLabel
		}
		subcategory, ok := cell(ColumnSubcategory)
		if !ok {
			subcategory = vocabulary.BasicLabel
		}
		translation, _ := cell(ColumnTranslation)
		if translation == "" {
			translation, _ = cell(ColumnChinese)
		}

		records = append(records, vocabulary.Record{
			Tag:         tag,
			Category:    category,
			Subcategory: subcategory,
			Translation: translation,
		})
		sum.Kept++
	}
	return records, sum, nil
}

// headerIndex maps each recognized header to its column; the first
// occurrence of a duplicated header wins.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, seen := idx[name]; !seen && name != "" {
			idx[name] = i
		}
	}
	return idx
}
