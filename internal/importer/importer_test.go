package importer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
)

func TestConvert(t *testing.T) {
	rows := [][]string{
		{"English", "Category", "Subcategory", "Translation", "Chinese"},
		{" Long_Hair ", "Hair", "Style", "", "长发"},
		{"", "Hair", "Style", "x", ""},
		{"blue eyes", "Eyes", "Color", "蓝眼", "蓝色眼睛"},
		{"short"},
	}

	records, sum, err := Convert(rows)
	require.NoError(t, err)
	assert.Equal(t, Summary{Rows: 4, Kept: 3, Skipped: 1}, sum)
	assert.Equal(t, []vocabulary.Record{
		{Tag: "long_hair", Category: "Hair", Subcategory: "Style", Translation: "长发"},
		{Tag: "blue eyes", Category: "Eyes", Subcategory: "Color", Translation: "蓝眼"},
		{Tag: "short"},
	}, records)
}

func TestConvertDefaultsMissingColumns(t *testing.T) {
	records, _, err := Convert([][]string{
		{"english", "chinese"},
		{"smile", "微笑"},
	})
	require.NoError(t, err)
	assert.Equal(t, []vocabulary.Record{
		{Tag: "smile", Category: vocabulary.UncategorizedLabel, Subcategory: vocabulary.BasicLabel, Translation: "微笑"},
	}, records)
}

func TestConvertRequiresEnglish(t *testing.T) {
	_, _, err := Convert([][]string{{"category"}, {"Hair"}})
	require.Error(t, err)

	_, _, err = Convert(nil)
	require.Error(t, err)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"english", "category", "subcategory", "translation"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Smile", "Face", "Expression", "微笑"}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records, sum, err := ReadXLSX(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Kept)
	assert.Equal(t, []vocabulary.Record{{Tag: "smile", Category: "Face", Subcategory: "Expression", Translation: "微笑"}}, records)
}
