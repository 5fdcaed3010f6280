package sheets

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWorkbookRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.xlsx")
	err := WriteWorkbook(path, []Sheet{
		{Name: "Notices", Rows: [][]string{{"page", "content"}, {"1", "Welcome"}}},
		{Name: "Admin", Rows: [][]string{{"Class 3-A"}, {"note", ""}}},
	})
	require.NoError(t, err)

	reader := NewXLSXReader(path)

	rows, err := reader.FetchRange(context.Background(), RangeRef{Sheet: "Notices", Cells: "A2:C"})
	require.NoError(t, err)
	assert.Equal(t, []RawRow{{"1", "Welcome"}}, rows)

	rows, err = reader.FetchRange(context.Background(), RangeRef{Sheet: "Admin", Cells: "A1:B30"})
	require.NoError(t, err)
	assert.Equal(t, []RawRow{{"Class 3-A"}, {"note"}}, rows)
}

func TestWriteWorkbookRequiresSheets(t *testing.T) {
	assert.Error(t, WriteWorkbook(filepath.Join(t.TempDir(), "x.xlsx"), nil))
}
