package sheets

import (
	"context"
	"fmt"
	"strings"

	"board-sync/internal/common/apperr"

	"github.com/xuri/excelize/v2"
)

// XLSXReader serves ranges from a local workbook. The file is reopened on every fetch
// so edits are picked up between runs.
type XLSXReader struct {
	path string
}

func NewXLSXReader(path string) *XLSXReader {
	return &XLSXReader{path: path}
}

func (r *XLSXReader) FetchRange(ctx context.Context, ref RangeRef) ([]RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	win, err := parseWindow(ref.Cells)
	if err != nil {
		return nil, apperr.E(apperr.KindFailedPrecondition, "fetch "+ref.A1(), err)
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, apperr.E(apperr.KindFailedPrecondition, "fetch "+ref.A1(), fmt.Errorf("failed to open workbook: %w", err))
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(ref.Sheet); err != nil || idx < 0 {
		return nil, apperr.E(apperr.KindFailedPrecondition, "fetch "+ref.A1(), fmt.Errorf("sheet %q not found", ref.Sheet))
	}

	all, err := f.GetRows(ref.Sheet)
	if err != nil {
		return nil, apperr.E(apperr.KindInternal, "fetch "+ref.A1(), err)
	}

	lastRow := len(all)
	if win.endRow > 0 && win.endRow < lastRow {
		lastRow = win.endRow
	}

	rows := make([]RawRow, 0)
	for rowNum := win.startRow; rowNum <= lastRow; rowNum++ {
		src := all[rowNum-1]
		row := RawRow{}
		for col := win.startCol; col <= win.endCol && col <= len(src); col++ {
			row = append(row, src[col-1])
		}
		rows = append(rows, trimRow(row))
	}

	// The Sheets API omits trailing empty rows; do the same.
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

type window struct {
	startCol, startRow int
	endCol, endRow     int // endRow 0 means open-ended
}

// parseWindow accepts "A2:C30", "A2:C" and "A:C".
func parseWindow(cells string) (window, error) {
	parts := strings.Split(cells, ":")
	if len(parts) != 2 {
		return window{}, fmt.Errorf("invalid cell window %q", cells)
	}

	startCol, startRow, err := splitCell(parts[0])
	if err != nil {
		return window{}, err
	}
	endCol, endRow, err := splitCell(parts[1])
	if err != nil {
		return window{}, err
	}
	if startRow == 0 {
		startRow = 1
	}
	if endCol < startCol || (endRow != 0 && endRow < startRow) {
		return window{}, fmt.Errorf("invalid cell window %q", cells)
	}
	return window{startCol: startCol, startRow: startRow, endCol: endCol, endRow: endRow}, nil
}

func splitCell(ref string) (col, row int, err error) {
	if c, r, cerr := excelize.CellNameToCoordinates(ref); cerr == nil {
		return c, r, nil
	}
	col, err = excelize.ColumnNameToNumber(ref)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cell reference %q: %w", ref, err)
	}
	return col, 0, nil
}

func trimRow(row RawRow) RawRow {
	for len(row) > 0 && row[len(row)-1] == "" {
		row = row[:len(row)-1]
	}
	return row
}
