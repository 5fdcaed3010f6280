package sheets

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is a named block of rows written from A1.
type Sheet struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// WriteWorkbook saves sheets to a new .xlsx file at path, replacing any existing file.
// The result can be read back with XLSXReader.
func WriteWorkbook(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return errors.New("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("rename sheet %s: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.Name, err)
		}

		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(s.Name, cell, &values); err != nil {
				return fmt.Errorf("write %s!%s: %w", s.Name, cell, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
