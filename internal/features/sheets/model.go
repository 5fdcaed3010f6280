package sheets

import (
	"context"
	"fmt"
	"strings"
)

// RawRow is one row of cells as returned by the source. Trailing empty cells may be absent.
type RawRow []string

// RangeRef addresses a block of cells: a sheet name plus an A1-style window such as "A2:C".
type RangeRef struct {
	Sheet string
	Cells string
}

// ParseRange splits "Sheet!A2:C" (or "'My Sheet'!A2:C") into a RangeRef.
func ParseRange(s string) (RangeRef, error) {
	idx := strings.LastIndex(s, "!")
	if idx <= 0 || idx == len(s)-1 {
		return RangeRef{}, fmt.Errorf("invalid range %q: expected Sheet!A1:B2", s)
	}

	sheet := s[:idx]
	if len(sheet) >= 2 && strings.HasPrefix(sheet, "'") && strings.HasSuffix(sheet, "'") {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}
	if sheet == "" {
		return RangeRef{}, fmt.Errorf("invalid range %q: empty sheet name", s)
	}

	return RangeRef{Sheet: sheet, Cells: s[idx+1:]}, nil
}

// A1 renders the reference in the form the Sheets API expects.
func (r RangeRef) A1() string {
	sheet := r.Sheet
	if strings.ContainsAny(sheet, " '!:") {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet + "!" + r.Cells
}

func (r RangeRef) String() string { return r.A1() }

// Reader fetches one range. An empty result means the range currently holds no data.
type Reader interface {
	FetchRange(ctx context.Context, ref RangeRef) ([]RawRow, error)
}
