package sync

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"board-sync/internal/features/sheets"
)

var (
	driveFilePath = regexp.MustCompile(`/file/d/([A-Za-z0-9_-]+)`)
	driveFileID   = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

const directContentURL = "https://drive.google.com/uc?export=view&id="

// NormalizeMediaURL rewrites a Drive viewer link to its direct-content form. Anything that
// is not a recognizable Drive file link becomes "", never the original string.
func NormalizeMediaURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + strings.TrimPrefix(s, "//")
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host != "drive.google.com" && host != "docs.google.com" {
		return ""
	}

	if m := driveFilePath.FindStringSubmatch(u.Path); m != nil {
		return directContentURL + m[1]
	}
	if id := u.Query().Get("id"); driveFileID.MatchString(id) {
		return directContentURL + id
	}
	return ""
}

// Cell returns the trimmed cell at i, or "" when the row is shorter.
func Cell(row sheets.RawRow, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

type FieldSpec struct {
	Name   string
	Column int
	Media  bool // value goes through NormalizeMediaURL
}

// HeaderCell is a single configuration value read from a fixed position in the
// header rows of a table.
type HeaderCell struct {
	Row    int
	Column int
	Field  string
}

// Mapping converts raw rows of one table into records.
type Mapping struct {
	Name   string
	Fields []FieldSpec
	// HeaderRows leading rows are not records.
	HeaderRows int
	Header     *HeaderCell
	// SkipBlank drops rows whose mapped cells are all blank. Dropped rows do not
	// consume an order slot.
	SkipBlank bool
}

// Row maps one raw row to a record with the given order. It reports false when the
// row is blank and the mapping skips blank rows.
func (m Mapping) Row(row sheets.RawRow, index int) (Record, bool) {
	if m.SkipBlank && m.blank(row) {
		return nil, false
	}

	rec := make(Record, len(m.Fields)+1)
	for _, f := range m.Fields {
		v := Cell(row, f.Column)
		if f.Media {
			v = NormalizeMediaURL(v)
		}
		rec[f.Name] = v
	}
	rec[OrderField] = index
	return rec, true
}

func (m Mapping) blank(row sheets.RawRow) bool {
	for _, f := range m.Fields {
		if Cell(row, f.Column) != "" {
			return false
		}
	}
	return true
}

// Transform maps rows to records, numbering order densely over the retained rows.
func (m Mapping) Transform(rows []sheets.RawRow) []Record {
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if i < m.HeaderRows {
			continue
		}
		if rec, ok := m.Row(row, len(records)); ok {
			records = append(records, rec)
		}
	}
	return records
}

// HeaderValue returns the header cell value, or "" when the mapping has none.
func (m Mapping) HeaderValue(rows []sheets.RawRow) (field, value string) {
	if m.Header == nil {
		return "", ""
	}
	if m.Header.Row >= len(rows) {
		return m.Header.Field, ""
	}
	return m.Header.Field, Cell(rows[m.Header.Row], m.Header.Column)
}

var layouts = map[string]Mapping{
	"notices": {
		Name: "notices",
		Fields: []FieldSpec{
			{Name: "pageNumber", Column: 0},
			{Name: "content", Column: 1},
			{Name: "imageUrl", Column: 2, Media: true},
		},
	},
	"schedules": {
		Name: "schedules",
		Fields: []FieldSpec{
			{Name: "date", Column: 0},
			{Name: "content", Column: 1},
			{Name: "imageUrl", Column: 2, Media: true},
		},
	},
	// Two-column sheets used before the date column was added.
	"schedules_legacy": {
		Name: "schedules_legacy",
		Fields: []FieldSpec{
			{Name: "content", Column: 0},
			{Name: "imageUrl", Column: 1, Media: true},
		},
	},
	"admin_notes": {
		Name: "admin_notes",
		Fields: []FieldSpec{
			{Name: "content", Column: 0},
			{Name: "imageUrl", Column: 1, Media: true},
		},
		HeaderRows: 1,
		Header:     &HeaderCell{Row: 0, Column: 0, Field: "boardName"},
		SkipBlank:  true,
	},
}

// LookupLayout returns a built-in column mapping by name.
func LookupLayout(name string) (Mapping, error) {
	m, ok := layouts[name]
	if !ok {
		return Mapping{}, fmt.Errorf("unknown table layout %q", name)
	}
	return m, nil
}
