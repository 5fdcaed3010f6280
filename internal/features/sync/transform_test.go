package sync

import (
	"testing"

	"board-sync/internal/features/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMediaURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"viewer link", "https://drive.google.com/file/d/ABC123/view", "https://drive.google.com/uc?export=view&id=ABC123"},
		{"viewer link with query", "https://drive.google.com/file/d/ABC123/view?usp=sharing&foo=bar", "https://drive.google.com/uc?export=view&id=ABC123"},
		{"edit link with resource key", "https://drive.google.com/file/d/a-B_9/edit?resourcekey=0-x", "https://drive.google.com/uc?export=view&id=a-B_9"},
		{"open link", "https://drive.google.com/open?id=XYZ_1", "https://drive.google.com/uc?export=view&id=XYZ_1"},
		{"already direct", "https://drive.google.com/uc?export=view&id=ABC123", "https://drive.google.com/uc?export=view&id=ABC123"},
		{"surrounding spaces", "  https://drive.google.com/file/d/ABC123/view  ", "https://drive.google.com/uc?export=view&id=ABC123"},
		{"schemeless viewer link", "drive.google.com/file/d/ABC123/view", "https://drive.google.com/uc?export=view&id=ABC123"},
		{"schemeless open link", "docs.google.com/uc?id=XYZ_1", "https://drive.google.com/uc?export=view&id=XYZ_1"},
		{"protocol relative", "//drive.google.com/file/d/ABC123/view", "https://drive.google.com/uc?export=view&id=ABC123"},
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"other host", "https://example.com/file/d/ABC123/view", ""},
		{"drive folder", "https://drive.google.com/drive/folders/ABC123", ""},
		{"not a url", "see attached", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMediaURL(tt.in))
		})
	}
}

func TestShortRowsDefaultToEmpty(t *testing.T) {
	full := sheets.RawRow{"1", "Welcome", "https://drive.google.com/file/d/ABC123/view", "extra"}
	for _, layout := range []string{"notices", "schedules", "schedules_legacy"} {
		m, err := LookupLayout(layout)
		require.NoError(t, err)

		for n := 0; n <= len(full); n++ {
			rec, ok := m.Row(full[:n], 0)
			require.True(t, ok, "%s with %d cells", layout, n)
			for _, f := range m.Fields {
				_, present := rec[f.Name]
				assert.True(t, present, "%s.%s missing for %d cells", layout, f.Name, n)
			}
		}

		rec, _ := m.Row(nil, 0)
		for _, f := range m.Fields {
			assert.Equal(t, "", rec[f.Name])
		}
	}
}

func TestNoticesTransform(t *testing.T) {
	m, err := LookupLayout("notices")
	require.NoError(t, err)

	rows := []sheets.RawRow{
		{"1", "Welcome", "https://drive.google.com/file/d/ABC123/view"},
		{"2", "", ""},
	}
	got := m.Transform(rows)

	assert.Equal(t, []Record{
		{"pageNumber": "1", "content": "Welcome", "imageUrl": "https://drive.google.com/uc?export=view&id=ABC123", "order": 0},
		{"pageNumber": "2", "content": "", "imageUrl": "", "order": 1},
	}, got)
}

func TestAdminNotesSkipBlankRowsWithDenseOrder(t *testing.T) {
	m, err := LookupLayout("admin_notes")
	require.NoError(t, err)

	rows := []sheets.RawRow{
		{"Class 3-A Board"},
		{"First note", ""},
		{},
		{"  ", "  "},
		{"", "https://drive.google.com/file/d/IMG1/view"},
		{"Last note"},
	}

	got := m.Transform(rows)
	require.Len(t, got, 3)
	assert.Equal(t, Record{"content": "First note", "imageUrl": "", "order": 0}, got[0])
	assert.Equal(t, Record{"content": "", "imageUrl": "https://drive.google.com/uc?export=view&id=IMG1", "order": 1}, got[1])
	assert.Equal(t, Record{"content": "Last note", "imageUrl": "", "order": 2}, got[2])

	field, value := m.HeaderValue(rows)
	assert.Equal(t, "boardName", field)
	assert.Equal(t, "Class 3-A Board", value)

	_, value = m.HeaderValue(nil)
	assert.Equal(t, "", value)
}

func TestSchedulesLayouts(t *testing.T) {
	current, _ := LookupLayout("schedules")
	legacy, _ := LookupLayout("schedules_legacy")

	link := "https://drive.google.com/file/d/S1/view"
	assert.Equal(t,
		Record{"date": "3/2", "content": "Field trip", "imageUrl": "https://drive.google.com/uc?export=view&id=S1", "order": 0},
		current.Transform([]sheets.RawRow{{"3/2", "Field trip", link}})[0])
	assert.Equal(t,
		Record{"content": "Field trip", "imageUrl": "https://drive.google.com/uc?export=view&id=S1", "order": 0},
		legacy.Transform([]sheets.RawRow{{"Field trip", link}})[0])
}

func TestLookupLayoutUnknown(t *testing.T) {
	_, err := LookupLayout("timetable")
	assert.Error(t, err)
}
