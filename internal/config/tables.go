package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TableConfig binds one spreadsheet range to one collection through a named column layout.
type TableConfig struct {
	Name       string `yaml:"name"`
	Range      string `yaml:"range"`
	Collection string `yaml:"collection"`
	Layout     string `yaml:"layout"`
}

type tablesFile struct {
	Tables []TableConfig `yaml:"tables"`
}

// DefaultTables returns the three tables the board reads when no SYNC_TABLES_FILE is given.
func DefaultTables() []TableConfig {
	return []TableConfig{
		{Name: "notices", Range: "Notices!A2:C", Collection: "notices", Layout: "notices"},
		{Name: "schedules", Range: "Schedules!A2:C", Collection: "schedules", Layout: "schedules"},
		{Name: "adminNotes", Range: "Admin!A1:B30", Collection: "adminNotes", Layout: "admin_notes"},
	}
}

// LoadTables reads table definitions from a YAML file of the form
//
//	tables:
//	  - name: notices
//	    range: "Notices!A2:C"
//	    collection: notices
//	    layout: notices
func LoadTables(path string) ([]TableConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file: %w", err)
	}
	return ParseTables(data)
}

func ParseTables(data []byte) ([]TableConfig, error) {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse tables file: %w", err)
	}
	if len(f.Tables) == 0 {
		return nil, fmt.Errorf("tables file defines no tables")
	}

	seen := make(map[string]bool, len(f.Tables))
	for i, t := range f.Tables {
		if t.Name == "" || t.Range == "" || t.Collection == "" || t.Layout == "" {
			return nil, fmt.Errorf("table %d: name, range, collection and layout are required", i)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("duplicate table name %q", t.Name)
		}
		seen[t.Name] = true
	}
	return f.Tables, nil
}
