package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// The pre-Monday admin stored "sections": the primary column sat at position
// 0 of the column list, rows carried their element under "element", and cell
// values were keyed directly on the row object by column *name*. Renaming a
// column in that model orphaned its values, which is why boards key cells by
// column id. FromLegacySection converts one stored section document into a
// Board; the repository runs it once when it encounters a document without
// the boards shape.

type legacyColumn struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

type legacySection struct {
	ID      string                     `json:"id"`
	Title   string                     `json:"title"`
	Icon    string                     `json:"icon"`
	Columns []legacyColumn             `json:"columns"`
	Rows    []map[string]json.RawMessage `json:"rows"`
}

// IsLegacySection reports whether a raw document uses the sections shape
// (a "title" field instead of "name").
func IsLegacySection(doc json.RawMessage) bool {
	var probe struct {
		Title *string `json:"title"`
		Name  *string `json:"name"`
	}
	if err := json.Unmarshal(doc, &probe); err != nil {
		return false
	}
	return probe.Title != nil && probe.Name == nil
}

// FromLegacySection rewrites a name-keyed section document into an id-keyed
// Board. The implicit primary column becomes row.Item; remaining columns get
// fresh ids and their cell values follow them by name.
func FromLegacySection(doc json.RawMessage) (*Board, error) {
	var sec legacySection
	if err := json.Unmarshal(doc, &sec); err != nil {
		return nil, fmt.Errorf("decode legacy section: %w", err)
	}

	b := &Board{
		ID:      sec.ID,
		Name:    sec.Title,
		Icon:    sec.Icon,
		Color:   DefaultColor,
		Columns: []Column{},
		Rows:    []*Row{},
	}
	// Legacy ids are Date.now() strings; the boards table keys on a uuid
	// column, so anything that does not parse as one gets a fresh id.
	if _, err := uuid.Parse(b.ID); err != nil {
		b.ID = uuid.NewString()
	}
	if b.Icon == "" {
		b.Icon = DefaultIcon
	}

	// position 0 is the implicit "Élément" column
	nameToID := make(map[string]string)
	for i, lc := range sec.Columns {
		if i == 0 {
			continue
		}
		if _, err := LookupType(lc.Type); err != nil {
			return nil, fmt.Errorf("section %s column %q: %w", sec.ID, lc.Name, err)
		}
		col := Column{ID: uuid.NewString(), Name: lc.Name, Type: lc.Type}
		b.Columns = append(b.Columns, col)
		nameToID[lc.Name] = col.ID
	}

	for _, lr := range sec.Rows {
		row := &Row{Cells: map[string]CellValue{}}
		if raw, ok := lr["id"]; ok {
			json.Unmarshal(raw, &row.ID)
		}
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if raw, ok := lr["element"]; ok {
			json.Unmarshal(raw, &row.Item)
		}
		for name, id := range nameToID {
			var v CellValue
			if raw, ok := lr[name]; ok {
				if err := json.Unmarshal(raw, &v); err != nil {
					return nil, fmt.Errorf("section %s row %s cell %q: %w", sec.ID, row.ID, name, err)
				}
			}
			row.Cells[id] = v
		}
		b.Rows = append(b.Rows, row)
	}
	return b, nil
}
