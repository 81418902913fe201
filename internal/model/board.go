package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Partition selects one of the two independent board sets.
type Partition string

const (
	PartitionCoach        Partition = "coach"
	PartitionEntrepreneur Partition = "entrepreneur"
)

// ParsePartition validates the type query parameter.
func ParsePartition(s string) (Partition, error) {
	switch Partition(s) {
	case PartitionCoach, PartitionEntrepreneur:
		return Partition(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPartition, s)
}

// Column is a typed field definition applied to every row of its board.
// The id is immutable; the display name is free text and freely renameable.
type Column struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Row is one record. Item is the primary "Élément" field; Cells is keyed by
// column id, which keeps values attached across column renames.
type Row struct {
	ID    string               `json:"id"`
	Item  string               `json:"item"`
	Cells map[string]CellValue `json:"cells"`
}

// Board is the top-level editable unit: a named, iconified set of typed
// columns and rows. Version increments on every persisted write and backs
// the optimistic If-Match check.
type Board struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Icon    string   `json:"icon"`
	Color   string   `json:"color,omitempty"`
	Columns []Column `json:"columns"`
	Rows    []*Row   `json:"rows"`
	Version int64    `json:"version,omitempty"`
}

// NewBoard creates an empty board shell. Name is required; icon and color
// fall back to the picker defaults.
func NewBoard(name, icon, color string) (*Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: board name is required", ErrValidation)
	}
	if icon == "" {
		icon = DefaultIcon
	}
	if color == "" {
		color = DefaultColor
	}
	return &Board{
		ID:      uuid.NewString(),
		Name:    name,
		Icon:    icon,
		Color:   color,
		Columns: []Column{},
		Rows:    []*Row{},
	}, nil
}

// Rename changes the board title.
func (b *Board) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: board name is required", ErrValidation)
	}
	b.Name = name
	return nil
}

// SetIcon updates the board icon, rejecting anything outside the catalog.
func (b *Board) SetIcon(icon string) error {
	if !ValidIcon(icon) {
		return fmt.Errorf("%w: unknown icon %q", ErrValidation, icon)
	}
	b.Icon = icon
	return nil
}

// SetColor updates the header color.
func (b *Board) SetColor(color string) {
	b.Color = color
}

// Column resolves a column by id.
func (b *Board) Column(columnID string) (*Column, error) {
	for i := range b.Columns {
		if b.Columns[i].ID == columnID {
			return &b.Columns[i], nil
		}
	}
	return nil, fmt.Errorf("%w: column %s", ErrNotFound, columnID)
}

// Row resolves a row by id.
func (b *Board) Row(rowID string) (*Row, error) {
	for _, r := range b.Rows {
		if r.ID == rowID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: row %s", ErrNotFound, rowID)
}

// AddColumn appends a typed column and backfills an empty cell on every
// existing row. The type must be registered; the name defaults to the
// type's display name.
func (b *Board) AddColumn(t ColumnType, name string) (*Column, error) {
	info, err := LookupType(t)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = info.DisplayName
	}
	col := Column{ID: uuid.NewString(), Name: name, Type: t}
	b.Columns = append(b.Columns, col)
	for _, r := range b.Rows {
		if r.Cells == nil {
			r.Cells = map[string]CellValue{}
		}
		r.Cells[col.ID] = info.Zero()
	}
	return &b.Columns[len(b.Columns)-1], nil
}

// RenameColumn changes the display name only; cell values stay attached
// through the column id.
func (b *Board) RenameColumn(columnID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: column name is required", ErrValidation)
	}
	col, err := b.Column(columnID)
	if err != nil {
		return err
	}
	col.Name = name
	return nil
}

// DeleteColumn removes the column and cascades cell deletion across all
// rows. It returns the uploaded files that were attached under the column
// so the caller can release their server-side storage.
func (b *Board) DeleteColumn(columnID string) ([]FileRef, error) {
	if _, err := b.Column(columnID); err != nil {
		return nil, err
	}
	cols := b.Columns[:0]
	for _, c := range b.Columns {
		if c.ID != columnID {
			cols = append(cols, c)
		}
	}
	b.Columns = cols

	var orphaned []FileRef
	for _, r := range b.Rows {
		if v, ok := r.Cells[columnID]; ok {
			orphaned = append(orphaned, uploadedFiles(v)...)
			delete(r.Cells, columnID)
		}
	}
	return orphaned, nil
}

// AddRow appends a row with an empty cell for every current column.
func (b *Board) AddRow() *Row {
	row := &Row{ID: uuid.NewString(), Item: "", Cells: map[string]CellValue{}}
	for _, c := range b.Columns {
		row.Cells[c.ID] = registry[c.Type].Zero()
	}
	b.Rows = append(b.Rows, row)
	return row
}

// DeleteRow removes the row, returning its uploaded files for cleanup.
func (b *Board) DeleteRow(rowID string) ([]FileRef, error) {
	row, err := b.Row(rowID)
	if err != nil {
		return nil, err
	}
	rows := b.Rows[:0]
	for _, r := range b.Rows {
		if r.ID != rowID {
			rows = append(rows, r)
		}
	}
	b.Rows = rows

	var orphaned []FileRef
	for _, v := range row.Cells {
		orphaned = append(orphaned, uploadedFiles(v)...)
	}
	return orphaned, nil
}

// SetItem updates a row's primary element field.
func (b *Board) SetItem(rowID, item string) error {
	row, err := b.Row(rowID)
	if err != nil {
		return err
	}
	row.Item = strings.TrimSpace(item)
	return nil
}

// SetCellValue writes a value into one cell after checking it against the
// column's declared type.
func (b *Board) SetCellValue(rowID, columnID string, v CellValue) error {
	col, err := b.Column(columnID)
	if err != nil {
		return err
	}
	row, err := b.Row(rowID)
	if err != nil {
		return err
	}
	if err := registry[col.Type].Validate(v); err != nil {
		return err
	}
	if row.Cells == nil {
		row.Cells = map[string]CellValue{}
	}
	row.Cells[columnID] = v
	return nil
}

// CellValue reads one cell, backfilling the zero value for columns added
// since the row was created.
func (b *Board) CellValue(rowID, columnID string) (CellValue, error) {
	col, err := b.Column(columnID)
	if err != nil {
		return CellValue{}, err
	}
	row, err := b.Row(rowID)
	if err != nil {
		return CellValue{}, err
	}
	if v, ok := row.Cells[col.ID]; ok {
		return v, nil
	}
	return registry[col.Type].Zero(), nil
}

// AttachFile appends a file reference to a fichier cell, enforcing the
// MaxFilesPerCell cap before anything is stored.
func (b *Board) AttachFile(rowID, columnID string, ref FileRef) error {
	col, err := b.Column(columnID)
	if err != nil {
		return err
	}
	if col.Type != TypeFile {
		return fmt.Errorf("%w: column %s is not a file column", ErrValueType, columnID)
	}
	row, err := b.Row(rowID)
	if err != nil {
		return err
	}
	cur := row.Cells[columnID]
	if len(cur.Files) >= MaxFilesPerCell {
		return ErrTooManyFiles
	}
	if row.Cells == nil {
		row.Cells = map[string]CellValue{}
	}
	files := append(append([]FileRef(nil), cur.Files...), ref)
	row.Cells[columnID] = FilesCell(files)
	return nil
}

// RemoveFile drops one attachment by name and returns the removed ref.
func (b *Board) RemoveFile(rowID, columnID, fileName string) (FileRef, error) {
	if _, err := b.Column(columnID); err != nil {
		return FileRef{}, err
	}
	row, err := b.Row(rowID)
	if err != nil {
		return FileRef{}, err
	}
	cur := row.Cells[columnID]
	for i, f := range cur.Files {
		if f.Name == fileName {
			files := append(append([]FileRef(nil), cur.Files[:i]...), cur.Files[i+1:]...)
			row.Cells[columnID] = FilesCell(files)
			return f, nil
		}
	}
	return FileRef{}, fmt.Errorf("%w: file %s", ErrNotFound, fileName)
}

// UploadedFiles lists every server-stored attachment on the board, used
// when deleting a whole board.
func (b *Board) UploadedFiles() []FileRef {
	var out []FileRef
	for _, r := range b.Rows {
		for _, v := range r.Cells {
			out = append(out, uploadedFiles(v)...)
		}
	}
	return out
}

// Validate checks a whole incoming board document: non-empty name, known
// icon, registered column types, unique column and row ids, cell values
// matching their column's type, and the attachment cap. Cells keyed by an
// unknown column id are dropped.
func (b *Board) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: board name is required", ErrValidation)
	}
	if b.Icon != "" && !ValidIcon(b.Icon) {
		return fmt.Errorf("%w: unknown icon %q", ErrValidation, b.Icon)
	}
	types := make(map[string]ColumnType, len(b.Columns))
	for _, c := range b.Columns {
		if _, err := LookupType(c.Type); err != nil {
			return err
		}
		if _, dup := types[c.ID]; dup {
			return fmt.Errorf("%w: duplicate column id %s", ErrValidation, c.ID)
		}
		types[c.ID] = c.Type
	}
	rowIDs := make(map[string]struct{}, len(b.Rows))
	for _, r := range b.Rows {
		if _, dup := rowIDs[r.ID]; dup {
			return fmt.Errorf("%w: duplicate row id %s", ErrValidation, r.ID)
		}
		rowIDs[r.ID] = struct{}{}
		for colID, v := range r.Cells {
			t, ok := types[colID]
			if !ok {
				delete(r.Cells, colID)
				continue
			}
			if err := registry[t].Validate(v); err != nil {
				return fmt.Errorf("row %s column %s: %w", r.ID, colID, err)
			}
			if t == TypeFile && len(v.Files) > MaxFilesPerCell {
				return ErrTooManyFiles
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the board tree.
func (b *Board) Clone() *Board {
	out := *b
	out.Columns = append([]Column(nil), b.Columns...)
	out.Rows = make([]*Row, len(b.Rows))
	for i, r := range b.Rows {
		row := &Row{ID: r.ID, Item: r.Item, Cells: make(map[string]CellValue, len(r.Cells))}
		for k, v := range r.Cells {
			row.Cells[k] = v.Clone()
		}
		out.Rows[i] = row
	}
	return &out
}

func uploadedFiles(v CellValue) []FileRef {
	if v.Kind != KindFiles {
		return nil
	}
	var out []FileRef
	for _, f := range v.Files {
		if f.Type == FileRefUpload {
			out = append(out, f)
		}
	}
	return out
}
