package model

import "fmt"

// ColumnType is the closed enumeration of cell types a column can carry.
type ColumnType string

const (
	TypeText   ColumnType = "texte"
	TypeNumber ColumnType = "numero"
	TypeFile   ColumnType = "fichier"
	TypeLink   ColumnType = "lien"
	TypeDate   ColumnType = "date"
	TypeStatus ColumnType = "statut"
)

// TypeInfo describes one registered column type: its default display name,
// the icon shown in column headers, a zero value for backfilling cells, and
// the value-shape check applied on every write.
type TypeInfo struct {
	Type        ColumnType            `json:"type"`
	DisplayName string                `json:"display_name"`
	Icon        string                `json:"icon"`
	Zero        func() CellValue      `json:"-"`
	Validate    func(CellValue) error `json:"-"`
}

var registry = map[ColumnType]TypeInfo{
	TypeText: {
		Type:        TypeText,
		DisplayName: "Texte",
		Icon:        "font",
		Zero:        emptyValue,
		Validate:    validateTextual,
	},
	TypeNumber: {
		Type:        TypeNumber,
		DisplayName: "Numéro",
		Icon:        "hashtag",
		Zero:        emptyValue,
		Validate:    validateTextual,
	},
	TypeFile: {
		Type:        TypeFile,
		DisplayName: "Fichier",
		Icon:        "paperclip",
		Zero:        emptyValue,
		Validate:    validateFiles,
	},
	TypeLink: {
		Type:        TypeLink,
		DisplayName: "Lien",
		Icon:        "link",
		Zero:        emptyValue,
		Validate:    validateLink,
	},
	TypeDate: {
		Type:        TypeDate,
		DisplayName: "Date",
		Icon:        "calendar",
		Zero:        emptyValue,
		Validate:    validateTextual,
	},
	TypeStatus: {
		Type:        TypeStatus,
		DisplayName: "Statut",
		Icon:        "circle",
		Zero:        emptyValue,
		Validate:    validateStatus,
	},
}

// registry iteration order for UI listings.
var typeOrder = []ColumnType{TypeText, TypeNumber, TypeFile, TypeLink, TypeDate, TypeStatus}

// LookupType resolves a type tag against the registry.
func LookupType(t ColumnType) (TypeInfo, error) {
	info, ok := registry[t]
	if !ok {
		return TypeInfo{}, fmt.Errorf("%w: %q", ErrInvalidColumnType, t)
	}
	return info, nil
}

// ColumnTypes lists every registered type in display order.
func ColumnTypes() []TypeInfo {
	infos := make([]TypeInfo, 0, len(typeOrder))
	for _, t := range typeOrder {
		infos = append(infos, registry[t])
	}
	return infos
}

// ColumnTypeIcon returns the header icon for a type, falling back to the
// generic circle for anything unknown.
func ColumnTypeIcon(t ColumnType) string {
	if info, ok := registry[t]; ok {
		return info.Icon
	}
	return "circle"
}

func emptyValue() CellValue { return CellValue{} }

func validateTextual(v CellValue) error {
	if v.Kind == KindEmpty || v.Kind == KindText {
		return nil
	}
	return fmt.Errorf("%w: expected text, got %s", ErrValueType, v.Kind)
}

func validateFiles(v CellValue) error {
	if v.Kind != KindEmpty && v.Kind != KindFiles {
		return fmt.Errorf("%w: expected file list, got %s", ErrValueType, v.Kind)
	}
	if len(v.Files) > MaxFilesPerCell {
		return ErrTooManyFiles
	}
	return nil
}

func validateLink(v CellValue) error {
	if v.Kind == KindEmpty {
		return nil
	}
	if v.Kind != KindLink {
		return fmt.Errorf("%w: expected link, got %s", ErrValueType, v.Kind)
	}
	if v.Link == nil || v.Link.URL == "" {
		return fmt.Errorf("%w: link url is required", ErrValidation)
	}
	return nil
}

func validateStatus(v CellValue) error {
	if v.Kind == KindEmpty {
		return nil
	}
	if v.Kind != KindStatus {
		return fmt.Errorf("%w: expected status, got %s", ErrValueType, v.Kind)
	}
	if v.Status == nil || v.Status.Label == "" {
		return fmt.Errorf("%w: status label is required", ErrValidation)
	}
	return nil
}
