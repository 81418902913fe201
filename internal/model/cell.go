package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MaxFilesPerCell bounds the number of attachments one cell can hold.
const MaxFilesPerCell = 3

// FileRefUpload marks a file stored by the server; FileRefLink marks an
// external reference that only lives in the cell.
const (
	FileRefUpload = "file"
	FileRefLink   = "link"
)

// ValueKind tags the runtime shape of a CellValue.
type ValueKind string

const (
	KindEmpty  ValueKind = "empty"
	KindText   ValueKind = "text"
	KindLink   ValueKind = "link"
	KindFiles  ValueKind = "files"
	KindStatus ValueKind = "status"
)

// LinkValue is the payload of a lien cell. Text is optional; display falls
// back to the URL.
type LinkValue struct {
	Text string `json:"text,omitempty"`
	URL  string `json:"url"`
}

// FileRef is one attachment in a fichier cell. Type distinguishes uploaded
// files ("file") from external references ("link").
type FileRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// StatusValue is the payload of a statut cell.
type StatusValue struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// CellValue is the variant stored for one (row, column) pair. Its wire shape
// depends on the kind: texte/numero/date cells are plain strings, lien cells
// are {text,url} objects, fichier cells are arrays of FileRef, statut cells
// are {label,color} objects. The zero value is the empty cell.
type CellValue struct {
	Kind   ValueKind
	Text   string
	Link   *LinkValue
	Files  []FileRef
	Status *StatusValue
}

func TextValue(s string) CellValue {
	if s == "" {
		return CellValue{}
	}
	return CellValue{Kind: KindText, Text: s}
}

func LinkCell(text, url string) CellValue {
	return CellValue{Kind: KindLink, Link: &LinkValue{Text: text, URL: url}}
}

func FilesCell(files []FileRef) CellValue {
	if len(files) == 0 {
		return CellValue{}
	}
	return CellValue{Kind: KindFiles, Files: files}
}

func StatusCell(label, color string) CellValue {
	return CellValue{Kind: KindStatus, Status: &StatusValue{Label: label, Color: color}}
}

// IsEmpty reports whether the cell holds no value.
func (v CellValue) IsEmpty() bool { return v.Kind == KindEmpty }

// Clone returns a deep copy so callers can mutate drafts without touching
// the stored value.
func (v CellValue) Clone() CellValue {
	out := v
	if v.Link != nil {
		l := *v.Link
		out.Link = &l
	}
	if v.Status != nil {
		s := *v.Status
		out.Status = &s
	}
	if v.Files != nil {
		out.Files = append([]FileRef(nil), v.Files...)
	}
	return out
}

// Equal compares two cell values structurally.
func (v CellValue) Equal(o CellValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindText:
		return v.Text == o.Text
	case KindLink:
		return *v.Link == *o.Link
	case KindStatus:
		return *v.Status == *o.Status
	case KindFiles:
		if len(v.Files) != len(o.Files) {
			return false
		}
		for i := range v.Files {
			if v.Files[i] != o.Files[i] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON writes the original wire shape: empty cells serialize as ""
// so documents stay byte-compatible with what the admin UI produced.
func (v CellValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindEmpty:
		return json.Marshal("")
	case KindText:
		return json.Marshal(v.Text)
	case KindLink:
		return json.Marshal(v.Link)
	case KindFiles:
		return json.Marshal(v.Files)
	case KindStatus:
		return json.Marshal(v.Status)
	}
	return nil, fmt.Errorf("unknown cell kind %q", v.Kind)
}

// UnmarshalJSON sniffs the wire shape: strings are textual values, arrays
// are file lists, objects carrying "url" are links and objects carrying
// "label" are statuses.
func (v *CellValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*v = CellValue{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextValue(s)
		return nil
	case '[':
		var files []FileRef
		if err := json.Unmarshal(data, &files); err != nil {
			return err
		}
		*v = FilesCell(files)
		return nil
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			return err
		}
		if _, ok := probe["label"]; ok {
			var s StatusValue
			if err := json.Unmarshal(data, &s); err != nil {
				return err
			}
			*v = CellValue{Kind: KindStatus, Status: &s}
			return nil
		}
		var l LinkValue
		if err := json.Unmarshal(data, &l); err != nil {
			return err
		}
		if l.URL == "" && l.Text == "" {
			*v = CellValue{}
			return nil
		}
		*v = CellValue{Kind: KindLink, Link: &l}
		return nil
	}
	// Old documents stored numero cells as bare numbers.
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*v = TextValue(n.String())
		return nil
	}
	return fmt.Errorf("unrecognized cell value %s", data)
}
