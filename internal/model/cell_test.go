package model

import (
	"encoding/json"
	"testing"
)

func TestCellValueWireShapes(t *testing.T) {
	cases := []struct {
		name string
		in   CellValue
		want string
	}{
		{"empty", CellValue{}, `""`},
		{"text", TextValue("bonjour"), `"bonjour"`},
		{"link", LinkCell("Site", "https://example.com"), `{"text":"Site","url":"https://example.com"}`},
		{"link no label", LinkCell("", "https://example.com"), `{"url":"https://example.com"}`},
		{"status", StatusCell("En cours", "#f59e0b"), `{"label":"En cours","color":"#f59e0b"}`},
		{"files", FilesCell([]FileRef{{Name: "a.pdf", URL: "/u/a.pdf", Type: "file"}}), `[{"name":"a.pdf","url":"/u/a.pdf","type":"file"}]`},
	}

	for _, tc := range cases {
		got, err := json.Marshal(tc.in)
		if err != nil {
			t.Fatalf("%s: marshal failed: %v", tc.name, err)
		}
		if string(got) != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}

		var back CellValue
		if err := json.Unmarshal(got, &back); err != nil {
			t.Fatalf("%s: unmarshal failed: %v", tc.name, err)
		}
		if !back.Equal(tc.in) {
			t.Errorf("%s: round trip mismatch: %+v vs %+v", tc.name, back, tc.in)
		}
	}
}

func TestCellValueUnmarshalSniffing(t *testing.T) {
	cases := []struct {
		in   string
		kind ValueKind
	}{
		{`""`, KindEmpty},
		{`null`, KindEmpty},
		{`"2025-01-15"`, KindText},
		{`{"url":"https://x"}`, KindLink},
		{`{"label":"Fait","color":"#10b981"}`, KindStatus},
		{`[{"name":"a","url":"/a","type":"file"}]`, KindFiles},
		{`{}`, KindEmpty},
		{`42`, KindText},
	}
	for _, tc := range cases {
		var v CellValue
		if err := json.Unmarshal([]byte(tc.in), &v); err != nil {
			t.Fatalf("unmarshal %s failed: %v", tc.in, err)
		}
		if v.Kind != tc.kind {
			t.Errorf("%s: got kind %s, want %s", tc.in, v.Kind, tc.kind)
		}
	}
}

func TestBoardRoundTrip(t *testing.T) {
	b, _ := NewBoard("Contrats", "file-contract", "#8b5cf6")
	date, _ := b.AddColumn(TypeDate, "Échéance")
	files, _ := b.AddColumn(TypeFile, "Pièces")
	row := b.AddRow()
	b.SetItem(row.ID, "Bail commercial")
	b.SetCellValue(row.ID, date.ID, TextValue("2025-01-15"))
	b.AttachFile(row.ID, files.ID, FileRef{Name: "bail.pdf", URL: "/uploads/bail.pdf", Type: FileRefUpload})

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var back Board
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if back.ID != b.ID || back.Name != b.Name || back.Icon != b.Icon {
		t.Errorf("board meta lost: %+v", back)
	}
	if len(back.Columns) != 2 || back.Columns[0].ID != date.ID || back.Columns[1].ID != files.ID {
		t.Errorf("column order lost: %+v", back.Columns)
	}
	v, err := back.CellValue(row.ID, date.ID)
	if err != nil || v.Text != "2025-01-15" {
		t.Errorf("date cell lost: %+v %v", v, err)
	}
	fv, _ := back.CellValue(row.ID, files.ID)
	if len(fv.Files) != 1 || fv.Files[0].Name != "bail.pdf" {
		t.Errorf("file cell lost: %+v", fv)
	}
}

func TestLookupTypeClosedEnum(t *testing.T) {
	for _, info := range ColumnTypes() {
		if _, err := LookupType(info.Type); err != nil {
			t.Errorf("registered type %s not found: %v", info.Type, err)
		}
	}
	if len(ColumnTypes()) != 6 {
		t.Errorf("expected 6 registered types, got %d", len(ColumnTypes()))
	}
	if _, err := LookupType("checkbox"); err == nil {
		t.Error("unregistered type accepted")
	}
}

func TestColumnTypeIconFallback(t *testing.T) {
	if ColumnTypeIcon(TypeFile) != "paperclip" {
		t.Error("wrong icon for fichier")
	}
	if ColumnTypeIcon("mystery") != "circle" {
		t.Error("fallback icon not applied")
	}
}
