package store

import (
	"errors"
	"testing"

	"centrale/internal/model"
)

func TestDirtyLifecycle(t *testing.T) {
	s := New(model.PartitionCoach)
	if s.Dirty() {
		t.Error("fresh store must be clean")
	}

	b, err := s.CreateBoard("Contrats", "", "")
	if err != nil {
		t.Fatalf("CreateBoard failed: %v", err)
	}
	if !s.Dirty() {
		t.Error("mutation did not mark store dirty")
	}

	s.ClearDirty()
	if s.Dirty() {
		t.Error("ClearDirty did not clear")
	}

	// a failing mutation leaves the store clean
	if err := s.RenameBoard("ghost", "x"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if s.Dirty() {
		t.Error("failed mutation marked store dirty")
	}

	if err := s.RenameBoard(b.ID, "Contrats 2025"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if !s.Dirty() {
		t.Error("rename did not mark dirty")
	}
}

func TestSubscribersSeeChanges(t *testing.T) {
	s := New(model.PartitionCoach)
	var seen []Change
	s.Subscribe(func(c Change) { seen = append(seen, c) })

	b, _ := s.CreateBoard("Test", "", "")
	col, _ := s.AddColumn(b.ID, model.TypeText, "Note")
	row, _ := s.AddRow(b.ID)
	s.SetCellValue(b.ID, row.ID, col.ID, model.TextValue("x"))

	want := []Op{OpCreateBoard, OpAddColumn, OpAddRow, OpSetCell}
	if len(seen) != len(want) {
		t.Fatalf("expected %d changes, got %d", len(want), len(seen))
	}
	for i, w := range want {
		if seen[i].Op != w {
			t.Errorf("change %d: got %s, want %s", i, seen[i].Op, w)
		}
		if seen[i].BoardID != b.ID {
			t.Errorf("change %d: wrong board id %q", i, seen[i].BoardID)
		}
	}
}

func TestBoardsReturnsCopies(t *testing.T) {
	s := New(model.PartitionCoach)
	b, _ := s.CreateBoard("Test", "", "")

	boards := s.Boards()
	boards[0].Name = "hacked"

	got, _ := s.Board(b.ID)
	if got.Name != "Test" {
		t.Error("external mutation reached store state")
	}
}

func TestReplaceResetsDirty(t *testing.T) {
	s := New(model.PartitionCoach)
	s.CreateBoard("Test", "", "")

	fresh, _ := model.NewBoard("Loaded", "", "")
	s.Replace(model.PartitionEntrepreneur, []*model.Board{fresh})

	if s.Dirty() {
		t.Error("Replace must clear the dirty flag")
	}
	if s.Partition() != model.PartitionEntrepreneur {
		t.Errorf("partition not switched: %s", s.Partition())
	}
	if boards := s.Boards(); len(boards) != 1 || boards[0].Name != "Loaded" {
		t.Errorf("board set not replaced: %+v", boards)
	}
}

func TestDeleteBoardReportsUploadedFiles(t *testing.T) {
	s := New(model.PartitionCoach)
	b, _ := s.CreateBoard("Test", "", "")
	col, _ := s.AddColumn(b.ID, model.TypeFile, "Docs")
	row, _ := s.AddRow(b.ID)
	s.AttachFile(b.ID, row.ID, col.ID, model.FileRef{Name: "a.pdf", URL: "/u/a", Type: model.FileRefUpload})
	s.AttachFile(b.ID, row.ID, col.ID, model.FileRef{Name: "ext", URL: "https://x", Type: model.FileRefLink})

	orphaned, err := s.DeleteBoard(b.ID)
	if err != nil {
		t.Fatalf("DeleteBoard failed: %v", err)
	}
	if len(orphaned) != 1 || orphaned[0].Name != "a.pdf" {
		t.Errorf("unexpected orphaned files: %+v", orphaned)
	}
	if _, err := s.Board(b.ID); !errors.Is(err, model.ErrNotFound) {
		t.Error("board still resolvable after delete")
	}
}

func TestVanishedMidEdit(t *testing.T) {
	s := New(model.PartitionCoach)
	b, _ := s.CreateBoard("Test", "", "")
	col, _ := s.AddColumn(b.ID, model.TypeText, "Note")
	row, _ := s.AddRow(b.ID)

	// concurrent delete wins; the late edit must fail loudly, not no-op
	s.DeleteRow(b.ID, row.ID)
	err := s.SetCellValue(b.ID, row.ID, col.ID, model.TextValue("late"))
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for vanished row, got %v", err)
	}
}
