// Package store holds the client-side working set of boards for one
// partition: the in-memory tree the editors mutate, the unsaved-changes
// flag, and a change feed the renderer subscribes to. It replaces the
// ambient `boards` / `currentCentraleType` globals of the old admin page
// with one explicit object handed to components.
package store

import (
	"fmt"
	"sync"

	"centrale/internal/model"
)

// Op names a store mutation for subscribers.
type Op string

const (
	OpLoad         Op = "load"
	OpCreateBoard  Op = "create_board"
	OpUpdateBoard  Op = "update_board"
	OpDeleteBoard  Op = "delete_board"
	OpAddColumn    Op = "add_column"
	OpRenameColumn Op = "rename_column"
	OpDeleteColumn Op = "delete_column"
	OpAddRow       Op = "add_row"
	OpDeleteRow    Op = "delete_row"
	OpSetCell      Op = "set_cell"
)

// Change describes one mutation. BoardID is empty for whole-set changes so
// a subscriber can re-render just the board that moved.
type Change struct {
	Op      Op
	BoardID string
}

// Store is safe for concurrent use; UI callers are expected to be a single
// goroutine but the sync layer saves from others.
type Store struct {
	mu        sync.RWMutex
	partition model.Partition
	boards    []*model.Board
	dirty     bool
	subs      []func(Change)
}

func New(p model.Partition) *Store {
	return &Store{partition: p, boards: []*model.Board{}}
}

// Subscribe registers a change listener. Listeners run synchronously on the
// mutating goroutine, after the lock is released.
func (s *Store) Subscribe(fn func(Change)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) notify(c Change) {
	s.mu.RLock()
	subs := append([]func(Change){}, s.subs...)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(c)
	}
}

// Partition returns the centrale type this store is loaded from.
func (s *Store) Partition() model.Partition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.partition
}

// Dirty reports whether in-memory edits have not been persisted.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// ClearDirty is called by the sync layer after a successful save.
func (s *Store) ClearDirty() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

// Replace installs a freshly loaded board set, dropping any local edits.
func (s *Store) Replace(p model.Partition, boards []*model.Board) {
	s.mu.Lock()
	s.partition = p
	s.boards = boards
	s.dirty = false
	s.mu.Unlock()
	s.notify(Change{Op: OpLoad})
}

// Boards returns deep copies so callers cannot bypass the mutation API.
func (s *Store) Boards() []*model.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Board, len(s.boards))
	for i, b := range s.boards {
		out[i] = b.Clone()
	}
	return out
}

// Board returns a deep copy of one board.
func (s *Store) Board(boardID string) (*model.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.find(boardID)
	if err != nil {
		return nil, err
	}
	return b.Clone(), nil
}

func (s *Store) find(boardID string) (*model.Board, error) {
	for _, b := range s.boards {
		if b.ID == boardID {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: board %s", model.ErrNotFound, boardID)
}

// CreateBoard appends a new empty board and returns a copy of it.
func (s *Store) CreateBoard(name, icon, color string) (*model.Board, error) {
	b, err := model.NewBoard(name, icon, color)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.boards = append(s.boards, b)
	s.dirty = true
	s.mu.Unlock()
	s.notify(Change{Op: OpCreateBoard, BoardID: b.ID})
	return b.Clone(), nil
}

// DeleteBoard removes a board and returns its uploaded files for cleanup.
func (s *Store) DeleteBoard(boardID string) ([]model.FileRef, error) {
	s.mu.Lock()
	b, err := s.find(boardID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	orphaned := b.UploadedFiles()
	boards := s.boards[:0]
	for _, cur := range s.boards {
		if cur.ID != boardID {
			boards = append(boards, cur)
		}
	}
	s.boards = boards
	s.dirty = true
	s.mu.Unlock()
	s.notify(Change{Op: OpDeleteBoard, BoardID: boardID})
	return orphaned, nil
}

// mutate runs fn against the live board under the lock, marking the store
// dirty and notifying on success.
func (s *Store) mutate(boardID string, op Op, fn func(*model.Board) error) error {
	s.mu.Lock()
	b, err := s.find(boardID)
	if err == nil {
		err = fn(b)
		if err == nil {
			s.dirty = true
		}
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify(Change{Op: op, BoardID: boardID})
	return nil
}

func (s *Store) RenameBoard(boardID, name string) error {
	return s.mutate(boardID, OpUpdateBoard, func(b *model.Board) error { return b.Rename(name) })
}

func (s *Store) SetBoardIcon(boardID, icon string) error {
	return s.mutate(boardID, OpUpdateBoard, func(b *model.Board) error { return b.SetIcon(icon) })
}

func (s *Store) SetBoardColor(boardID, color string) error {
	return s.mutate(boardID, OpUpdateBoard, func(b *model.Board) error { b.SetColor(color); return nil })
}

func (s *Store) AddColumn(boardID string, t model.ColumnType, name string) (col model.Column, err error) {
	err = s.mutate(boardID, OpAddColumn, func(b *model.Board) error {
		c, err := b.AddColumn(t, name)
		if err != nil {
			return err
		}
		col = *c
		return nil
	})
	return col, err
}

func (s *Store) RenameColumn(boardID, columnID, name string) error {
	return s.mutate(boardID, OpRenameColumn, func(b *model.Board) error { return b.RenameColumn(columnID, name) })
}

func (s *Store) DeleteColumn(boardID, columnID string) (orphaned []model.FileRef, err error) {
	err = s.mutate(boardID, OpDeleteColumn, func(b *model.Board) error {
		orphaned, err = b.DeleteColumn(columnID)
		return err
	})
	return orphaned, err
}

func (s *Store) AddRow(boardID string) (row model.Row, err error) {
	err = s.mutate(boardID, OpAddRow, func(b *model.Board) error {
		r := b.AddRow()
		row = *r
		return nil
	})
	return row, err
}

func (s *Store) DeleteRow(boardID, rowID string) (orphaned []model.FileRef, err error) {
	err = s.mutate(boardID, OpDeleteRow, func(b *model.Board) error {
		orphaned, err = b.DeleteRow(rowID)
		return err
	})
	return orphaned, err
}

func (s *Store) SetItem(boardID, rowID, item string) error {
	return s.mutate(boardID, OpSetCell, func(b *model.Board) error { return b.SetItem(rowID, item) })
}

func (s *Store) SetCellValue(boardID, rowID, columnID string, v model.CellValue) error {
	return s.mutate(boardID, OpSetCell, func(b *model.Board) error { return b.SetCellValue(rowID, columnID, v) })
}

func (s *Store) AttachFile(boardID, rowID, columnID string, ref model.FileRef) error {
	return s.mutate(boardID, OpSetCell, func(b *model.Board) error { return b.AttachFile(rowID, columnID, ref) })
}

func (s *Store) RemoveFile(boardID, rowID, columnID, fileName string) (removed model.FileRef, err error) {
	err = s.mutate(boardID, OpSetCell, func(b *model.Board) error {
		removed, err = b.RemoveFile(rowID, columnID, fileName)
		return err
	})
	return removed, err
}

// ApplyBoard replaces one board wholesale, used by the sync layer when the
// server returns an authoritative document.
func (s *Store) ApplyBoard(b *model.Board) error {
	s.mu.Lock()
	cur, err := s.find(b.ID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	*cur = *b.Clone()
	s.mu.Unlock()
	s.notify(Change{Op: OpUpdateBoard, BoardID: b.ID})
	return nil
}
