package client

import (
	"errors"

	"centrale/internal/model"
	"centrale/internal/store"
)

var (
	// ErrEditInProgress is returned by Begin while another edit is open.
	ErrEditInProgress = errors.New("another edit is in progress")
	// ErrNoActiveEdit is returned by Commit and Cancel without a Begin.
	ErrNoActiveEdit = errors.New("no active edit")
)

type editTarget int

const (
	targetCell editTarget = iota
	targetItem
)

type editSession struct {
	target   editTarget
	boardID  string
	rowID    string
	columnID string
}

// Editor is the begin/commit/cancel state machine behind inline field
// editing. Nothing is written to the store until Commit; Cancel simply
// drops the session, leaving the stored value untouched.
type Editor struct {
	store   *store.Store
	session *editSession
}

func NewEditor(s *store.Store) *Editor {
	return &Editor{store: s}
}

// Editing reports whether a session is open.
func (e *Editor) Editing() bool {
	return e.session != nil
}

// BeginCell opens an edit on one typed cell.
func (e *Editor) BeginCell(boardID, rowID, columnID string) error {
	if e.session != nil {
		return ErrEditInProgress
	}
	if _, err := e.store.Board(boardID); err != nil {
		return err
	}
	e.session = &editSession{
		target:   targetCell,
		boardID:  boardID,
		rowID:    rowID,
		columnID: columnID,
	}
	return nil
}

// BeginItem opens an edit on a row's element label.
func (e *Editor) BeginItem(boardID, rowID string) error {
	if e.session != nil {
		return ErrEditInProgress
	}
	if _, err := e.store.Board(boardID); err != nil {
		return err
	}
	e.session = &editSession{
		target:  targetItem,
		boardID: boardID,
		rowID:   rowID,
	}
	return nil
}

// CommitCell writes the edited value through the store's type check and
// closes the session. On a rejected value the session stays open so the
// caller can retry or cancel.
func (e *Editor) CommitCell(v model.CellValue) error {
	if e.session == nil || e.session.target != targetCell {
		return ErrNoActiveEdit
	}
	s := e.session
	if err := e.store.SetCellValue(s.boardID, s.rowID, s.columnID, v); err != nil {
		return err
	}
	e.session = nil
	return nil
}

// CommitItem writes the edited element label and closes the session.
func (e *Editor) CommitItem(item string) error {
	if e.session == nil || e.session.target != targetItem {
		return ErrNoActiveEdit
	}
	s := e.session
	if err := e.store.SetItem(s.boardID, s.rowID, item); err != nil {
		return err
	}
	e.session = nil
	return nil
}

// Cancel discards the open session without touching the store.
func (e *Editor) Cancel() error {
	if e.session == nil {
		return ErrNoActiveEdit
	}
	e.session = nil
	return nil
}
