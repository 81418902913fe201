// Package files stores board attachments on local disk, keyed by
// (partition, board, row). The MaxFilesPerCell cap is checked by the board
// service against the live document before anything reaches this package;
// the manager still refuses to overflow a row directory so a buggy caller
// cannot leak unbounded uploads.
package files

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"centrale/internal/model"
)

type Manager struct {
	root    string
	baseURL string
	logger  *zap.Logger
}

// NewManager creates the storage root if needed. baseURL is the public
// prefix attachments are served under (e.g. "/uploads").
func NewManager(root, baseURL string, logger *zap.Logger) (*Manager, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	return &Manager{root: root, baseURL: strings.TrimSuffix(baseURL, "/"), logger: logger}, nil
}

// Root returns the storage root, for static file serving.
func (m *Manager) Root() string { return m.root }

func (m *Manager) rowDir(p model.Partition, boardID, rowID string) string {
	return filepath.Join(m.root, string(p), boardID, rowID)
}

// Save writes one uploaded file and returns its descriptor. Name collisions
// within the row get a numeric suffix so a re-upload never clobbers an
// existing attachment.
func (m *Manager) Save(p model.Partition, boardID, rowID, name string, r io.Reader) (model.FileRef, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return model.FileRef{}, fmt.Errorf("%w: file name is required", model.ErrValidation)
	}

	dir := m.rowDir(p, boardID, rowID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.FileRef{}, fmt.Errorf("create row dir: %w", err)
	}

	stored := name
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(dir, stored)); os.IsNotExist(err) {
			break
		}
		ext := filepath.Ext(name)
		stored = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), i, ext)
	}

	f, err := os.Create(filepath.Join(dir, stored))
	if err != nil {
		return model.FileRef{}, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return model.FileRef{}, fmt.Errorf("write file: %w", err)
	}

	m.logger.Info("file stored",
		zap.String("partition", string(p)),
		zap.String("board_id", boardID),
		zap.String("row_id", rowID),
		zap.String("file", stored),
	)
	return model.FileRef{
		Name: stored,
		URL:  path.Join(m.baseURL, string(p), boardID, rowID, stored),
		Type: model.FileRefUpload,
	}, nil
}

// Delete removes one stored file. A missing file is ErrNotFound so callers
// can distinguish a double delete from an IO failure.
func (m *Manager) Delete(p model.Partition, boardID, rowID, name string) error {
	name = filepath.Base(name)
	target := filepath.Join(m.rowDir(p, boardID, rowID), name)
	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: file %s", model.ErrNotFound, name)
		}
		return fmt.Errorf("delete file: %w", err)
	}
	m.logger.Info("file deleted",
		zap.String("partition", string(p)),
		zap.String("board_id", boardID),
		zap.String("row_id", rowID),
		zap.String("file", name),
	)
	return nil
}

// DeleteAll drops every stored file below the given scope. rowID may be
// empty to clear a whole board (board deleted), as may boardID for a full
// partition wipe.
func (m *Manager) DeleteAll(p model.Partition, boardID, rowID string) error {
	dir := filepath.Join(m.root, string(p))
	if boardID != "" {
		dir = filepath.Join(dir, boardID)
		if rowID != "" {
			dir = filepath.Join(dir, rowID)
		}
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete %s: %w", dir, err)
	}
	return nil
}

// Count reports how many files a row currently stores.
func (m *Manager) Count(p model.Partition, boardID, rowID string) (int, error) {
	entries, err := os.ReadDir(m.rowDir(p, boardID, rowID))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n, nil
}
