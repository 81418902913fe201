// Package service holds the business operations behind the HTTP handlers:
// board CRUD with cache invalidation, row patches, bulk saves, and upload
// handling with the attachment cap enforced before anything touches disk.
package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"centrale/internal/model"
	"centrale/pkg/metrics"

	"go.uber.org/zap"
)

// BoardRepo is the persistence surface BoardService needs. Implemented by
// repository.BoardRepository; tests substitute an in-memory fake.
type BoardRepo interface {
	List(ctx context.Context, partition model.Partition) ([]*model.Board, error)
	Get(ctx context.Context, partition model.Partition, id string) (*model.Board, error)
	Create(ctx context.Context, partition model.Partition, board *model.Board) error
	Update(ctx context.Context, partition model.Partition, board *model.Board, expectedVersion *int64) error
	UpdateWithFileEvent(ctx context.Context, partition model.Partition, board *model.Board, rowID string, ref model.FileRef) error
	Delete(ctx context.Context, partition model.Partition, id string) error
	ReplaceAll(ctx context.Context, partition model.Partition, boards []*model.Board) error
}

// FileStore is the attachment storage surface, implemented by files.Manager.
type FileStore interface {
	Save(partition model.Partition, boardID, rowID, name string, r io.Reader) (model.FileRef, error)
	Delete(partition model.Partition, boardID, rowID, name string) error
	DeleteAll(partition model.Partition, boardID, rowID string) error
}

// ListCache caches whole partition board lists, implemented by
// cache.BoardCache.
type ListCache interface {
	Get(ctx context.Context, partition model.Partition) ([]*model.Board, bool)
	Set(ctx context.Context, partition model.Partition, boards []*model.Board)
	Invalidate(ctx context.Context, partition model.Partition)
}

type BoardService struct {
	repo   BoardRepo
	files  FileStore
	cache  ListCache
	logger *zap.Logger
}

func NewBoardService(repo BoardRepo, files FileStore, cache ListCache, logger *zap.Logger) *BoardService {
	return &BoardService{repo: repo, files: files, cache: cache, logger: logger}
}

// List returns every board of a partition, cache first.
func (s *BoardService) List(ctx context.Context, partition model.Partition) ([]*model.Board, error) {
	if boards, ok := s.cache.Get(ctx, partition); ok {
		return boards, nil
	}
	start := time.Now()
	boards, err := s.repo.List(ctx, partition)
	if err != nil {
		return nil, err
	}
	metrics.RecordDBQueryDuration("list", "centrale_boards", time.Since(start))
	s.cache.Set(ctx, partition, boards)
	return boards, nil
}

// Get loads one board.
func (s *BoardService) Get(ctx context.Context, partition model.Partition, id string) (*model.Board, error) {
	return s.repo.Get(ctx, partition, id)
}

// Create makes a new empty board at the end of the partition.
func (s *BoardService) Create(ctx context.Context, partition model.Partition, name, icon, color string) (*model.Board, error) {
	board, err := model.NewBoard(name, icon, color)
	if err != nil {
		return nil, err
	}
	if board.Icon != model.DefaultIcon && !model.ValidIcon(board.Icon) {
		return nil, fmt.Errorf("%w: unknown icon %q", model.ErrValidation, board.Icon)
	}
	if err := s.repo.Create(ctx, partition, board); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, partition)
	metrics.IncrementBoardMutation("create_board", string(partition))
	return board, nil
}

// Update replaces a whole board document. expectedVersion carries the
// If-Match value when the client sent one; nil means last write wins.
// Uploaded attachments no longer referenced by the new document are removed
// from disk.
func (s *BoardService) Update(ctx context.Context, partition model.Partition, board *model.Board, expectedVersion *int64) (*model.Board, error) {
	if err := board.Validate(); err != nil {
		return nil, err
	}
	old, err := s.repo.Get(ctx, partition, board.ID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, partition, board, expectedVersion); err != nil {
		return nil, err
	}
	s.cleanOrphans(partition, old, board)
	s.cache.Invalidate(ctx, partition)
	metrics.IncrementBoardMutation("update_board", string(partition))
	return board, nil
}

// cleanOrphans deletes stored uploads that the old document referenced and
// the new one no longer does: deleted rows, deleted columns, unlinked files.
func (s *BoardService) cleanOrphans(partition model.Partition, old, updated *model.Board) {
	for _, oldRow := range old.Rows {
		var newRow *model.Row
		if updated != nil {
			if r, err := updated.Row(oldRow.ID); err == nil {
				newRow = r
			}
		}
		for _, v := range oldRow.Cells {
			for _, ref := range v.Files {
				if ref.Type != model.FileRefUpload {
					continue
				}
				if newRow != nil && rowReferencesFile(newRow, ref.Name) {
					continue
				}
				if err := s.files.Delete(partition, old.ID, oldRow.ID, ref.Name); err != nil {
					s.logger.Warn("Failed to remove orphaned attachment",
						zap.Error(err),
						zap.String("board_id", old.ID),
						zap.String("row_id", oldRow.ID),
						zap.String("file", ref.Name),
					)
				}
			}
		}
	}
}

func rowReferencesFile(row *model.Row, name string) bool {
	for _, v := range row.Cells {
		for _, ref := range v.Files {
			if ref.Type == model.FileRefUpload && ref.Name == name {
				return true
			}
		}
	}
	return false
}

// Delete removes a board and every attachment stored under it.
func (s *BoardService) Delete(ctx context.Context, partition model.Partition, id string) error {
	if err := s.repo.Delete(ctx, partition, id); err != nil {
		return err
	}
	if err := s.files.DeleteAll(partition, id, ""); err != nil {
		// The board row is already gone; the stray files are only disk
		// garbage at this point.
		s.logger.Warn("Failed to remove board attachments",
			zap.Error(err),
			zap.String("board_id", id),
		)
	}
	s.cache.Invalidate(ctx, partition)
	metrics.IncrementBoardMutation("delete_board", string(partition))
	return nil
}

// RowPatch is the payload of a single-row save: the item label plus the
// cells the editor touched, keyed by column id.
type RowPatch struct {
	Item  *string                    `json:"item,omitempty"`
	Cells map[string]model.CellValue `json:"cells,omitempty"`
}

// UpdateRow loads the board, applies a row patch, and writes it back.
// Cell values are type checked against their columns.
func (s *BoardService) UpdateRow(ctx context.Context, partition model.Partition, boardID, rowID string, patch RowPatch) (*model.Board, error) {
	board, err := s.repo.Get(ctx, partition, boardID)
	if err != nil {
		return nil, err
	}
	old := board.Clone()
	if patch.Item != nil {
		if err := board.SetItem(rowID, *patch.Item); err != nil {
			return nil, err
		}
	}
	for columnID, v := range patch.Cells {
		if err := board.SetCellValue(rowID, columnID, v); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, partition, board, nil); err != nil {
		return nil, err
	}
	s.cleanOrphans(partition, old, board)
	s.cache.Invalidate(ctx, partition)
	metrics.IncrementBoardMutation("update_row", string(partition))
	return board, nil
}

// SaveAll replaces the whole partition in one transaction. Attachments of
// boards that disappear in the new set are removed from disk.
func (s *BoardService) SaveAll(ctx context.Context, partition model.Partition, boards []*model.Board) error {
	for _, b := range boards {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	existing, err := s.repo.List(ctx, partition)
	if err != nil {
		return err
	}
	if err := s.repo.ReplaceAll(ctx, partition, boards); err != nil {
		return err
	}
	kept := make(map[string]*model.Board, len(boards))
	for _, b := range boards {
		kept[b.ID] = b
	}
	for _, old := range existing {
		survivor, ok := kept[old.ID]
		if !ok {
			if err := s.files.DeleteAll(partition, old.ID, ""); err != nil {
				s.logger.Warn("Failed to remove attachments of dropped board",
					zap.Error(err),
					zap.String("board_id", old.ID),
				)
			}
			continue
		}
		s.cleanOrphans(partition, old, survivor)
	}
	s.cache.Invalidate(ctx, partition)
	metrics.IncrementBoardMutation("save_all", string(partition))
	return nil
}

// UploadFile stores one attachment and links it into a fichier cell. The
// cap is checked before the file hits disk, and a failed board write rolls
// the stored file back so disk and document stay in step.
func (s *BoardService) UploadFile(ctx context.Context, partition model.Partition, boardID, rowID, columnID, name string, r io.Reader) (model.FileRef, *model.Board, error) {
	board, err := s.repo.Get(ctx, partition, boardID)
	if err != nil {
		metrics.IncrementFileUpload("failed")
		return model.FileRef{}, nil, err
	}
	col, err := board.Column(columnID)
	if err != nil {
		metrics.IncrementFileUpload("failed")
		return model.FileRef{}, nil, err
	}
	if col.Type != model.TypeFile {
		metrics.IncrementFileUpload("rejected")
		return model.FileRef{}, nil, model.ErrValueType
	}
	row, err := board.Row(rowID)
	if err != nil {
		metrics.IncrementFileUpload("failed")
		return model.FileRef{}, nil, err
	}
	if len(row.Cells[columnID].Files) >= model.MaxFilesPerCell {
		metrics.IncrementFileUpload("rejected")
		return model.FileRef{}, nil, model.ErrTooManyFiles
	}

	ref, err := s.files.Save(partition, boardID, rowID, name, r)
	if err != nil {
		metrics.IncrementFileUpload("failed")
		return model.FileRef{}, nil, err
	}
	if err := board.AttachFile(rowID, columnID, ref); err != nil {
		s.rollbackUpload(partition, boardID, rowID, ref)
		metrics.IncrementFileUpload("rejected")
		return model.FileRef{}, nil, err
	}
	if err := s.repo.UpdateWithFileEvent(ctx, partition, board, rowID, ref); err != nil {
		s.rollbackUpload(partition, boardID, rowID, ref)
		metrics.IncrementFileUpload("failed")
		return model.FileRef{}, nil, err
	}
	s.cache.Invalidate(ctx, partition)
	metrics.IncrementFileUpload("success")
	return ref, board, nil
}

// AttachLink adds an external link reference to a fichier cell. Nothing is
// stored on disk for links.
func (s *BoardService) AttachLink(ctx context.Context, partition model.Partition, boardID, rowID, columnID, name, url string) (*model.Board, error) {
	board, err := s.repo.Get(ctx, partition, boardID)
	if err != nil {
		return nil, err
	}
	ref := model.FileRef{Name: name, URL: url, Type: model.FileRefLink}
	if err := board.AttachFile(rowID, columnID, ref); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, partition, board, nil); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, partition)
	metrics.IncrementBoardMutation("attach_link", string(partition))
	return board, nil
}

// DeleteFile unlinks an attachment from its cell and, for uploads, removes
// the stored file. External links have nothing on disk to clean up.
func (s *BoardService) DeleteFile(ctx context.Context, partition model.Partition, boardID, rowID, columnID, name string) (*model.Board, error) {
	board, err := s.repo.Get(ctx, partition, boardID)
	if err != nil {
		return nil, err
	}
	removed, err := board.RemoveFile(rowID, columnID, name)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, partition, board, nil); err != nil {
		return nil, err
	}
	if removed.Type == model.FileRefUpload {
		if err := s.files.Delete(partition, boardID, rowID, removed.Name); err != nil {
			s.logger.Warn("Failed to remove stored attachment",
				zap.Error(err),
				zap.String("board_id", boardID),
				zap.String("file", removed.Name),
			)
		}
	}
	s.cache.Invalidate(ctx, partition)
	metrics.IncrementBoardMutation("delete_file", string(partition))
	return board, nil
}

func (s *BoardService) rollbackUpload(partition model.Partition, boardID, rowID string, ref model.FileRef) {
	if err := s.files.Delete(partition, boardID, rowID, ref.Name); err != nil {
		s.logger.Warn("Failed to roll back stored upload",
			zap.Error(err),
			zap.String("board_id", boardID),
			zap.String("file", ref.Name),
		)
	}
}
