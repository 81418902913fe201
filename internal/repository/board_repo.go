package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"centrale/internal/events"
	"centrale/internal/model"
	"centrale/pkg/outbox"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// BoardRepository stores each board as one jsonb document keyed by
// (centrale_type, id). The version column backs the If-Match check and the
// position column preserves board order within a partition.
type BoardRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewBoardRepository(db *pgxpool.Pool, ob *outbox.Repository, logger *zap.Logger) *BoardRepository {
	return &BoardRepository{db: db, outbox: ob, logger: logger}
}

// List returns all boards of a partition in stored order. Documents still in
// the legacy sections shape are migrated in place before being returned.
func (r *BoardRepository) List(ctx context.Context, partition model.Partition) ([]*model.Board, error) {
	r.logger.Debug("Listing boards", zap.String("centrale_type", string(partition)))
	query := `
        SELECT id, version, doc
        FROM centrale_boards
        WHERE centrale_type = $1
        ORDER BY position, updated_at
    `
	rows, err := r.db.Query(ctx, query, partition)
	if err != nil {
		r.logger.Error("Failed to query boards",
			zap.Error(err),
			zap.String("centrale_type", string(partition)),
		)
		return nil, err
	}
	defer rows.Close()

	boards := []*model.Board{}
	migrated := []*model.Board{}
	for rows.Next() {
		var (
			id      string
			version int64
			doc     json.RawMessage
		)
		if err := rows.Scan(&id, &version, &doc); err != nil {
			r.logger.Error("Failed to scan board row", zap.Error(err))
			return nil, err
		}
		board, wasLegacy, err := decodeDoc(doc)
		if err != nil {
			r.logger.Error("Failed to decode board document",
				zap.Error(err),
				zap.String("board_id", id),
			)
			return nil, err
		}
		// The id column is authoritative; a migrated legacy doc can carry a
		// divergent embedded id, and writeMigrated keys on board.ID.
		board.ID = id
		board.Version = version
		if wasLegacy {
			migrated = append(migrated, board)
		}
		boards = append(boards, board)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, board := range migrated {
		if err := r.writeMigrated(ctx, partition, board); err != nil {
			return nil, err
		}
		r.logger.Info("Migrated legacy section document",
			zap.String("board_id", board.ID),
			zap.String("centrale_type", string(partition)),
		)
	}
	r.logger.Debug("Boards listed",
		zap.String("centrale_type", string(partition)),
		zap.Int("count", len(boards)),
	)
	return boards, nil
}

// Get loads a single board. Returns model.ErrNotFound when the id does not
// exist in the partition.
func (r *BoardRepository) Get(ctx context.Context, partition model.Partition, id string) (*model.Board, error) {
	var (
		version int64
		doc     json.RawMessage
	)
	err := r.db.QueryRow(ctx, `
        SELECT version, doc
        FROM centrale_boards
        WHERE centrale_type = $1 AND id = $2
    `, partition, id).Scan(&version, &doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: board %s", model.ErrNotFound, id)
	}
	if err != nil {
		r.logger.Error("Failed to load board",
			zap.Error(err),
			zap.String("board_id", id),
		)
		return nil, err
	}
	board, _, err := decodeDoc(doc)
	if err != nil {
		return nil, err
	}
	board.Version = version
	return board, nil
}

// Create inserts a new board at the end of the partition and records a
// board.updated event in the same transaction.
func (r *BoardRepository) Create(ctx context.Context, partition model.Partition, board *model.Board) error {
	doc, err := encodeDoc(board)
	if err != nil {
		return err
	}
	err = r.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
            INSERT INTO centrale_boards (centrale_type, id, position, version, doc)
            VALUES ($1, $2,
                (SELECT COALESCE(MAX(position), -1) + 1 FROM centrale_boards WHERE centrale_type = $1),
                1, $3)
        `, partition, board.ID, doc)
		if err != nil {
			return err
		}
		board.Version = 1
		return r.insertBoardEvent(ctx, tx, events.RoutingKeyBoardUpdated, partition, board.ID, 1)
	})
	if err != nil {
		r.logger.Error("Failed to create board",
			zap.Error(err),
			zap.String("board_id", board.ID),
			zap.String("centrale_type", string(partition)),
		)
		return err
	}
	r.logger.Info("Board created",
		zap.String("board_id", board.ID),
		zap.String("centrale_type", string(partition)),
		zap.String("name", board.Name),
	)
	return nil
}

// Update replaces the stored document. When expectedVersion is non-nil the
// write only succeeds against that exact version; a mismatch returns
// model.ErrVersionConflict. With a nil expectedVersion the last write wins.
// The board's Version field is set to the new version on success.
func (r *BoardRepository) Update(ctx context.Context, partition model.Partition, board *model.Board, expectedVersion *int64) error {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		return r.updateDoc(ctx, tx, partition, board, expectedVersion)
	})
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) && !errors.Is(err, model.ErrVersionConflict) {
			r.logger.Error("Failed to update board",
				zap.Error(err),
				zap.String("board_id", board.ID),
			)
		}
		return err
	}
	r.logger.Info("Board updated",
		zap.String("board_id", board.ID),
		zap.String("centrale_type", string(partition)),
		zap.Int64("version", board.Version),
	)
	return nil
}

// UpdateWithFileEvent saves the board and records the upload event in the
// same transaction as the board.updated event.
func (r *BoardRepository) UpdateWithFileEvent(ctx context.Context, partition model.Partition, board *model.Board, rowID string, ref model.FileRef) error {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		if err := r.updateDoc(ctx, tx, partition, board, nil); err != nil {
			return err
		}
		payload, err := json.Marshal(events.FileEvent{
			Partition: string(partition),
			BoardID:   board.ID,
			RowID:     rowID,
			File:      ref,
		})
		if err != nil {
			return err
		}
		return r.outbox.InsertEvent(ctx, tx, &outbox.Event{
			AggregateType: "centrale_board",
			AggregateID:   board.ID,
			RoutingKey:    events.RoutingKeyFileUploaded,
			Payload:       payload,
		})
	})
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			r.logger.Error("Failed to save board after upload",
				zap.Error(err),
				zap.String("board_id", board.ID),
			)
		}
		return err
	}
	r.logger.Info("Board updated with upload",
		zap.String("board_id", board.ID),
		zap.String("row_id", rowID),
		zap.String("file", ref.Name),
	)
	return nil
}

// updateDoc replaces the stored document inside tx and bumps the version,
// optionally guarded by an expected version. Sets board.Version on success.
func (r *BoardRepository) updateDoc(ctx context.Context, tx pgx.Tx, partition model.Partition, board *model.Board, expectedVersion *int64) error {
	doc, err := encodeDoc(board)
	if err != nil {
		return err
	}
	var newVersion int64
	var scanErr error
	if expectedVersion != nil {
		scanErr = tx.QueryRow(ctx, `
            UPDATE centrale_boards
            SET doc = $3, version = version + 1, updated_at = now()
            WHERE centrale_type = $1 AND id = $2 AND version = $4
            RETURNING version
        `, partition, board.ID, doc, *expectedVersion).Scan(&newVersion)
	} else {
		scanErr = tx.QueryRow(ctx, `
            UPDATE centrale_boards
            SET doc = $3, version = version + 1, updated_at = now()
            WHERE centrale_type = $1 AND id = $2
            RETURNING version
        `, partition, board.ID, doc).Scan(&newVersion)
	}
	if errors.Is(scanErr, pgx.ErrNoRows) {
		if expectedVersion == nil {
			return fmt.Errorf("%w: board %s", model.ErrNotFound, board.ID)
		}
		// Distinguish a missing board from a stale version.
		var exists bool
		if err := tx.QueryRow(ctx, `
            SELECT EXISTS (SELECT 1 FROM centrale_boards WHERE centrale_type = $1 AND id = $2)
        `, partition, board.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: board %s", model.ErrNotFound, board.ID)
		}
		return fmt.Errorf("%w: board %s", model.ErrVersionConflict, board.ID)
	}
	if scanErr != nil {
		return scanErr
	}
	board.Version = newVersion
	return r.insertBoardEvent(ctx, tx, events.RoutingKeyBoardUpdated, partition, board.ID, newVersion)
}

// Delete removes a board. Returns model.ErrNotFound if the id was absent.
func (r *BoardRepository) Delete(ctx context.Context, partition model.Partition, id string) error {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            DELETE FROM centrale_boards
            WHERE centrale_type = $1 AND id = $2
        `, partition, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: board %s", model.ErrNotFound, id)
		}
		return r.insertBoardEvent(ctx, tx, events.RoutingKeyBoardDeleted, partition, id, 0)
	})
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			r.logger.Error("Failed to delete board",
				zap.Error(err),
				zap.String("board_id", id),
			)
		}
		return err
	}
	r.logger.Info("Board deleted",
		zap.String("board_id", id),
		zap.String("centrale_type", string(partition)),
	)
	return nil
}

// ReplaceAll swaps the whole partition for the given board list in one
// transaction. Versions of surviving boards keep incrementing rather than
// resetting, so stale If-Match requests after a bulk save still conflict.
func (r *BoardRepository) ReplaceAll(ctx context.Context, partition model.Partition, boards []*model.Board) error {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
            DELETE FROM centrale_boards WHERE centrale_type = $1
        `, partition); err != nil {
			return err
		}
		for i, board := range boards {
			doc, err := encodeDoc(board)
			if err != nil {
				return err
			}
			version := board.Version + 1
			if version < 1 {
				version = 1
			}
			if _, err := tx.Exec(ctx, `
                INSERT INTO centrale_boards (centrale_type, id, position, version, doc)
                VALUES ($1, $2, $3, $4, $5)
            `, partition, board.ID, i, version, doc); err != nil {
				return err
			}
			board.Version = version
			if err := r.insertBoardEvent(ctx, tx, events.RoutingKeyBoardUpdated, partition, board.ID, version); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to replace boards",
			zap.Error(err),
			zap.String("centrale_type", string(partition)),
			zap.Int("count", len(boards)),
		)
		return err
	}
	r.logger.Info("Boards replaced",
		zap.String("centrale_type", string(partition)),
		zap.Int("count", len(boards)),
	)
	return nil
}

func (r *BoardRepository) writeMigrated(ctx context.Context, partition model.Partition, board *model.Board) error {
	doc, err := encodeDoc(board)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
        UPDATE centrale_boards
        SET doc = $3, updated_at = now()
        WHERE centrale_type = $1 AND id = $2
    `, partition, board.ID, doc)
	return err
}

func (r *BoardRepository) insertBoardEvent(ctx context.Context, tx pgx.Tx, routingKey string, partition model.Partition, boardID string, version int64) error {
	payload, err := json.Marshal(events.BoardEvent{
		Partition: string(partition),
		BoardID:   boardID,
		Version:   version,
	})
	if err != nil {
		return err
	}
	return r.outbox.InsertEvent(ctx, tx, &outbox.Event{
		AggregateType: "centrale_board",
		AggregateID:   boardID,
		RoutingKey:    routingKey,
		Payload:       payload,
	})
}

func (r *BoardRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// encodeDoc serializes the board without its version; the column is the
// source of truth for versions.
func encodeDoc(board *model.Board) (json.RawMessage, error) {
	clone := board.Clone()
	clone.Version = 0
	doc, err := json.Marshal(clone)
	if err != nil {
		return nil, fmt.Errorf("encode board %s: %w", board.ID, err)
	}
	return doc, nil
}

func decodeDoc(doc json.RawMessage) (*model.Board, bool, error) {
	if model.IsLegacySection(doc) {
		board, err := model.FromLegacySection(doc)
		if err != nil {
			return nil, false, err
		}
		return board, true, nil
	}
	var board model.Board
	if err := json.Unmarshal(doc, &board); err != nil {
		return nil, false, err
	}
	if board.Columns == nil {
		board.Columns = []model.Column{}
	}
	if board.Rows == nil {
		board.Rows = []*model.Row{}
	}
	return &board, false, nil
}
