package client

import (
	"context"
	"errors"

	"centrale/internal/model"
	"centrale/internal/store"

	"go.uber.org/zap"
)

// ErrUnsavedChanges is returned by SwitchPartition while local edits have
// not been pushed. Force discards them.
var ErrUnsavedChanges = errors.New("unsaved local changes")

// Client binds the local store to the HTTP API: load a partition, edit it
// locally, then push either one board or everything.
type Client struct {
	api    *APIClient
	store  *store.Store
	logger *zap.Logger
}

func New(api *APIClient, partition model.Partition, logger *zap.Logger) *Client {
	return &Client{
		api:    api,
		store:  store.New(partition),
		logger: logger,
	}
}

// Store exposes the local state for edits and subscriptions.
func (c *Client) Store() *store.Store {
	return c.store
}

// Load fetches the current partition from the server, replacing local
// state and clearing the dirty flag.
func (c *Client) Load(ctx context.Context) error {
	p := c.store.Partition()
	boards, err := c.api.FetchBoards(ctx, p)
	if err != nil {
		return err
	}
	c.store.Replace(p, boards)
	c.logger.Debug("Partition loaded",
		zap.String("centrale_type", string(p)),
		zap.Int("boards", len(boards)),
	)
	return nil
}

// SaveBoard pushes one board and folds the server's answer (new version)
// back into the store.
func (c *Client) SaveBoard(ctx context.Context, boardID string) error {
	board, err := c.store.Board(boardID)
	if err != nil {
		return err
	}
	updated, err := c.api.SaveBoard(ctx, c.store.Partition(), board)
	if err != nil {
		return err
	}
	return c.store.ApplyBoard(updated)
}

// SaveAll pushes the whole local state in one request and clears the dirty
// flag on success.
func (c *Client) SaveAll(ctx context.Context) error {
	p := c.store.Partition()
	if err := c.api.SaveAll(ctx, p, c.store.Boards()); err != nil {
		return err
	}
	c.store.ClearDirty()
	c.logger.Info("All boards saved",
		zap.String("centrale_type", string(p)),
	)
	return nil
}

// SwitchPartition loads the other board set. While unsaved edits exist it
// refuses with ErrUnsavedChanges unless force is set, so callers can ask
// the user before dropping work.
func (c *Client) SwitchPartition(ctx context.Context, p model.Partition, force bool) error {
	if p == c.store.Partition() {
		return nil
	}
	if c.store.Dirty() && !force {
		return ErrUnsavedChanges
	}
	boards, err := c.api.FetchBoards(ctx, p)
	if err != nil {
		return err
	}
	c.store.Replace(p, boards)
	c.logger.Info("Partition switched",
		zap.String("centrale_type", string(p)),
	)
	return nil
}
