package events

import (
	"context"
	"encoding/json"

	"centrale/internal/model"

	"go.uber.org/zap"
)

// Invalidator is the cache surface the handler needs, implemented by
// cache.BoardCache.
type Invalidator interface {
	Invalidate(ctx context.Context, partition model.Partition)
}

// BoardEventHandler drops the cached board list of a partition whenever a
// board event arrives. With several server replicas behind one Redis, the
// replica that did not perform the write learns about it this way.
type BoardEventHandler struct {
	cache  Invalidator
	logger *zap.Logger
}

func NewBoardEventHandler(cache Invalidator, logger *zap.Logger) *BoardEventHandler {
	return &BoardEventHandler{cache: cache, logger: logger}
}

// Handle is a mq.MessageHandler for centrale.board.* and centrale.file.*
// routing keys.
func (h *BoardEventHandler) Handle(ctx context.Context, routingKey string, data json.RawMessage) error {
	var evt BoardEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		h.logger.Error("Failed to decode board event",
			zap.Error(err),
			zap.String("routing_key", routingKey),
		)
		// A malformed payload will never decode on redelivery.
		return nil
	}
	partition, err := model.ParsePartition(evt.Partition)
	if err != nil {
		h.logger.Warn("Board event with unknown partition",
			zap.String("routing_key", routingKey),
			zap.String("centrale_type", evt.Partition),
		)
		return nil
	}
	h.cache.Invalidate(ctx, partition)
	h.logger.Debug("Cache invalidated by event",
		zap.String("routing_key", routingKey),
		zap.String("board_id", evt.BoardID),
		zap.String("centrale_type", string(partition)),
	)
	return nil
}
