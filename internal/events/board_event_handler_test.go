package events

import (
	"context"
	"encoding/json"
	"testing"

	"centrale/internal/model"

	"go.uber.org/zap"
)

type recordingCache struct {
	invalidated []model.Partition
}

func (r *recordingCache) Invalidate(_ context.Context, p model.Partition) {
	r.invalidated = append(r.invalidated, p)
}

func TestHandleInvalidatesPartition(t *testing.T) {
	cache := &recordingCache{}
	h := NewBoardEventHandler(cache, zap.NewNop())

	payload, err := json.Marshal(BoardEvent{Partition: "entrepreneur", BoardID: "b1", Version: 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Handle(context.Background(), RoutingKeyBoardUpdated, payload); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != model.PartitionEntrepreneur {
		t.Errorf("invalidated = %v", cache.invalidated)
	}
}

func TestHandleSkipsMalformedPayload(t *testing.T) {
	cache := &recordingCache{}
	h := NewBoardEventHandler(cache, zap.NewNop())

	if err := h.Handle(context.Background(), RoutingKeyBoardUpdated, json.RawMessage(`{`)); err != nil {
		t.Fatalf("malformed payload must not be retried: %v", err)
	}
	if err := h.Handle(context.Background(), RoutingKeyBoardUpdated, json.RawMessage(`{"centrale_type":"autre"}`)); err != nil {
		t.Fatalf("unknown partition must not be retried: %v", err)
	}
	if len(cache.invalidated) != 0 {
		t.Errorf("invalidated = %v", cache.invalidated)
	}
}
